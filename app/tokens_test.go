package app

import (
	"testing"
	"time"
)

func TestTokenLedgerDailyLimit(t *testing.T) {
	clock := &mutableClock{t: time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)}
	s, _ := newTestStore(t, WithClock(clock.Now))
	l := NewTokenLedger(s, 2)

	if !l.Award() || !l.Award() {
		t.Fatalf("expected first two awards to succeed")
	}
	if l.Award() {
		t.Fatalf("expected award beyond daily limit to fail")
	}
	if l.Tokens() != 2 || l.Remaining() != 0 {
		t.Fatalf("unexpected ledger state tokens=%d remaining=%d", l.Tokens(), l.Remaining())
	}

	if !l.Revoke() {
		t.Fatalf("expected revoke to succeed")
	}
	if l.Remaining() != 1 {
		t.Fatalf("expected revoke to give allowance back, remaining=%d", l.Remaining())
	}

	clock.t = clock.t.Add(24 * time.Hour)
	if l.Remaining() != 2 {
		t.Fatalf("expected allowance reset on a new day, remaining=%d", l.Remaining())
	}
	if l.Tokens() != 1 {
		t.Fatalf("expected tokens to carry over days, got %d", l.Tokens())
	}
}

func TestTokenLedgerRevokeWithoutTokens(t *testing.T) {
	s, _ := newTestStore(t)
	l := NewTokenLedger(s, 0)
	if l.Revoke() {
		t.Fatalf("expected revoke on empty ledger to fail")
	}
	if l.Remaining() != DefaultDailyTokenLimit {
		t.Fatalf("expected default limit, got %d", l.Remaining())
	}
}

func TestTokenLedgerSurvivesRestartOnSameDay(t *testing.T) {
	clock := &mutableClock{t: time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)}
	b := newFakeBackend()
	opts := []Option{WithRand(seededRand()), WithLocation(time.UTC), WithClock(clock.Now)}

	first := NewTokenLedger(New(b, opts...), 5)
	for i := 0; i < 3; i++ {
		if !first.Award() {
			t.Fatalf("award %d failed", i)
		}
	}
	if b.prefs.TokenNum != 3 || b.prefs.TodaysLimit != 2 {
		t.Fatalf("expected balance persisted, got tokenNum=%d todaysLimit=%d", b.prefs.TokenNum, b.prefs.TodaysLimit)
	}

	clock.t = clock.t.Add(2 * time.Hour)
	again := NewTokenLedger(New(b, opts...), 5)
	if again.Tokens() != 3 {
		t.Fatalf("expected 3 tokens after restart, got %d", again.Tokens())
	}
	if again.Remaining() != 2 {
		t.Fatalf("expected 2 awards left today after restart, got %d", again.Remaining())
	}
	if !again.Award() || !again.Award() || again.Award() {
		t.Fatalf("expected exactly two more awards today")
	}

	clock.t = time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC)
	nextDay := NewTokenLedger(New(b, opts...), 5)
	if nextDay.Tokens() != 5 || nextDay.Remaining() != 5 {
		t.Fatalf("expected balance kept and allowance reset, got tokens=%d remaining=%d", nextDay.Tokens(), nextDay.Remaining())
	}
}

func TestTokenLedgerClampsStoredAllowanceToLimit(t *testing.T) {
	clock := &mutableClock{t: time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)}
	b := newFakeBackend()
	opts := []Option{WithRand(seededRand()), WithLocation(time.UTC), WithClock(clock.Now)}

	NewTokenLedger(New(b, opts...), 5)
	lowered := NewTokenLedger(New(b, opts...), 2)
	if lowered.Remaining() != 2 {
		t.Fatalf("expected allowance clamped to new limit, got %d", lowered.Remaining())
	}
}
