package app

import "go.uber.org/zap"

const DefaultDailyTokenLimit = 5

// TokenLedger counts wellness tokens. At most limit tokens are awarded per
// local calendar day; revoking a token gives that day's allowance back.
// The balance and today's allowance live in the store's preferences, so they
// survive restarts.
type TokenLedger struct {
	store *Store
	limit int
}

// NewTokenLedger returns a ledger persisted through s. A non-positive limit
// uses DefaultDailyTokenLimit.
func NewTokenLedger(s *Store, limit int) *TokenLedger {
	if limit <= 0 {
		limit = DefaultDailyTokenLimit
	}
	l := &TokenLedger{store: s, limit: limit}
	l.rollDay()
	return l
}

// Award adds one token unless today's limit is reached.
func (l *TokenLedger) Award() bool {
	l.rollDay()
	p := &l.store.prefs
	if p.TodaysLimit <= 0 {
		return false
	}
	p.TokenNum++
	p.TodaysLimit--
	l.store.savePreferences()
	return true
}

// Revoke takes one token back, if any.
func (l *TokenLedger) Revoke() bool {
	l.rollDay()
	p := &l.store.prefs
	if p.TokenNum == 0 {
		return false
	}
	p.TokenNum--
	if p.TodaysLimit < l.limit {
		p.TodaysLimit++
	}
	l.store.savePreferences()
	return true
}

func (l *TokenLedger) Tokens() int { return l.store.prefs.TokenNum }

// Remaining is how many tokens can still be awarded today.
func (l *TokenLedger) Remaining() int {
	l.rollDay()
	return l.store.prefs.TodaysLimit
}

// rollDay resets today's allowance on a new local calendar day. A stored
// allowance above the configured limit is clamped.
func (l *TokenLedger) rollDay() {
	s := l.store
	now := s.now().In(s.loc)
	last := s.prefs.LimitUpdate()

	switch {
	case last.IsZero() || !sameDay(now, last.In(s.loc)):
		s.prefs.TodaysLimit = l.limit
		s.prefs.SetLimitUpdate(startOfDay(now))
		s.log.Debug("token limit reset", zap.Int("limit", l.limit))
	case s.prefs.TodaysLimit > l.limit:
		s.prefs.TodaysLimit = l.limit
	case s.prefs.TodaysLimit < 0:
		s.prefs.TodaysLimit = 0
	default:
		return
	}
	s.savePreferences()
}
