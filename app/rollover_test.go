package app

import (
	"errors"
	"testing"
	"time"

	"elephant/model"
)

// mutableClock lets a test move the store's notion of "now".
type mutableClock struct{ t time.Time }

func (c *mutableClock) Now() time.Time { return c.t }

func TestRotateDailyCompletedTasksRemovesCompletedOnNewDay(t *testing.T) {
	clock := &mutableClock{t: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
	s, b := newTestStore(t, WithClock(clock.Now))

	if removed := s.RotateDailyCompletedTasks(); removed != 0 {
		t.Fatalf("expected first rollover to remove nothing, got %d", removed)
	}

	reading := mustAddChecklist(t, s, "Reading")
	done := mustAddTask(t, s, reading.ID, "done")
	mustAddTask(t, s, reading.ID, "open")
	if _, err := s.ToggleTask(reading.ID, done.ID); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	work := s.Tasks(s.WorkListID())
	if _, err := s.ToggleTask(s.WorkListID(), work[1].ID); err != nil {
		t.Fatalf("toggle work failed: %v", err)
	}

	if removed := s.RotateDailyCompletedTasks(); removed != 0 {
		t.Fatalf("expected same-day rollover to be a no-op, got %d", removed)
	}

	clock.t = time.Date(2026, 3, 11, 0, 5, 0, 0, time.UTC)
	if removed := s.RotateDailyCompletedTasks(); removed != 2 {
		t.Fatalf("expected 2 completed tasks removed, got %d", removed)
	}
	for _, l := range s.Checklists() {
		for _, tk := range l.Tasks {
			if tk.IsCompleted {
				t.Fatalf("completed task %q survived rollover in %q", tk.Title, l.Name)
			}
		}
	}
	if got := titles(s.Tasks(reading.ID)); len(got) != 1 || got[0] != "open" {
		t.Fatalf("expected only open task left, got %v", got)
	}

	wantDay := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	if !s.LastRollover().Equal(wantDay) {
		t.Fatalf("expected last rollover %v, got %v", wantDay, s.LastRollover())
	}
	if !b.prefs.LastUpdate().Equal(wantDay) {
		t.Fatalf("expected rollover timestamp persisted, got %v", b.prefs.LastUpdate())
	}
	var persistedCompleted int
	for _, l := range b.lists {
		for _, tk := range l.Tasks {
			if tk.IsCompleted {
				persistedCompleted++
			}
		}
	}
	if persistedCompleted != 0 {
		t.Fatalf("expected persisted checklists without completed tasks")
	}

	if _, err := s.ToggleTask(reading.ID, s.Tasks(reading.ID)[0].ID); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	clock.t = clock.t.Add(20 * time.Hour)
	if removed := s.RotateDailyCompletedTasks(); removed != 0 {
		t.Fatalf("expected second call on the same day to remove nothing, got %d", removed)
	}
}

func TestRotateDailyUsesLocalCalendarDay(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	clock := &mutableClock{t: time.Date(2026, 3, 10, 22, 0, 0, 0, loc)}
	b := newFakeBackend()
	s := New(b, WithRand(seededRand()), WithClock(clock.Now), WithLocation(loc))
	s.RotateDailyCompletedTasks()

	work := s.Tasks(s.WorkListID())
	if _, err := s.ToggleTask(s.WorkListID(), work[0].ID); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}

	// 03:30 UTC on the 11th is still the 10th in UTC-5.
	clock.t = time.Date(2026, 3, 11, 3, 30, 0, 0, time.UTC)
	if removed := s.RotateDailyCompletedTasks(); removed != 0 {
		t.Fatalf("expected no rollover within the same local day, got %d", removed)
	}
}

func TestRotateDailyWithPriorTimestamp(t *testing.T) {
	b := newFakeBackend()
	seed := New(b, WithRand(seededRand()))
	work := seed.Tasks(seed.WorkListID())
	if _, err := seed.ToggleTask(seed.WorkListID(), work[0].ID); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	b.prefs.SetLastUpdate(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	s := New(b, WithRand(seededRand()), WithLocation(time.UTC),
		WithClock(fixedClock(time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC))))
	if removed := s.RotateDailyCompletedTasks(); removed != 1 {
		t.Fatalf("expected 1 removal, got %d", removed)
	}
	if got := len(s.Tasks(s.WorkListID())); got != len(model.DefaultWorkTasks)-1 {
		t.Fatalf("expected one work task left, got %d", got)
	}
	if removed := s.RotateDailyCompletedTasks(); removed != 0 {
		t.Fatalf("expected idempotent second call, got %d", removed)
	}
}

func TestRolloverBeforePendingRotationRefillsWellnessList(t *testing.T) {
	clock := &mutableClock{t: time.Date(2026, 3, 10, 23, 59, 59, 0, time.UTC)}
	s, b := newTestStore(t, WithClock(clock.Now))
	s.RotateDailyCompletedTasks()

	display := s.Tasks(s.WellnessListID())
	_, rot, err := s.ToggleWellnessTask(display[0].ID)
	if err != nil {
		t.Fatalf("toggle wellness failed: %v", err)
	}

	clock.t = clock.t.Add(time.Second)
	if removed := s.RotateDailyCompletedTasks(); removed != 1 {
		t.Fatalf("expected the completed wellness task to be purged, got %d", removed)
	}

	if _, err := s.ApplyRotation(rot); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected the pending rotation to find nothing, got %v", err)
	}

	after := s.Tasks(s.WellnessListID())
	if len(after) != model.WellnessDisplaySize {
		t.Fatalf("expected %d wellness tasks after rollover, got %d", model.WellnessDisplaySize, len(after))
	}
	if after[0].ID != display[1].ID || after[1].ID != display[2].ID {
		t.Fatalf("expected surviving tasks to keep their order, got %v", titles(after))
	}
	seen := map[string]bool{}
	for _, tk := range after {
		if tk.IsCompleted || !tk.IsWellness {
			t.Fatalf("expected open wellness tasks, got %+v", tk)
		}
		if seen[tk.Title] {
			t.Fatalf("expected distinct titles on display, got %v", titles(after))
		}
		seen[tk.Title] = true
	}

	for _, l := range b.lists {
		if l.ID == s.WellnessListID() && len(l.Tasks) != model.WellnessDisplaySize {
			t.Fatalf("expected refilled list to be persisted, got %d tasks", len(l.Tasks))
		}
	}
}

func TestRolloverWithEmptyPoolLeavesWellnessListShort(t *testing.T) {
	clock := &mutableClock{t: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)}
	s, _ := newTestStore(t, WithClock(clock.Now))
	s.RotateDailyCompletedTasks()

	if err := s.UpdateTasks(s.WellnessPoolID(), []model.Task{}); err != nil {
		t.Fatalf("clear pool failed: %v", err)
	}
	display := s.Tasks(s.WellnessListID())
	if _, err := s.ToggleTask(s.WellnessListID(), display[0].ID); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}

	clock.t = clock.t.Add(24 * time.Hour)
	if removed := s.RotateDailyCompletedTasks(); removed != 1 {
		t.Fatalf("expected 1 removal, got %d", removed)
	}
	if got := len(s.Tasks(s.WellnessListID())); got != 2 {
		t.Fatalf("expected list to stay short without a pool, got %d", got)
	}
}
