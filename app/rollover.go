package app

import (
	"time"

	"go.uber.org/zap"

	"elephant/model"
)

// RotateDailyCompletedTasks purges completed tasks from every checklist the
// first time it runs on a new local calendar day and returns how many were
// removed. Later calls on the same day do nothing.
func (s *Store) RotateDailyCompletedTasks() int {
	now := s.now().In(s.loc)
	last := s.prefs.LastUpdate()
	if !last.IsZero() && sameDay(now, last.In(s.loc)) {
		return 0
	}

	removed := 0
	for i := range s.checklists {
		kept := make([]model.Task, 0, len(s.checklists[i].Tasks))
		for _, t := range s.checklists[i].Tasks {
			if t.IsCompleted {
				removed++
				continue
			}
			kept = append(kept, t)
		}
		s.checklists[i].Tasks = kept
	}

	refilled := s.refillWellnessList()

	s.prefs.SetLastUpdate(startOfDay(now))
	s.log.Info("daily rollover",
		zap.Int("removed", removed),
		zap.Int("refilled", refilled),
		zap.Time("day", startOfDay(now)),
	)
	if removed > 0 || refilled > 0 {
		s.saveChecklists()
	}
	s.savePreferences()
	return removed
}

// refillWellnessList draws pool titles until the wellness display list is
// back to model.WellnessDisplaySize. A completed task purged while its
// rotation was still pending would otherwise leave the list short for good.
func (s *Store) refillWellnessList() int {
	idx := s.indexOfChecklist(s.prefs.WellnessListID)
	if idx == -1 {
		return 0
	}

	showing := make(map[string]struct{}, model.WellnessDisplaySize)
	for _, t := range s.checklists[idx].Tasks {
		showing[t.Title] = struct{}{}
	}

	// Like the first-run seed, a pool smaller than the display size fills only that many.
	target := model.WellnessDisplaySize
	if pool := s.indexOfChecklist(s.prefs.WellnessPoolID); pool != -1 && len(s.checklists[pool].Tasks) < target {
		target = len(s.checklists[pool].Tasks)
	}

	added := 0
	for len(s.checklists[idx].Tasks) < target {
		title, err := s.drawWellnessTitle(showing)
		if err != nil {
			s.log.Warn("wellness list left short", zap.Error(err))
			break
		}
		showing[title] = struct{}{}
		s.checklists[idx].Tasks = append(s.checklists[idx].Tasks, model.NewTask(title, true))
		added++
	}
	return added
}

// LastRollover returns the start of the day of the last rollover, or the zero time.
func (s *Store) LastRollover() time.Time {
	return s.prefs.LastUpdate()
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
