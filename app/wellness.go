package app

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"elephant/model"
)

// Rotation is a pending replacement of a completed wellness task. The caller
// runs ApplyRotation after Delay on the same loop that serializes every
// other mutation.
type Rotation struct {
	ChecklistID uuid.UUID
	TaskID      uuid.UUID
	Delay       time.Duration
}

// Pending reports whether r refers to a task awaiting replacement.
func (r Rotation) Pending() bool {
	return r.TaskID != uuid.Nil
}

// DrawReplacementWellnessTask returns one wellness pool title chosen uniformly at random.
func (s *Store) DrawReplacementWellnessTask() (string, error) {
	return s.drawWellnessTitle(nil)
}

// AddWellnessActivity appends a title to the wellness pool. The display list
// only changes through rotation, so new activities always go to the pool.
func (s *Store) AddWellnessActivity(title string) (model.Task, error) {
	return s.AddTask(s.prefs.WellnessPoolID, title, true)
}

// ToggleWellnessTask flips completion of a task on the wellness display list.
// When the task became completed the returned Rotation is pending.
func (s *Store) ToggleWellnessTask(taskID uuid.UUID) (model.Task, Rotation, error) {
	listID := s.prefs.WellnessListID
	task, err := s.ToggleTask(listID, taskID)
	if err != nil {
		return model.Task{}, Rotation{}, err
	}
	if !task.IsCompleted {
		return task, Rotation{}, nil
	}
	return task, Rotation{ChecklistID: listID, TaskID: taskID, Delay: s.rotationDelay}, nil
}

// ApplyRotation swaps a completed wellness task for a freshly drawn one. Both
// ids are checked again because the checklist or task may have changed since
// the rotation was scheduled. The list length is unchanged.
func (s *Store) ApplyRotation(r Rotation) (model.Task, error) {
	ci, ti, err := s.locateTask(r.ChecklistID, r.TaskID)
	if err != nil {
		s.log.Debug("rotation dropped", zap.Stringer("checklist", r.ChecklistID), zap.Error(err))
		return model.Task{}, err
	}
	current := s.checklists[ci].Tasks
	if !current[ti].IsCompleted {
		return model.Task{}, ErrRotationStale
	}

	showing := make(map[string]struct{}, len(current))
	for i, t := range current {
		if i != ti {
			showing[t.Title] = struct{}{}
		}
	}
	title, err := s.drawWellnessTitle(showing)
	if err != nil {
		return model.Task{}, err
	}

	replacement := model.NewTask(title, true)
	updated := make([]model.Task, 0, len(current))
	updated = append(updated, current[:ti]...)
	updated = append(updated, current[ti+1:]...)
	updated = append(updated, replacement)
	if err := s.UpdateTasks(r.ChecklistID, updated); err != nil {
		return model.Task{}, err
	}
	return replacement, nil
}

// drawWellnessTitle picks a pool title, avoiding titles in exclude when any other title is left.
func (s *Store) drawWellnessTitle(exclude map[string]struct{}) (string, error) {
	idx := s.indexOfChecklist(s.prefs.WellnessPoolID)
	if idx == -1 || len(s.checklists[idx].Tasks) == 0 {
		return "", ErrWellnessPoolEmpty
	}
	pool := s.checklists[idx].Tasks

	candidates := make([]string, 0, len(pool))
	for _, t := range pool {
		if _, skip := exclude[t.Title]; !skip {
			candidates = append(candidates, t.Title)
		}
	}
	if len(candidates) == 0 {
		for _, t := range pool {
			candidates = append(candidates, t.Title)
		}
	}
	return candidates[s.rng.IntN(len(candidates))], nil
}
