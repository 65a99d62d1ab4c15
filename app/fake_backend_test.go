package app

import (
	"math/rand/v2"
	"testing"
	"time"

	"elephant/model"
)

// fakeBackend is an in-memory Backend with error injection.
type fakeBackend struct {
	legacy model.TaskList
	lists  []model.Checklist
	prefs  model.Preferences

	LoadTaskListErr    error
	LoadChecklistsErr  error
	LoadPreferencesErr error
	SaveErr            error

	taskListSaves    int
	checklistSaves   int
	preferencesSaves int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{legacy: model.NewTaskList(), lists: []model.Checklist{}}
}

func (f *fakeBackend) LoadTaskList() (model.TaskList, error) {
	if f.LoadTaskListErr != nil {
		return model.TaskList{}, f.LoadTaskListErr
	}
	return model.TaskList{Tasks: copyTasks(f.legacy.Tasks)}, nil
}

func (f *fakeBackend) SaveTaskList(list model.TaskList) error {
	f.taskListSaves++
	if f.SaveErr != nil {
		return f.SaveErr
	}
	f.legacy = model.TaskList{Tasks: copyTasks(list.Tasks)}
	return nil
}

func (f *fakeBackend) LoadChecklists() ([]model.Checklist, error) {
	if f.LoadChecklistsErr != nil {
		return nil, f.LoadChecklistsErr
	}
	return copyChecklists(f.lists), nil
}

func (f *fakeBackend) SaveChecklists(lists []model.Checklist) error {
	f.checklistSaves++
	if f.SaveErr != nil {
		return f.SaveErr
	}
	f.lists = copyChecklists(lists)
	return nil
}

func (f *fakeBackend) LoadPreferences() (model.Preferences, error) {
	if f.LoadPreferencesErr != nil {
		return model.Preferences{}, f.LoadPreferencesErr
	}
	return f.prefs, nil
}

func (f *fakeBackend) SavePreferences(p model.Preferences) error {
	f.preferencesSaves++
	if f.SaveErr != nil {
		return f.SaveErr
	}
	f.prefs = p
	return nil
}

func seededRand() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestStore(t *testing.T, opts ...Option) (*Store, *fakeBackend) {
	t.Helper()
	b := newFakeBackend()
	opts = append([]Option{WithRand(seededRand()), WithLocation(time.UTC)}, opts...)
	return New(b, opts...), b
}
