package app

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elephant/model"
)

func TestDrawReplacementWellnessTaskComesFromPool(t *testing.T) {
	s, _ := newTestStore(t)
	pool := map[string]bool{}
	for _, tk := range s.Tasks(s.WellnessPoolID()) {
		pool[tk.Title] = true
	}

	for i := 0; i < 50; i++ {
		title, err := s.DrawReplacementWellnessTask()
		require.NoError(t, err)
		assert.True(t, pool[title], "drawn title %q not in pool", title)
	}
}

func TestDrawReplacementWellnessTaskEmptyPool(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.UpdateTasks(s.WellnessPoolID(), []model.Task{}))

	_, err := s.DrawReplacementWellnessTask()
	assert.ErrorIs(t, err, ErrWellnessPoolEmpty)
}

func TestWellnessRotationKeepsThreeAndPreservesOrder(t *testing.T) {
	s, _ := newTestStore(t)
	listID := s.WellnessListID()
	before := s.Tasks(listID)
	require.Len(t, before, 3)

	_, rot, err := s.ToggleWellnessTask(before[1].ID)
	require.NoError(t, err)
	require.True(t, rot.Pending())
	assert.Equal(t, listID, rot.ChecklistID)
	assert.Equal(t, defaultRotationDelay, rot.Delay)

	mid := s.Tasks(listID)
	require.Len(t, mid, 3)
	assert.True(t, mid[1].IsCompleted, "completion must be visible before rotation")

	replacement, err := s.ApplyRotation(rot)
	require.NoError(t, err)

	after := s.Tasks(listID)
	require.Len(t, after, 3)
	assert.Equal(t, before[0].ID, after[0].ID)
	assert.Equal(t, before[2].ID, after[1].ID)
	assert.Equal(t, replacement.ID, after[2].ID)
	assert.False(t, after[2].IsCompleted)
	assert.True(t, after[2].IsWellness)
	for _, tk := range after {
		assert.NotEqual(t, before[1].ID, tk.ID, "completed task must be rotated out")
	}
	assert.NotEqual(t, before[0].Title, replacement.Title)
	assert.NotEqual(t, before[2].Title, replacement.Title)
}

func TestToggleWellnessTaskBackToOpenIsNotPending(t *testing.T) {
	s, _ := newTestStore(t)
	task := s.Tasks(s.WellnessListID())[0]

	_, rot, err := s.ToggleWellnessTask(task.ID)
	require.NoError(t, err)
	require.True(t, rot.Pending())

	reopened, again, err := s.ToggleWellnessTask(task.ID)
	require.NoError(t, err)
	assert.False(t, reopened.IsCompleted)
	assert.False(t, again.Pending())

	_, err = s.ApplyRotation(rot)
	assert.ErrorIs(t, err, ErrRotationStale)
	assert.Equal(t, task.ID, s.Tasks(s.WellnessListID())[0].ID)
}

func TestApplyRotationRevalidatesIDs(t *testing.T) {
	s, _ := newTestStore(t)
	list, err := s.AddChecklist("Short lived")
	require.NoError(t, err)
	task, err := s.AddTask(list.ID, "Breathe", true)
	require.NoError(t, err)
	_, err = s.ToggleTask(list.ID, task.ID)
	require.NoError(t, err)

	rot := Rotation{ChecklistID: list.ID, TaskID: task.ID}
	require.NoError(t, s.RemoveChecklist(list.ID))

	_, err = s.ApplyRotation(rot)
	assert.ErrorIs(t, err, ErrChecklistNotFound)

	_, err = s.ApplyRotation(Rotation{ChecklistID: s.WellnessListID(), TaskID: uuid.New()})
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestToggleWellnessTaskUnknownTask(t *testing.T) {
	s, _ := newTestStore(t)
	_, rot, err := s.ToggleWellnessTask(uuid.New())
	assert.ErrorIs(t, err, ErrTaskNotFound)
	assert.False(t, rot.Pending())
}

func TestAddWellnessActivityAppendsToPool(t *testing.T) {
	s, _ := newTestStore(t)
	display := s.Tasks(s.WellnessListID())

	task, err := s.AddWellnessActivity("  Stretch ")
	require.NoError(t, err)
	assert.Equal(t, "Stretch", task.Title)
	assert.True(t, task.IsWellness)

	pool := s.Tasks(s.WellnessPoolID())
	assert.Equal(t, task.ID, pool[len(pool)-1].ID)
	assert.Equal(t, display, s.Tasks(s.WellnessListID()))
}
