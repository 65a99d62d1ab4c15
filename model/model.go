package model

import (
	"time"

	"github.com/google/uuid"
)

// Names of the three permanent checklists created on first run.
const (
	WellnessPoolName = "Grinnell study breaks!"
	WellnessListName = "Wellness tasks"
	WorkListName     = "Work tasks"
)

// WellnessDisplaySize is how many wellness tasks are shown at a time.
const WellnessDisplaySize = 3

// DefaultWellnessActivities seeds the wellness pool on first run.
var DefaultWellnessActivities = []string{
	"Drink a cup of water",
	"Go for a quick walk around campus",
	"Stretch for three minutes",
	"Get a drink and snacks at DSA suite (JRC 3rd)",
	"Get coffee at Saints rest",
	"Get ice cream at Dari Barn",
	"Chill at the hammocks",
	"Play a game (pool/foosball/ping pong) at game room",
	"Admire the beauty of sunset",
}

// DefaultWorkTasks seeds the work checklist on first run.
var DefaultWorkTasks = []string{
	"Get signature for MAP application",
	"Fix bug in Elephant App",
}

// Task is an individual checklist item.
type Task struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	IsCompleted bool      `json:"isCompleted"`
	IsWellness  bool      `json:"isWellness"`
}

// Checklist is a named, ordered collection of tasks.
type Checklist struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Tasks     []Task    `json:"tasks"`
	CanDelete bool      `json:"canDelete"`
}

// TaskList is the legacy flat task list.
//
// Deprecated: checklists are the authoritative task collection. The flat
// list is still loaded and saved so older data files keep working.
type TaskList struct {
	Tasks []Task `json:"tasks"`
}

// Preferences holds small bits of state kept next to the task documents.
type Preferences struct {
	WellnessPoolID uuid.UUID `json:"wellnessPoolId"`
	WellnessListID uuid.UUID `json:"wellnessListId"`
	WorkListID     uuid.UUID `json:"workListId"`
	// LastTasklistUpdate is Unix seconds of the last daily rollover, 0 if never.
	LastTasklistUpdate float64 `json:"lastTasklistUpdate"`

	// TokenNum is the wellness token balance.
	TokenNum int `json:"tokenNum"`
	// TodaysLimit is how many tokens can still be earned on the day of LastLimitUpdate.
	TodaysLimit     int     `json:"todaysLimit"`
	LastLimitUpdate float64 `json:"lastLimitUpdate"`
}

// LastUpdate returns the last rollover time, or the zero time if unset.
func (p Preferences) LastUpdate() time.Time {
	return fromUnixSeconds(p.LastTasklistUpdate)
}

// SetLastUpdate stores t as Unix seconds.
func (p *Preferences) SetLastUpdate(t time.Time) {
	p.LastTasklistUpdate = toUnixSeconds(t)
}

// LimitUpdate returns when the daily token limit was last reset, or the zero time.
func (p Preferences) LimitUpdate() time.Time {
	return fromUnixSeconds(p.LastLimitUpdate)
}

func (p *Preferences) SetLimitUpdate(t time.Time) {
	p.LastLimitUpdate = toUnixSeconds(t)
}

func fromUnixSeconds(v float64) time.Time {
	if v == 0 {
		return time.Time{}
	}
	sec := int64(v)
	nsec := int64((v - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec)
}

func toUnixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

// NewTask returns an open task with a fresh id.
func NewTask(title string, isWellness bool) Task {
	return Task{
		ID:          uuid.New(),
		Title:       title,
		IsCompleted: false,
		IsWellness:  isWellness,
	}
}

// NewChecklist returns an empty checklist with a fresh id.
func NewChecklist(name string, canDelete bool) Checklist {
	return Checklist{
		ID:        uuid.New(),
		Name:      name,
		Tasks:     []Task{},
		CanDelete: canDelete,
	}
}

// NewTaskList returns an initialized empty legacy list.
func NewTaskList() TaskList {
	return TaskList{Tasks: []Task{}}
}
