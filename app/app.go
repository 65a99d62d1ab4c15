package app

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"elephant/model"
)

const defaultRotationDelay = 2 * time.Second

var (
	ErrChecklistNotFound  = errors.New("checklist not found")
	ErrChecklistProtected = errors.New("checklist cannot be deleted")
	ErrTaskNotFound       = errors.New("task not found")
	ErrDuplicateTaskID    = errors.New("task id already in use")
	ErrInvalidName        = errors.New("name must not be empty")
	ErrInvalidTask        = errors.New("task title must not be empty")
	ErrWellnessPoolEmpty  = errors.New("wellness pool is empty")
	ErrRotationStale      = errors.New("task is no longer completed")
)

// Backend persists the store's documents. Every save is a whole-document replace.
type Backend interface {
	LoadTaskList() (model.TaskList, error)
	SaveTaskList(model.TaskList) error
	LoadChecklists() ([]model.Checklist, error)
	SaveChecklists([]model.Checklist) error
	LoadPreferences() (model.Preferences, error)
	SavePreferences(model.Preferences) error
}

// Store owns every checklist and task. It is not safe for concurrent use:
// callers serialize access through one event loop.
type Store struct {
	backend Backend
	log     *zap.Logger
	rng     *rand.Rand
	now     func() time.Time
	loc     *time.Location

	wellnessSeed  []string
	rotationDelay time.Duration

	checklists []model.Checklist
	legacy     model.TaskList
	prefs      model.Preferences
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for non-fatal persistence failures.
func WithLogger(log *zap.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// WithRand sets the random source used for wellness sampling.
func WithRand(r *rand.Rand) Option {
	return func(s *Store) {
		if r != nil {
			s.rng = r
		}
	}
}

// WithClock sets the time source used by the daily rollover.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocation sets the time zone that defines a calendar day.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithWellnessActivities overrides the titles seeded into the wellness pool on first run.
func WithWellnessActivities(titles []string) Option {
	return func(s *Store) {
		cleaned := make([]string, 0, len(titles))
		for _, t := range titles {
			if t = strings.TrimSpace(t); t != "" {
				cleaned = append(cleaned, t)
			}
		}
		if len(cleaned) > 0 {
			s.wellnessSeed = cleaned
		}
	}
}

// WithRotationDelay sets how long a completed wellness task stays visible before it is replaced.
func WithRotationDelay(d time.Duration) Option {
	return func(s *Store) {
		if d >= 0 {
			s.rotationDelay = d
		}
	}
}

// New loads state from backend and seeds the default checklists on first run.
func New(backend Backend, opts ...Option) *Store {
	now := time.Now()
	s := &Store{
		backend:       backend,
		log:           zap.NewNop(),
		rng:           rand.New(rand.NewPCG(uint64(now.UnixNano()), uint64(now.Unix()))),
		now:           time.Now,
		loc:           time.Local,
		wellnessSeed:  model.DefaultWellnessActivities,
		rotationDelay: defaultRotationDelay,
		checklists:    []model.Checklist{},
		legacy:        model.NewTaskList(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Load()
	s.InitializeDefaults()
	return s
}

// Load reads every backing document. A document that cannot be read keeps
// its default value; startup never fails.
func (s *Store) Load() {
	if legacy, err := s.backend.LoadTaskList(); err != nil {
		s.log.Warn("load tasks failed, using empty list", zap.Error(err))
	} else {
		s.legacy = legacy
	}

	if lists, err := s.backend.LoadChecklists(); err != nil {
		s.log.Warn("load checklists failed, using defaults", zap.Error(err))
	} else if lists != nil {
		s.checklists = lists
	}

	if prefs, err := s.backend.LoadPreferences(); err != nil {
		s.log.Warn("load preferences failed", zap.Error(err))
	} else {
		s.prefs = prefs
	}

	if len(s.checklists) > 0 && s.recoverDistinguishedIDs() {
		s.savePreferences()
	}
}

// InitializeDefaults seeds the wellness pool, the wellness display list and
// the work list. It does nothing once any checklist exists.
func (s *Store) InitializeDefaults() {
	if len(s.checklists) > 0 {
		return
	}

	pool := model.NewChecklist(model.WellnessPoolName, false)
	for _, title := range s.wellnessSeed {
		pool.Tasks = append(pool.Tasks, model.NewTask(title, true))
	}

	wellness := model.NewChecklist(model.WellnessListName, false)
	picks := model.WellnessDisplaySize
	if picks > len(pool.Tasks) {
		picks = len(pool.Tasks)
	}
	for _, i := range s.rng.Perm(len(pool.Tasks))[:picks] {
		wellness.Tasks = append(wellness.Tasks, model.NewTask(pool.Tasks[i].Title, true))
	}

	work := model.NewChecklist(model.WorkListName, false)
	for _, title := range model.DefaultWorkTasks {
		work.Tasks = append(work.Tasks, model.NewTask(title, false))
	}

	s.checklists = []model.Checklist{pool, wellness, work}
	s.prefs.WellnessPoolID = pool.ID
	s.prefs.WellnessListID = wellness.ID
	s.prefs.WorkListID = work.ID

	s.log.Info("seeded default checklists",
		zap.Int("pool", len(pool.Tasks)),
		zap.Int("wellness", len(wellness.Tasks)),
		zap.Int("work", len(work.Tasks)),
	)
	s.saveChecklists()
	s.savePreferences()
}

func (s *Store) WellnessPoolID() uuid.UUID { return s.prefs.WellnessPoolID }
func (s *Store) WellnessListID() uuid.UUID { return s.prefs.WellnessListID }
func (s *Store) WorkListID() uuid.UUID     { return s.prefs.WorkListID }

// RotationDelay is how long a completed wellness task stays before ApplyRotation should run.
func (s *Store) RotationDelay() time.Duration { return s.rotationDelay }

// Checklists returns all checklists in display order as a copy.
func (s *Store) Checklists() []model.Checklist {
	return copyChecklists(s.checklists)
}

// Checklist returns a copy of one checklist.
func (s *Store) Checklist(id uuid.UUID) (model.Checklist, error) {
	idx := s.indexOfChecklist(id)
	if idx == -1 {
		return model.Checklist{}, ErrChecklistNotFound
	}
	return copyChecklist(s.checklists[idx]), nil
}

// AddChecklist appends a deletable, empty checklist.
func (s *Store) AddChecklist(name string) (model.Checklist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Checklist{}, ErrInvalidName
	}
	list := model.NewChecklist(name, true)
	s.checklists = append(s.checklists, list)
	s.saveChecklists()
	return copyChecklist(list), nil
}

func (s *Store) RenameChecklist(id uuid.UUID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidName
	}
	idx := s.indexOfChecklist(id)
	if idx == -1 {
		return ErrChecklistNotFound
	}
	s.checklists[idx].Name = name
	s.saveChecklists()
	return nil
}

// RemoveChecklist deletes a checklist. Permanent checklists report ErrChecklistProtected.
func (s *Store) RemoveChecklist(id uuid.UUID) error {
	idx := s.indexOfChecklist(id)
	if idx == -1 {
		return ErrChecklistNotFound
	}
	if !s.checklists[idx].CanDelete {
		return fmt.Errorf("%w: %s", ErrChecklistProtected, s.checklists[idx].Name)
	}
	s.checklists = append(s.checklists[:idx], s.checklists[idx+1:]...)
	s.saveChecklists()
	return nil
}

// Tasks returns the tasks of a checklist in order, or an empty slice for an unknown id.
func (s *Store) Tasks(checklistID uuid.UUID) []model.Task {
	idx := s.indexOfChecklist(checklistID)
	if idx == -1 {
		return []model.Task{}
	}
	return copyTasks(s.checklists[idx].Tasks)
}

// AddTask appends an open task to a checklist.
func (s *Store) AddTask(checklistID uuid.UUID, title string, isWellness bool) (model.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return model.Task{}, ErrInvalidTask
	}
	idx := s.indexOfChecklist(checklistID)
	if idx == -1 {
		return model.Task{}, ErrChecklistNotFound
	}
	task := model.NewTask(title, isWellness)
	s.checklists[idx].Tasks = append(s.checklists[idx].Tasks, task)
	s.saveChecklists()
	return task, nil
}

// UpdateTasks replaces the whole task sequence of a checklist. Tasks without
// an id get a fresh one; ids already used by another checklist are rejected.
// The legacy document is rewritten alongside the checklist collection.
func (s *Store) UpdateTasks(checklistID uuid.UUID, tasks []model.Task) error {
	idx := s.indexOfChecklist(checklistID)
	if idx == -1 {
		return ErrChecklistNotFound
	}

	updated := copyTasks(tasks)
	seen := make(map[uuid.UUID]struct{}, len(updated))
	for i := range updated {
		if updated[i].ID == uuid.Nil {
			updated[i].ID = uuid.New()
		}
		if _, dup := seen[updated[i].ID]; dup || s.taskIDUsedOutside(updated[i].ID, idx) {
			return fmt.Errorf("%w: %s", ErrDuplicateTaskID, updated[i].ID)
		}
		seen[updated[i].ID] = struct{}{}
	}

	s.checklists[idx].Tasks = updated
	s.saveChecklists()
	s.saveTaskList()
	return nil
}

// RemoveTask deletes one task from a checklist.
func (s *Store) RemoveTask(checklistID, taskID uuid.UUID) error {
	ci, ti, err := s.locateTask(checklistID, taskID)
	if err != nil {
		return err
	}
	tasks := s.checklists[ci].Tasks
	s.checklists[ci].Tasks = append(tasks[:ti], tasks[ti+1:]...)
	s.saveChecklists()
	return nil
}

// ToggleTask flips completion of a task in place.
func (s *Store) ToggleTask(checklistID, taskID uuid.UUID) (model.Task, error) {
	ci, ti, err := s.locateTask(checklistID, taskID)
	if err != nil {
		return model.Task{}, err
	}
	task := &s.checklists[ci].Tasks[ti]
	task.IsCompleted = !task.IsCompleted
	s.saveChecklists()
	return *task, nil
}

// RenameTask edits a task title in place.
func (s *Store) RenameTask(checklistID, taskID uuid.UUID, title string) (model.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return model.Task{}, ErrInvalidTask
	}
	ci, ti, err := s.locateTask(checklistID, taskID)
	if err != nil {
		return model.Task{}, err
	}
	s.checklists[ci].Tasks[ti].Title = title
	s.saveChecklists()
	return s.checklists[ci].Tasks[ti], nil
}

// LegacyTasks returns the deprecated flat list as a copy.
func (s *Store) LegacyTasks() []model.Task {
	return copyTasks(s.legacy.Tasks)
}

// AddLegacyTask appends to the deprecated flat list.
func (s *Store) AddLegacyTask(title string) (model.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return model.Task{}, ErrInvalidTask
	}
	task := model.NewTask(title, false)
	s.legacy.Tasks = append(s.legacy.Tasks, task)
	s.saveTaskList()
	return task, nil
}

func (s *Store) ToggleLegacyTaskCompletion(taskID uuid.UUID) (model.Task, error) {
	for i := range s.legacy.Tasks {
		if s.legacy.Tasks[i].ID == taskID {
			s.legacy.Tasks[i].IsCompleted = !s.legacy.Tasks[i].IsCompleted
			s.saveTaskList()
			return s.legacy.Tasks[i], nil
		}
	}
	return model.Task{}, ErrTaskNotFound
}

func (s *Store) RemoveLegacyTask(taskID uuid.UUID) error {
	for i := range s.legacy.Tasks {
		if s.legacy.Tasks[i].ID == taskID {
			s.legacy.Tasks = append(s.legacy.Tasks[:i], s.legacy.Tasks[i+1:]...)
			s.saveTaskList()
			return nil
		}
	}
	return ErrTaskNotFound
}

// recoverDistinguishedIDs points missing or dangling preference ids at the
// permanent checklists, which were created in pool, wellness, work order.
func (s *Store) recoverDistinguishedIDs() bool {
	protected := make([]uuid.UUID, 0, 3)
	for _, l := range s.checklists {
		if !l.CanDelete {
			protected = append(protected, l.ID)
		}
	}

	changed := false
	refs := []*uuid.UUID{&s.prefs.WellnessPoolID, &s.prefs.WellnessListID, &s.prefs.WorkListID}
	for i, ref := range refs {
		if s.indexOfChecklist(*ref) != -1 {
			continue
		}
		if i >= len(protected) {
			s.log.Warn("permanent checklist missing", zap.Int("slot", i))
			continue
		}
		*ref = protected[i]
		changed = true
	}
	return changed
}

func (s *Store) indexOfChecklist(id uuid.UUID) int {
	if id == uuid.Nil {
		return -1
	}
	for i := range s.checklists {
		if s.checklists[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) locateTask(checklistID, taskID uuid.UUID) (int, int, error) {
	ci := s.indexOfChecklist(checklistID)
	if ci == -1 {
		return -1, -1, ErrChecklistNotFound
	}
	ti := indexOfTask(s.checklists[ci].Tasks, taskID)
	if ti == -1 {
		return -1, -1, ErrTaskNotFound
	}
	return ci, ti, nil
}

func (s *Store) taskIDUsedOutside(id uuid.UUID, skip int) bool {
	for i := range s.checklists {
		if i == skip {
			continue
		}
		if indexOfTask(s.checklists[i].Tasks, id) != -1 {
			return true
		}
	}
	return false
}

func (s *Store) saveChecklists() {
	if err := s.backend.SaveChecklists(copyChecklists(s.checklists)); err != nil {
		s.log.Error("save checklists failed", zap.Error(err))
	}
}

func (s *Store) saveTaskList() {
	if err := s.backend.SaveTaskList(model.TaskList{Tasks: copyTasks(s.legacy.Tasks)}); err != nil {
		s.log.Error("save tasks failed", zap.Error(err))
	}
}

func (s *Store) savePreferences() {
	if err := s.backend.SavePreferences(s.prefs); err != nil {
		s.log.Error("save preferences failed", zap.Error(err))
	}
}

func indexOfTask(tasks []model.Task, id uuid.UUID) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func copyTasks(tasks []model.Task) []model.Task {
	out := make([]model.Task, len(tasks))
	copy(out, tasks)
	return out
}

func copyChecklist(l model.Checklist) model.Checklist {
	l.Tasks = copyTasks(l.Tasks)
	return l
}

func copyChecklists(lists []model.Checklist) []model.Checklist {
	out := make([]model.Checklist, len(lists))
	for i := range lists {
		out[i] = copyChecklist(lists[i])
	}
	return out
}
