package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"go.uber.org/zap"

	"elephant/model"
)

const lockFile = ".elephant.lock"

// FileBackend keeps the three backing documents in one directory.
// Writers take an exclusive flock on the directory's lock file so a second
// running instance cannot interleave a whole-document rewrite.
type FileBackend struct {
	Dir string
	log *zap.Logger
}

// NewFileBackend returns a backend rooted at dir. A nil logger disables logging.
func NewFileBackend(dir string, log *zap.Logger) *FileBackend {
	if log == nil {
		log = zap.NewNop()
	}
	return &FileBackend{Dir: dir, log: log.Named("store")}
}

func (b *FileBackend) TaskListPath() string    { return filepath.Join(b.Dir, TaskListFile) }
func (b *FileBackend) ChecklistsPath() string  { return filepath.Join(b.Dir, ChecklistsFile) }
func (b *FileBackend) PreferencesPath() string { return filepath.Join(b.Dir, PreferencesFile) }

func (b *FileBackend) LoadTaskList() (model.TaskList, error) {
	return loadLogged(b, b.TaskListPath(), taskListDoc)
}

func (b *FileBackend) LoadChecklists() ([]model.Checklist, error) {
	return loadLogged(b, b.ChecklistsPath(), checklistsDoc)
}

func (b *FileBackend) LoadPreferences() (model.Preferences, error) {
	return loadLogged(b, b.PreferencesPath(), preferencesDoc)
}

func (b *FileBackend) SaveTaskList(list model.TaskList) error {
	return b.withLock(func() error { return SaveTaskList(b.TaskListPath(), list) })
}

func (b *FileBackend) SaveChecklists(lists []model.Checklist) error {
	return b.withLock(func() error { return SaveChecklists(b.ChecklistsPath(), lists) })
}

func (b *FileBackend) SavePreferences(prefs model.Preferences) error {
	return b.withLock(func() error { return SavePreferences(b.PreferencesPath(), prefs) })
}

func loadLogged[T any](b *FileBackend, path string, doc document[T]) (T, error) {
	var v T
	err := b.withLock(func() error {
		var (
			status string
			err    error
		)
		v, status, err = loadWithRecovery(path, doc)
		if status != "" {
			b.log.Warn("recovered backing document", zap.String("path", path), zap.String("status", status))
		}
		return err
	})
	return v, err
}

func (b *FileBackend) withLock(fn func() error) error {
	if err := os.MkdirAll(b.Dir, 0o755); err != nil {
		return err
	}
	lk := flock.New(filepath.Join(b.Dir, lockFile))
	if err := lk.Lock(); err != nil {
		return fmt.Errorf("lock data dir: %w", err)
	}
	defer func() {
		if err := lk.Unlock(); err != nil {
			b.log.Debug("unlock data dir", zap.Error(err))
		}
	}()
	return fn()
}
