package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"elephant/model"
)

// Backing document names inside the data directory.
const (
	TaskListFile    = "TaskLists.json"
	ChecklistsFile  = "Checklists.json"
	PreferencesFile = "Preferences.json"
)

var errNoValidBackup = errors.New("no valid backup found")

// DecodeError reports a backing file that exists but cannot be decoded.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", filepath.Base(e.Path), e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// document describes how one backing file is defaulted and cleaned up after decoding.
type document[T any] struct {
	empty     func() T
	normalize func(T) T
}

var taskListDoc = document[model.TaskList]{
	empty:     model.NewTaskList,
	normalize: normalizeTaskList,
}

var checklistsDoc = document[[]model.Checklist]{
	empty:     func() []model.Checklist { return []model.Checklist{} },
	normalize: normalizeChecklists,
}

var preferencesDoc = document[model.Preferences]{
	empty:     func() model.Preferences { return model.Preferences{} },
	normalize: func(p model.Preferences) model.Preferences { return p },
}

// LoadTaskList reads the legacy flat list.
// If file does not exist, it returns an initialized empty list.
func LoadTaskList(path string) (model.TaskList, error) {
	return load(path, taskListDoc)
}

// LoadChecklists reads the checklist collection.
// If file does not exist, it returns an empty collection.
func LoadChecklists(path string) ([]model.Checklist, error) {
	return load(path, checklistsDoc)
}

// LoadPreferences reads the preferences document.
// If file does not exist, it returns zero preferences.
func LoadPreferences(path string) (model.Preferences, error) {
	return load(path, preferencesDoc)
}

// SaveTaskList writes the legacy flat list using Autosave semantics.
func SaveTaskList(path string, list model.TaskList) error {
	return Autosave(path, list)
}

// SaveChecklists writes the checklist collection using Autosave semantics.
func SaveChecklists(path string, lists []model.Checklist) error {
	if lists == nil {
		lists = []model.Checklist{}
	}
	return Autosave(path, lists)
}

// SavePreferences writes preferences using Autosave semantics.
func SavePreferences(path string, prefs model.Preferences) error {
	return Autosave(path, prefs)
}

func load[T any](path string, doc document[T]) (T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return doc.empty(), nil
		}
		var zero T
		return zero, err
	}
	v, err := decode(data, doc)
	if err != nil {
		return v, &DecodeError{Path: path, Err: err}
	}
	return v, nil
}

// loadWithRecovery loads a document and tries automatic recovery when the JSON is corrupted.
// It returns an optional status message describing what was recovered.
func loadWithRecovery[T any](path string, doc document[T]) (T, string, error) {
	var zero T
	v, err := load(path, doc)
	if err == nil {
		return v, "", nil
	}
	if !isCorruptStateError(err) {
		return zero, "", err
	}

	corruptPath, moveErr := backupsOf(path).quarantine()
	if moveErr != nil {
		return zero, "", fmt.Errorf("move corrupt file: %w", moveErr)
	}

	recovered, backupPath, backupErr := latestValidBackup(backupsOf(path), doc)
	if backupErr == nil {
		if err := writeJSON(path, recovered); err != nil {
			return zero, "", fmt.Errorf("restore backup: %w", err)
		}
		msg := fmt.Sprintf("recovered %s from %s", filepath.Base(path), filepath.Base(backupPath))
		if corruptPath != "" {
			msg += fmt.Sprintf(" (bad file moved to %s)", filepath.Base(corruptPath))
		}
		return recovered, msg, nil
	}
	if !errors.Is(backupErr, errNoValidBackup) {
		return zero, "", fmt.Errorf("inspect backups: %w", backupErr)
	}

	empty := doc.empty()
	if err := writeJSON(path, empty); err != nil {
		return zero, "", fmt.Errorf("reset corrupt document: %w", err)
	}
	msg := fmt.Sprintf("%s was corrupt with no valid backup; started empty", filepath.Base(path))
	if corruptPath != "" {
		msg += fmt.Sprintf(" (bad file moved to %s)", filepath.Base(corruptPath))
	}
	return empty, msg, nil
}

// Autosave writes safely using temporary file + atomic rename.
// The previous content is kept as a backup first.
func Autosave(path string, v any) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	if err := backupsOf(path).snapshot(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		_ = tmp.Close()
		return err
	}

	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

func decode[T any](data []byte, doc document[T]) (T, error) {
	v := doc.empty()
	if err := json.Unmarshal(data, &v); err != nil {
		var zero T
		return zero, err
	}
	return doc.normalize(v), nil
}

func normalizeTaskList(list model.TaskList) model.TaskList {
	if list.Tasks == nil {
		list.Tasks = []model.Task{}
	}
	return list
}

func normalizeChecklists(lists []model.Checklist) []model.Checklist {
	if lists == nil {
		return []model.Checklist{}
	}
	for i := range lists {
		if lists[i].Tasks == nil {
			lists[i].Tasks = []model.Task{}
		}
	}
	return lists
}

func writeJSON(path string, v any) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}

func isCorruptStateError(err error) bool {
	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) {
		return true
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return true
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return true
	}
	return errors.Is(err, io.ErrUnexpectedEOF)
}
