package store

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"time"
)

const maxRotatingBackups = 10

// stampLayout sorts lexically in time order, so file names alone order the history.
const stampLayout = "20060102T150405.000000000Z"

// clock stamps backup and quarantine names.
var clock = time.Now

// backupSet names the files kept next to one document:
//
//	<doc>.bak               content before the last save
//	<doc>.bak.<stamp>       rotating history, newest maxRotatingBackups kept
//	<doc>.corrupt.<stamp>   a document that failed to decode
type backupSet struct {
	doc string
}

func backupsOf(doc string) backupSet { return backupSet{doc: doc} }

func stamp(t time.Time) string { return t.UTC().Format(stampLayout) }

func (b backupSet) latest() string { return b.doc + ".bak" }

func (b backupSet) historyPattern() string { return b.doc + ".bak.*" }

func (b backupSet) quarantinePath(t time.Time) string {
	return b.doc + ".corrupt." + stamp(t)
}

// history returns the rotating backups, oldest first.
func (b backupSet) history() ([]string, error) {
	files, err := filepath.Glob(b.historyPattern())
	if err != nil {
		return nil, err
	}
	slices.Sort(files)
	return files, nil
}

// snapshot copies the current document into the latest backup and the
// history, then prunes the history. A missing document is not an error.
func (b backupSet) snapshot() error {
	data, err := os.ReadFile(b.doc)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := os.WriteFile(b.latest(), data, 0o644); err != nil {
		return err
	}
	if err := os.WriteFile(b.doc+".bak."+stamp(clock()), data, 0o644); err != nil {
		return err
	}
	return b.prune()
}

func (b backupSet) prune() error {
	files, err := b.history()
	if err != nil {
		return err
	}
	for len(files) > maxRotatingBackups {
		if err := os.Remove(files[0]); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		files = files[1:]
	}
	return nil
}

// candidates lists restore sources, newest first: the latest backup, then
// the history.
func (b backupSet) candidates() ([]string, error) {
	files, err := b.history()
	if err != nil {
		return nil, err
	}
	slices.Reverse(files)
	if _, err := os.Stat(b.latest()); err == nil {
		files = append([]string{b.latest()}, files...)
	}
	return files, nil
}

// quarantine moves the document aside and returns where it went, or "" if
// there was nothing to move.
func (b backupSet) quarantine() (string, error) {
	if _, err := os.Stat(b.doc); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	dst := b.quarantinePath(clock())
	if err := os.Rename(b.doc, dst); err != nil {
		return "", err
	}
	return dst, nil
}

// latestValidBackup decodes candidates newest first and returns the first that parses.
func latestValidBackup[T any](b backupSet, doc document[T]) (T, string, error) {
	var zero T
	files, err := b.candidates()
	if err != nil {
		return zero, "", err
	}
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			continue
		}
		if v, err := decode(data, doc); err == nil {
			return v, f, nil
		}
	}
	return zero, "", errNoValidBackup
}
