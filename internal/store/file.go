// Package store persists medications and chat sessions as pretty-printed
// JSON files.  Files are replaced atomically and every read-modify-write
// cycle holds an advisory lock on "<path>.lock".
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/google/renameio/v2"
)

var (
	// ErrUnreadable is returned (wrapped) when a backing file exists but
	// cannot be decoded.  Stores still fall back to their defaults.
	ErrUnreadable = errors.New("store unreadable")
	// ErrNotFound is returned when a named entity does not exist.
	ErrNotFound = errors.New("not found")
)

type jsonFile struct {
	path string
	lock *flock.Flock
}

func newJSONFile(path string) *jsonFile {
	return &jsonFile{path: path, lock: flock.New(path + ".lock")}
}

// read decodes the file into v.  It reports false when the file is absent.
func (f *jsonFile) read(v any) (bool, error) {
	b, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return true, fmt.Errorf("%w: read %s: %v", ErrUnreadable, f.path, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return true, fmt.Errorf("%w: decode %s: %v", ErrUnreadable, f.path, err)
	}
	return true, nil
}

func (f *jsonFile) write(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", f.path, err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", f.path, err)
	}
	if err := renameio.WriteFile(f.path, append(b, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", f.path, err)
	}
	return nil
}

// locked runs fn while holding the advisory lock for the file.
func (f *jsonFile) locked(fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", f.path, err)
	}
	if err := f.lock.Lock(); err != nil {
		return fmt.Errorf("lock %s: %w", f.path, err)
	}
	defer f.lock.Unlock()
	return fn()
}
