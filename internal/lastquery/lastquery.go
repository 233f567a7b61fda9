// Package lastquery holds the single most recently translated query.
//
// There is exactly one slot. Translating replaces it, a translator failure
// or an explicit clear empties it, and executing reads it without
// consuming it, so the same query can be run repeatedly.
package lastquery

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ErrNoLastQuery is returned by Load when the slot is empty.
var ErrNoLastQuery = errors.New("no translated query")

// Entry is the cached canonical query text.
type Entry struct {
	ID           string    `json:"id"`
	Text         string    `json:"text"`
	TranslatedAt time.Time `json:"translated_at"`
}

// Slot stores at most one Entry.
type Slot interface {
	Load() (Entry, error)
	Store(Entry) error
	Clear() error
}

// Memory is an in-process slot. The zero value is empty and ready for use.
type Memory struct {
	mu    sync.Mutex
	entry *Entry
}

// Load returns the stored entry or ErrNoLastQuery.
func (m *Memory) Load() (Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entry == nil {
		return Entry{}, ErrNoLastQuery
	}
	return *m.entry, nil
}

// Store replaces the entry.
func (m *Memory) Store(e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entry = &e
	return nil
}

// Clear empties the slot.
func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entry = nil
	return nil
}

// File is a slot persisted as a small JSON file, shared by separate
// process invocations. A missing file is an empty slot.
type File struct {
	Path string
}

// NewFile returns a slot stored at path.
func NewFile(path string) *File {
	return &File{Path: path}
}

// Load reads the entry or returns ErrNoLastQuery.
func (f *File) Load() (Entry, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return Entry{}, ErrNoLastQuery
	}
	if err != nil {
		return Entry{}, fmt.Errorf("read last query: %w", err)
	}

	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return Entry{}, fmt.Errorf("read last query %s: %w", f.Path, err)
	}
	if e.Text == "" {
		return Entry{}, ErrNoLastQuery
	}
	return e, nil
}

// Store writes the entry atomically (temp file + rename).
func (f *File) Store(e Entry) error {
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return fmt.Errorf("encode last query: %w", err)
	}

	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("write last query: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".lastquery-*")
	if err != nil {
		return fmt.Errorf("write last query: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("write last query: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write last query: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.Path); err != nil {
		return fmt.Errorf("write last query: %w", err)
	}
	return nil
}

// Clear removes the file. Clearing an empty slot is not an error.
func (f *File) Clear() error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clear last query: %w", err)
	}
	return nil
}
