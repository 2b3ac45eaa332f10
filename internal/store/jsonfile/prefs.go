// Package jsonfile persists small documents as JSON files on disk.
package jsonfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bytedance/sonic"

	"github.com/hay-kot/tasq/internal/core/prefs"
)

// PrefsStore implements prefs.Store using a JSON file for persistence.
type PrefsStore struct {
	path string
	mu   sync.RWMutex
}

var _ prefs.Store = (*PrefsStore)(nil)

// NewPrefsStore creates a new JSON file preferences store at the given path.
func NewPrefsStore(path string) *PrefsStore {
	return &PrefsStore{path: path}
}

// Load returns the stored preferences, or zero Prefs when none were saved.
func (s *PrefsStore) Load(ctx context.Context) (prefs.Prefs, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.load()
}

// Save replaces the stored preferences.
func (s *PrefsStore) Save(ctx context.Context, p prefs.Prefs) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.save(p)
}

// Update applies fn to the stored preferences and writes the result.
func (s *PrefsStore) Update(ctx context.Context, fn func(*prefs.Prefs)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.load()
	if err != nil {
		return err
	}
	fn(&p)
	return s.save(p)
}

// load reads the preferences file from disk.
// Returns empty Prefs if file doesn't exist.
func (s *PrefsStore) load() (prefs.Prefs, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return prefs.Prefs{}, nil
		}
		return prefs.Prefs{}, err
	}

	if len(data) == 0 {
		return prefs.Prefs{}, nil
	}

	var p prefs.Prefs
	if err := sonic.Unmarshal(data, &p); err != nil {
		return prefs.Prefs{}, fmt.Errorf("decode %s: %w", s.path, err)
	}

	return p, nil
}

// save writes the preferences file to disk atomically. The file may hold a
// credential, so it is only readable by the owner.
func (s *PrefsStore) save(p prefs.Prefs) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	data, err := sonic.ConfigStd.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}

	return os.Rename(tmp, s.path)
}
