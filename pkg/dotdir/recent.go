package dotdir

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	recentFile = "recent.json"
)

// RecentState represents the persisted recently-resolved document state.
// The serve command saves it on shutdown so the recently-used cache warming
// strategy has keys to work from across restarts.
type RecentState struct {
	// Keys are document names in most-recent-first order.
	Keys []string `json:"keys"`

	// SavedAt records when the state was written.
	SavedAt time.Time `json:"saved_at"`
}

// LoadRecentState loads the recent-document state from a target .binder/recent.json.
// Returns nil, nil if no state exists (fresh install or cleared state).
// If overrideDir is non-empty, it is used instead of the default ~/.binder/ location.
func (m *Manager) LoadRecentState(overrideDir string) (*RecentState, error) {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(dir, recentFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading recent state: %w", err)
	}

	state := &RecentState{}
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parsing recent state: %w", err)
	}

	return state, nil
}

// SaveRecent persists the recent-document state to a target .binder/recent.json.
func (m *Manager) SaveRecent(state *RecentState, overrideDir string) error {
	if state == nil {
		return errors.New("cannot save nil recent state")
	}

	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling recent state: %w", err)
	}

	path := filepath.Join(dir, recentFile)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing recent state: %w", err)
	}

	return nil
}

// ClearRecent removes the recent-document state file.
// Returns nil if the file doesn't exist (already cleared).
func (m *Manager) ClearRecent(overrideDir string) error {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}

	path := filepath.Join(dir, recentFile)
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("removing recent state: %w", err)
	}

	return nil
}
