package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// JSONStore implements the Store interface using a single JSON file.
// The whole state is read at the start of a run and written back once at
// the end, so there is no in-memory caching between calls. The contract
// assumes serialized runs; there is no concurrent-writer protection.
type JSONStore struct {
	path string
}

// jsonPersistence is the on-disk format for the JSON store.
type jsonPersistence struct {
	Matches     map[string]*Match `json:"matches"`
	History     []RunRecord       `json:"history"`
	LastUpdated time.Time         `json:"last_updated"`
}

// NewJSONStore creates a JSON file-backed store at the given path. The
// file is not created until the first Save.
func NewJSONStore(path string) (Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store directory %s: %w", dir, err)
	}
	return &JSONStore{path: path}, nil
}

// Load reads the state file. A missing file or malformed content yields a
// fresh empty state rather than an error, so a corrupted store never
// blocks a run.
func (s *JSONStore) Load() (*State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return NewState(), nil
	}

	var persist jsonPersistence
	if err := json.Unmarshal(data, &persist); err != nil {
		return NewState(), nil
	}

	state := &State{
		Matches: persist.Matches,
		History: persist.History,
	}
	state.Normalize()
	return state, nil
}

// Save writes the state to disk via a temp file and rename, so an
// interrupted run leaves the previous state file intact.
func (s *JSONStore) Save(state *State) error {
	persist := jsonPersistence{
		Matches:     state.Matches,
		History:     state.History,
		LastUpdated: time.Now().UTC(),
	}
	data, err := json.MarshalIndent(persist, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}

// Close is a no-op; the JSON store holds no open file handles.
func (s *JSONStore) Close() error {
	return nil
}
