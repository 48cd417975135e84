// Package localstate stores the client-durable gallery state: the liked
// memory ids and the locally-submitted memories that may not yet be
// confirmed by the record store. Each lives in its own JSON file so the two
// never share a write.
package localstate

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/memvault/memvault/internal/model"
)

const (
	envHome         = "MEMVAULT_STATE_HOME" // override for tests
	dirName         = ".memvault"           // default under $HOME
	likesFile       = "likes.json"
	submissionsFile = "submissions.json"
)

// DataDir returns the directory where local state is stored (~/.memvault).
// It creates the directory with 0700 permissions if it does not exist.
func DataDir() (string, error) {
	if custom := os.Getenv(envHome); custom != "" {
		if err := os.MkdirAll(custom, 0o700); err != nil {
			return "", err
		}
		return custom, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine user home: %w", err)
	}
	dir := filepath.Join(home, dirName)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}

// State reads and writes the two local blobs under a single directory.
type State struct {
	dir string
}

// Open prepares a State rooted at dir, creating it if needed.
func Open(dir string) (*State, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	return &State{dir: dir}, nil
}

// LoadLikes returns the persisted liked-id list. A missing file yields an
// empty list, not an error.
func (s *State) LoadLikes() ([]string, error) {
	var ids []string
	if err := s.load(likesFile, &ids); err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// SaveLikes replaces the persisted liked-id list.
func (s *State) SaveLikes(ids []string) error {
	return s.save(likesFile, ids)
}

// LoadSubmissions returns the persisted local-only submissions.
func (s *State) LoadSubmissions() ([]model.MemoryItem, error) {
	var items []model.MemoryItem
	if err := s.load(submissionsFile, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// SaveSubmissions replaces the persisted local-only submissions.
func (s *State) SaveSubmissions(items []model.MemoryItem) error {
	if items == nil {
		items = []model.MemoryItem{}
	}
	return s.save(submissionsFile, items)
}

func (s *State) load(name string, v interface{}) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// save writes via a temp file and rename so a crash mid-write cannot leave
// a truncated blob behind.
func (s *State) save(name string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	tmp := filepath.Join(s.dir, name+".tmp")
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, filepath.Join(s.dir, name))
}
