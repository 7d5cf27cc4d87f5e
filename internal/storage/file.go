// Package storage persists tracker state as JSON files so demo and CLI data
// survives process restarts.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"worklens/internal/provider"
)

// FileStore writes one JSON file per tool under a base directory. Writes go
// through a temp file and rename, so a crash mid-write never corrupts the
// previous snapshot.
type FileStore struct {
	baseDir string
	mu      sync.Mutex
}

var toolNamePattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

func NewFileStore(baseDir string) (*FileStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state directory %s: %w", baseDir, err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (fs *FileStore) path(tool string) (string, error) {
	if !toolNamePattern.MatchString(tool) {
		return "", fmt.Errorf("invalid tool name %q", tool)
	}
	return filepath.Join(fs.baseDir, tool+".json"), nil
}

// Save writes the state snapshot for the named tool.
func (fs *FileStore) Save(tool string, state provider.TrackerState) error {
	path, err := fs.path(tool)
	if err != nil {
		return err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	tempPath := path + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(state); err != nil {
		file.Close()
		os.Remove(tempPath)
		return err
	}
	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return err
	}
	return os.Rename(tempPath, path)
}

// Load reads the state snapshot for the named tool. The second return is
// false when no snapshot exists yet.
func (fs *FileStore) Load(tool string) (provider.TrackerState, bool, error) {
	path, err := fs.path(tool)
	if err != nil {
		return provider.TrackerState{}, false, err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return provider.TrackerState{}, false, nil
		}
		return provider.TrackerState{}, false, err
	}
	defer file.Close()

	var state provider.TrackerState
	if err := json.NewDecoder(file).Decode(&state); err != nil {
		return provider.TrackerState{}, false, fmt.Errorf("decoding %s: %w", path, err)
	}
	return state, true, nil
}
