package repository

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"teams-pollbot/internal/domain/poll"
)

// FileStateRepository keeps the document in a single indented JSON file.
type FileStateRepository struct {
	path string
	mu   sync.RWMutex
}

func NewFileStateRepository(path string) *FileStateRepository {
	return &FileStateRepository{path: path}
}

func (r *FileStateRepository) Path() string {
	return r.path
}

func (r *FileStateRepository) Load(_ context.Context) (*poll.State, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return poll.NewState(), nil
		}
		return nil, readFailed("failed to read state file", err)
	}
	return decodeState(data)
}

// Save writes to a temporary file next to the target and renames it, so a
// crash mid-write leaves the previous document intact.
func (r *FileStateRepository) Save(_ context.Context, state *poll.State) error {
	data, err := encodeState(state)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return writeFailed("failed to create data directory", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return writeFailed("failed to create temp file", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return writeFailed("failed to write state file", err)
	}
	if err := tmp.Close(); err != nil {
		return writeFailed("failed to close state file", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return writeFailed("failed to chmod state file", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return writeFailed("failed to replace state file", err)
	}
	return nil
}
