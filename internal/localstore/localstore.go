// Package localstore keeps the working copy of the board on disk between
// command invocations.
//
// Single file, human-readable. Writes go through a temp file and a rename so
// a crash never leaves a half-written board behind.
package localstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/m-hosseinpour/infinite-kanban-task-manager/pkg/board"
)

const dataFileName = "board.json"

// Store reads and writes board.json in a data directory.
type Store struct {
	dir string
}

// New creates a store rooted at dir. The directory is created on first save.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the board file path.
func (s *Store) Path() string {
	return filepath.Join(s.dir, dataFileName)
}

// Load returns the stored board, or a fresh board when none has been saved.
func (s *Store) Load() (board.Board, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return board.New(), nil
		}
		return nil, fmt.Errorf("failed to read board file: %w", err)
	}

	var b board.Board
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to parse board file %s: %w", s.Path(), err)
	}
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("board file %s is invalid: %w", s.Path(), err)
	}
	for i := range b {
		if b[i].Tasks == nil {
			b[i].Tasks = []board.Item{}
		}
	}
	return b, nil
}

// Save writes b atomically.
func (s *Store) Save(b board.Board) error {
	if err := b.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid board: %w", err)
	}
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode board: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	tmp, err := os.CreateTemp(s.dir, dataFileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write board file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write board file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path()); err != nil {
		return fmt.Errorf("failed to replace board file: %w", err)
	}
	return nil
}
