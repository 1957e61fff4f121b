// Package transfer converts boards to and from the portable snapshot document
// used for file export and import.
//
// Export refuses pristine boards. Import never trusts its input: the raw
// document is checked by Validate, which returns every shape problem it finds,
// and only a clean document is turned into a board.
package transfer

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/m-hosseinpour/infinite-kanban-task-manager/pkg/board"
)

// Version is written to every exported snapshot.
const Version = "1.0"

// exportDateLayout matches ISO-8601 with millisecond precision in UTC.
const exportDateLayout = "2006-01-02T15:04:05.000Z"

var (
	// ErrNothingToExport is returned when the board is still in its initial shape.
	ErrNothingToExport = errors.New("nothing to export")

	// ErrInvalidFormat wraps every import rejection.
	ErrInvalidFormat = errors.New("invalid import format")
)

// Snapshot is the exported document.
type Snapshot struct {
	Version    string      `json:"version"`
	ExportDate string      `json:"exportDate"`
	Columns    board.Board `json:"columns"`
}

// Export builds a snapshot of b taken at now.
func Export(b board.Board, now time.Time) (*Snapshot, error) {
	if b.IsPristine() {
		return nil, ErrNothingToExport
	}
	return &Snapshot{
		Version:    Version,
		ExportDate: now.UTC().Format(exportDateLayout),
		Columns:    b.Clone(),
	}, nil
}

// Encode renders a snapshot as indented JSON.
func Encode(s *Snapshot) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return append(data, '\n'), nil
}

// FileName returns the export file name for the given day.
func FileName(now time.Time) string {
	return fmt.Sprintf("kanban-export-%s.json", now.Format("2006-01-02"))
}

// WriteFile writes the snapshot into dir under FileName(now) and returns the
// written path.
func WriteFile(dir string, snapshot *Snapshot, now time.Time) (string, error) {
	data, err := Encode(snapshot)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	path := filepath.Join(dir, FileName(now))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return path, nil
}
