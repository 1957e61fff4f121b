package remote

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/m-hosseinpour/infinite-kanban-task-manager/pkg/board"
)

// Serialization helpers for converting between records and Redis hashes.
//
// The board itself is stored as a single JSON-encoded field: the store has no
// schema beyond "one board-shaped JSON value per identity", so individual
// columns are never addressed in Redis.

// Record is the stored snapshot of one identity's board.
type Record struct {
	Identity  string      `json:"identity"`
	Board     board.Board `json:"board_data"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Stamp renders a timestamp as a fixed-width decimal of Unix nanoseconds.
// Fixed width makes lexical comparison equal to numeric comparison, which the
// upsert script relies on (Lua numbers lose precision past 2^53).
func Stamp(t time.Time) string {
	return fmt.Sprintf("%020d", t.UnixNano())
}

// ParseStamp is the inverse of Stamp.
func ParseStamp(s string) (time.Time, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stamp %q: %w", s, err)
	}
	return time.Unix(0, n).UTC(), nil
}

// RecordToHash converts a Record to a Redis hash format.
func RecordToHash(r *Record) (map[string]interface{}, error) {
	boardJSON, err := json.Marshal(r.Board)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal board: %w", err)
	}

	return map[string]interface{}{
		fieldIdentity:  r.Identity,
		fieldBoardData: string(boardJSON),
		fieldUpdatedAt: r.UpdatedAt.UTC().Format(time.RFC3339Nano),
		fieldStamp:     Stamp(r.UpdatedAt),
	}, nil
}

// HashToRecord converts a Redis hash back to a Record.
// The decoded board must satisfy board.Validate.
func HashToRecord(hash map[string]string) (*Record, error) {
	var b board.Board
	if err := json.Unmarshal([]byte(hash[fieldBoardData]), &b); err != nil {
		return nil, fmt.Errorf("failed to unmarshal board_data: %w", err)
	}
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("invalid board_data: %w", err)
	}

	var updatedAt time.Time
	if raw := hash[fieldUpdatedAt]; raw != "" {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, fmt.Errorf("invalid updated_at field: %w", err)
		}
		updatedAt = t
	}

	return &Record{
		Identity:  hash[fieldIdentity],
		Board:     b,
		UpdatedAt: updatedAt,
	}, nil
}
