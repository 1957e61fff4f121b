package board

import "fmt"

// InitialColumnID is the id of the single column of a fresh board.
const InitialColumnID = "initial-column"

// Item is a single text task owned by exactly one Column.
type Item struct {
	ID   string `json:"id"`   // Opaque identifier, never reused
	Text string `json:"text"` // Display text (trimmed, non-empty when created from input)
}

// Column is an ordered bucket of Items. Tasks are kept in insertion order.
type Column struct {
	ID    string `json:"id"`
	Tasks []Item `json:"tasks"`
}

// Board is the full ordered set of Columns. Column order is significant: it
// defines leftmost/rightmost and the adjacency used by MoveItem.
type Board []Column

// Side selects where AddColumnAdjacent inserts the new column.
type Side string

const (
	// Left inserts immediately before the anchor column
	Left Side = "left"

	// Right inserts immediately after the anchor column
	Right Side = "right"
)

// Direction selects the neighbouring column for MoveItem.
// It shares the Left/Right values with Side.
type Direction = Side

// ParseSide converts user input ("left", "right", "l", "r") into a Side.
func ParseSide(s string) (Side, error) {
	switch s {
	case "left", "l":
		return Left, nil
	case "right", "r":
		return Right, nil
	default:
		return "", fmt.Errorf("invalid side '%s' (must be 'left' or 'right')", s)
	}
}

// New returns a fresh board: one empty column with InitialColumnID.
func New() Board {
	return Board{{ID: InitialColumnID, Tasks: []Item{}}}
}

// Clone returns a deep copy of the board.
func (b Board) Clone() Board {
	if b == nil {
		return nil
	}
	out := make(Board, len(b))
	for i, col := range b {
		out[i] = col.clone()
	}
	return out
}

func (c Column) clone() Column {
	tasks := make([]Item, len(c.Tasks))
	copy(tasks, c.Tasks)
	return Column{ID: c.ID, Tasks: tasks}
}

// Equal reports whether two boards have the same columns, in the same order,
// holding the same items in the same order.
func (b Board) Equal(other Board) bool {
	if len(b) != len(other) {
		return false
	}
	for i := range b {
		if b[i].ID != other[i].ID || len(b[i].Tasks) != len(other[i].Tasks) {
			return false
		}
		for j := range b[i].Tasks {
			if b[i].Tasks[j] != other[i].Tasks[j] {
				return false
			}
		}
	}
	return true
}

// IndexOf returns the position of the column with the given id, or -1.
func (b Board) IndexOf(columnID string) int {
	for i, col := range b {
		if col.ID == columnID {
			return i
		}
	}
	return -1
}

// Column returns the column with the given id.
func (b Board) Column(columnID string) (Column, bool) {
	i := b.IndexOf(columnID)
	if i < 0 {
		return Column{}, false
	}
	return b[i], true
}

// FindItem locates an item anywhere on the board and returns it together with
// the id of the column that owns it.
func (b Board) FindItem(itemID string) (Item, string, bool) {
	for _, col := range b {
		for _, it := range col.Tasks {
			if it.ID == itemID {
				return it, col.ID, true
			}
		}
	}
	return Item{}, "", false
}

// IsPristine reports whether the board is in its initial shape: exactly one
// column holding no items. Pristine boards have nothing to export.
func (b Board) IsPristine() bool {
	return len(b) == 1 && len(b[0].Tasks) == 0
}

// Stats returns the number of columns and the total number of items.
func (b Board) Stats() (columns, items int) {
	for _, col := range b {
		items += len(col.Tasks)
	}
	return len(b), items
}

// Validate checks the structural invariant of a board obtained from outside
// the mutation operations (remote load, local file): at least one column.
func (b Board) Validate() error {
	if len(b) == 0 {
		return fmt.Errorf("board must contain at least one column")
	}
	return nil
}
