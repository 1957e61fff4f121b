package board

import (
	"strings"
)

// AddColumnAdjacent inserts a new empty column immediately to the left or
// right of the anchor column. Unknown anchor: no-op.
func (b Board) AddColumnAdjacent(ids IDGenerator, anchorColumnID string, side Side) Board {
	idx := b.IndexOf(anchorColumnID)
	if idx < 0 {
		return b
	}
	if side == Right {
		idx++
	} else if side != Left {
		return b
	}

	out := make(Board, 0, len(b)+1)
	out = append(out, b[:idx].Clone()...)
	out = append(out, Column{ID: ids.NewID(), Tasks: []Item{}})
	out = append(out, b[idx:].Clone()...)
	return out
}

// SplitLines turns multi-line input into item texts: one entry per line,
// each trimmed, blank lines dropped.
func SplitLines(raw string) []string {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// AddItems appends one new item per non-blank line of raw to the column, in
// the order the lines appear. Input with no non-blank lines and unknown
// columns are no-ops.
func (b Board) AddItems(ids IDGenerator, columnID, raw string) Board {
	idx := b.IndexOf(columnID)
	if idx < 0 {
		return b
	}
	lines := SplitLines(raw)
	if len(lines) == 0 {
		return b
	}

	out := b.Clone()
	for _, line := range lines {
		out[idx].Tasks = append(out[idx].Tasks, Item{ID: ids.NewID(), Text: line})
	}
	return out
}

// MoveItem relocates an item to the end of the neighbouring column in the
// given direction. Moving left from the leftmost column, right from the
// rightmost column, or referencing an unknown item or column is a no-op.
func (b Board) MoveItem(itemID, fromColumnID string, dir Direction) Board {
	from := b.IndexOf(fromColumnID)
	if from < 0 {
		return b
	}

	var to int
	switch dir {
	case Left:
		if from == 0 {
			return b
		}
		to = from - 1
	case Right:
		if from == len(b)-1 {
			return b
		}
		to = from + 1
	default:
		return b
	}

	pos := indexOfItem(b[from].Tasks, itemID)
	if pos < 0 {
		return b
	}

	out := b.Clone()
	item := out[from].Tasks[pos]
	out[from].Tasks = append(out[from].Tasks[:pos], out[from].Tasks[pos+1:]...)
	out[to].Tasks = append(out[to].Tasks, item)
	return out
}

// DeleteItem removes the item from the column if present.
func (b Board) DeleteItem(itemID, columnID string) Board {
	idx := b.IndexOf(columnID)
	if idx < 0 {
		return b
	}
	pos := indexOfItem(b[idx].Tasks, itemID)
	if pos < 0 {
		return b
	}

	out := b.Clone()
	out[idx].Tasks = append(out[idx].Tasks[:pos], out[idx].Tasks[pos+1:]...)
	return out
}

// DeleteColumn removes a column and returns the new board together with the
// column's flattened text (item texts joined by newline, empty when the column
// had no items). The last remaining column is never removed; in that case, and
// for unknown columns, the board is returned unchanged with an empty payload.
func (b Board) DeleteColumn(columnID string) (Board, string) {
	if len(b) <= 1 {
		return b, ""
	}
	idx := b.IndexOf(columnID)
	if idx < 0 {
		return b, ""
	}

	payload, _ := b.ColumnText(columnID)
	out := make(Board, 0, len(b)-1)
	out = append(out, b[:idx].Clone()...)
	out = append(out, b[idx+1:].Clone()...)
	return out, payload
}

// ColumnText flattens a column's item texts, joined by newline.
// Returns false when the column is unknown or has no items.
func (b Board) ColumnText(columnID string) (string, bool) {
	col, ok := b.Column(columnID)
	if !ok || len(col.Tasks) == 0 {
		return "", false
	}
	texts := make([]string, len(col.Tasks))
	for i, it := range col.Tasks {
		texts[i] = it.Text
	}
	return strings.Join(texts, "\n"), true
}

func indexOfItem(items []Item, itemID string) int {
	for i, it := range items {
		if it.ID == itemID {
			return i
		}
	}
	return -1
}
