// Package render writes a board for the terminal (table) or for scripts (JSON).
package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/m-hosseinpour/infinite-kanban-task-manager/pkg/board"
)

// maxTextWidth bounds item text in table output.
const maxTextWidth = 60

// FormatTable writes the board column by column. Each column is headed by its
// 1-based position and short id; each item by its "column.item" position and
// short id, which are both accepted as references on the command line.
// Returns the number of items written.
func FormatTable(w io.Writer, b board.Board) int {
	columns, items := b.Stats()
	fmt.Fprintf(w, "Board: %s, %s\n", plural(columns, "column"), plural(items, "item"))

	for i, col := range b {
		fmt.Fprintf(w, "\n[%d] %-10s %s\n", i+1, formatID(col.ID), plural(len(col.Tasks), "item"))
		if len(col.Tasks) == 0 {
			fmt.Fprintf(w, "    %s\n", "(empty)")
			continue
		}
		for j, it := range col.Tasks {
			pos := fmt.Sprintf("%d.%d", i+1, j+1)
			fmt.Fprintf(w, "    %-6s %-10s %s\n", pos, formatID(it.ID), formatText(it.Text))
		}
	}

	return items
}

// FormatJSON writes the board as pretty-printed JSON.
func FormatJSON(w io.Writer, b board.Board) error {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal board to JSON: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write JSON output: %w", err)
	}
	fmt.Fprintln(w)
	return nil
}

// formatID truncates an id to its first 8 characters for compact display.
func formatID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// formatText truncates long item text. Empty text is shown as "-".
func formatText(text string) string {
	if text == "" {
		return "-"
	}
	runes := []rune(text)
	if len(runes) > maxTextWidth {
		return string(runes[:maxTextWidth-3]) + "..."
	}
	return text
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
