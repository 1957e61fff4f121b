package transfer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/m-hosseinpour/infinite-kanban-task-manager/pkg/board"
)

// Problem is one shape violation found in an import document.
type Problem struct {
	Path   string // JSON path of the offending value, e.g. "columns[1].tasks[0].text"
	Reason string
}

func (p Problem) String() string {
	return fmt.Sprintf("%s: %s", p.Path, p.Reason)
}

// Validation is the outcome of checking an import document.
type Validation struct {
	Problems []Problem
}

// OK reports whether the document passed every check.
func (v Validation) OK() bool {
	return len(v.Problems) == 0
}

// Err returns nil for a valid document, otherwise an error wrapping
// ErrInvalidFormat that lists the problems.
func (v Validation) Err() error {
	if v.OK() {
		return nil
	}
	parts := make([]string, len(v.Problems))
	for i, p := range v.Problems {
		parts[i] = p.String()
	}
	return fmt.Errorf("%w: %s", ErrInvalidFormat, strings.Join(parts, "; "))
}

func (v *Validation) add(path, reason string) {
	v.Problems = append(v.Problems, Problem{Path: path, Reason: reason})
}

// Validate checks a decoded JSON document (as produced by json.Unmarshal into
// an any) against the snapshot shape:
//
//   - columns is a non-empty array
//   - every column has a string id and an array tasks
//   - every task has a string id and a string text
//
// version and exportDate are not checked. Unknown fields are ignored.
func Validate(doc any) Validation {
	var v Validation

	root, ok := doc.(map[string]any)
	if !ok {
		v.add("$", "document must be an object")
		return v
	}
	raw, present := root["columns"]
	if !present {
		v.add("columns", "missing")
		return v
	}
	columns, ok := raw.([]any)
	if !ok {
		v.add("columns", "must be an array")
		return v
	}
	if len(columns) == 0 {
		v.add("columns", "must contain at least one column")
		return v
	}

	for i, rawCol := range columns {
		colPath := fmt.Sprintf("columns[%d]", i)
		col, ok := rawCol.(map[string]any)
		if !ok {
			v.add(colPath, "must be an object")
			continue
		}
		if _, ok := col["id"].(string); !ok {
			v.add(colPath+".id", "must be a string")
		}
		tasks, ok := col["tasks"].([]any)
		if !ok {
			v.add(colPath+".tasks", "must be an array")
			continue
		}
		for j, rawTask := range tasks {
			taskPath := fmt.Sprintf("%s.tasks[%d]", colPath, j)
			task, ok := rawTask.(map[string]any)
			if !ok {
				v.add(taskPath, "must be an object")
				continue
			}
			if _, ok := task["id"].(string); !ok {
				v.add(taskPath+".id", "must be a string")
			}
			if _, ok := task["text"].(string); !ok {
				v.add(taskPath+".text", "must be a string")
			}
		}
	}
	return v
}

// Parse decodes and validates raw import data. The board is nil unless the
// validation is OK.
func Parse(data []byte) (board.Board, Validation) {
	var doc any
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		return nil, Validation{Problems: []Problem{{Path: "$", Reason: "not valid JSON: " + err.Error()}}}
	}

	v := Validate(doc)
	if !v.OK() {
		return nil, v
	}
	return toBoard(doc.(map[string]any)["columns"].([]any)), v
}

// Decode is Parse with the validation folded into an error.
func Decode(data []byte) (board.Board, error) {
	b, v := Parse(data)
	if err := v.Err(); err != nil {
		return nil, err
	}
	return b, nil
}

// toBoard converts an already validated columns array.
func toBoard(columns []any) board.Board {
	out := make(board.Board, len(columns))
	for i, rawCol := range columns {
		col := rawCol.(map[string]any)
		tasks := col["tasks"].([]any)
		items := make([]board.Item, len(tasks))
		for j, rawTask := range tasks {
			task := rawTask.(map[string]any)
			items[j] = board.Item{ID: task["id"].(string), Text: task["text"].(string)}
		}
		out[i] = board.Column{ID: col["id"].(string), Tasks: items}
	}
	return out
}
