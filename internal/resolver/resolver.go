// Package resolver turns the column and item references typed on the command
// line into board ids.
//
// A reference is tried, in order, as:
//  1. an exact id
//  2. a position: "N" is the Nth column, "N.M" the Mth item of the Nth column (1-based)
//  3. an id prefix of at least MinShortIDLength characters
package resolver

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/m-hosseinpour/infinite-kanban-task-manager/pkg/board"
)

// MinShortIDLength is the minimum required length for id prefixes.
const MinShortIDLength = 4

// Column resolves a column reference to a column id.
func Column(b board.Board, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("column reference cannot be empty")
	}
	if b.IndexOf(ref) >= 0 {
		return ref, nil
	}

	if pos, ok := position(ref); ok {
		if pos > len(b) {
			return "", &NotFoundError{Kind: "column", Ref: ref}
		}
		return b[pos-1].ID, nil
	}

	if len(ref) < MinShortIDLength {
		return "", fmt.Errorf("short ID must be at least %d characters (got %d)", MinShortIDLength, len(ref))
	}

	var matches []string
	for _, col := range b {
		if strings.HasPrefix(col.ID, ref) {
			matches = append(matches, col.ID)
		}
	}
	return pick("column", ref, matches)
}

// Item resolves an item reference to the item id and its column id.
func Item(b board.Board, ref string) (itemID, columnID string, err error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", "", fmt.Errorf("item reference cannot be empty")
	}
	if _, colID, ok := b.FindItem(ref); ok {
		return ref, colID, nil
	}

	if colRef, itemRef, ok := strings.Cut(ref, "."); ok {
		colPos, okCol := position(colRef)
		itemPos, okItem := position(itemRef)
		if okCol && okItem {
			if colPos > len(b) || itemPos > len(b[colPos-1].Tasks) {
				return "", "", &NotFoundError{Kind: "item", Ref: ref}
			}
			col := b[colPos-1]
			return col.Tasks[itemPos-1].ID, col.ID, nil
		}
	}

	if len(ref) < MinShortIDLength {
		return "", "", fmt.Errorf("short ID must be at least %d characters (got %d)", MinShortIDLength, len(ref))
	}

	var matches []string
	owners := make(map[string]string)
	for _, col := range b {
		for _, it := range col.Tasks {
			if strings.HasPrefix(it.ID, ref) {
				matches = append(matches, it.ID)
				owners[it.ID] = col.ID
			}
		}
	}
	id, err := pick("item", ref, matches)
	if err != nil {
		return "", "", err
	}
	return id, owners[id], nil
}

// position parses a 1-based position.
func position(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

func pick(kind, ref string, matches []string) (string, error) {
	switch len(matches) {
	case 0:
		return "", &NotFoundError{Kind: kind, Ref: ref}
	case 1:
		return matches[0], nil
	default:
		return "", &AmbiguousError{Kind: kind, Ref: ref, Matches: matches}
	}
}

// NotFoundError indicates nothing matched the reference.
type NotFoundError struct {
	Kind string // "column" or "item"
	Ref  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s found matching '%s'", e.Kind, e.Ref)
}

// AmbiguousError indicates several ids share the prefix.
type AmbiguousError struct {
	Kind    string
	Ref     string
	Matches []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("ambiguous short ID '%s' matches %d %ss", e.Ref, len(e.Matches), e.Kind)
}

// FormatAmbiguousError creates a user-friendly error message for ambiguous short IDs.
// Lists all matching ids (up to 10, then "...and N more").
func FormatAmbiguousError(err *AmbiguousError) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Error: ambiguous short ID '%s' matches %d %ss:\n", err.Ref, len(err.Matches), err.Kind)

	displayCount := min(len(err.Matches), 10)
	for _, id := range err.Matches[:displayCount] {
		fmt.Fprintf(&sb, "  %s\n", id)
	}
	if len(err.Matches) > 10 {
		fmt.Fprintf(&sb, "  ...and %d more\n", len(err.Matches)-10)
	}

	fmt.Fprintf(&sb, "\nUse a longer prefix to uniquely identify the %s.", err.Kind)
	return sb.String()
}

// IsNotFoundError checks if an error is a NotFoundError.
func IsNotFoundError(err error) bool {
	_, ok := err.(*NotFoundError)
	return ok
}

// IsAmbiguousError checks if an error is an AmbiguousError.
func IsAmbiguousError(err error) bool {
	_, ok := err.(*AmbiguousError)
	return ok
}
