package resolver

import (
	"fmt"
	"testing"

	"github.com/m-hosseinpour/infinite-kanban-task-manager/pkg/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBoard() board.Board {
	return board.Board{
		{ID: "aaaa1111-col", Tasks: []board.Item{{ID: "beef0001", Text: "wash"}, {ID: "beef0002", Text: "dry"}}},
		{ID: "aaaa2222-col", Tasks: []board.Item{{ID: "cafe0001", Text: "fold"}}},
		{ID: "2", Tasks: []board.Item{}},
	}
}

func TestColumn(t *testing.T) {
	b := testBoard()

	tests := []struct {
		name string
		ref  string
		want string
	}{
		{"exact id", "aaaa1111-col", "aaaa1111-col"},
		{"exact id wins over position", "2", "2"},
		{"position", "1", "aaaa1111-col"},
		{"position three", "3", "2"},
		{"unique prefix", "aaaa2", "aaaa2222-col"},
		{"surrounding space", "  1 ", "aaaa1111-col"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Column(b, tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("ambiguous prefix", func(t *testing.T) {
		_, err := Column(b, "aaaa")
		require.Error(t, err)
		assert.True(t, IsAmbiguousError(err))
		assert.Len(t, err.(*AmbiguousError).Matches, 2)
	})

	t.Run("position out of range", func(t *testing.T) {
		_, err := Column(b, "9")
		assert.True(t, IsNotFoundError(err))
	})

	t.Run("prefix too short", func(t *testing.T) {
		_, err := Column(b, "aa")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least 4 characters")
	})

	t.Run("no match", func(t *testing.T) {
		_, err := Column(b, "zzzzzz")
		assert.True(t, IsNotFoundError(err))
	})

	t.Run("empty", func(t *testing.T) {
		_, err := Column(b, " ")
		assert.Error(t, err)
	})
}

func TestItem(t *testing.T) {
	b := testBoard()

	t.Run("exact id", func(t *testing.T) {
		id, col, err := Item(b, "cafe0001")
		require.NoError(t, err)
		assert.Equal(t, "cafe0001", id)
		assert.Equal(t, "aaaa2222-col", col)
	})

	t.Run("position pair", func(t *testing.T) {
		id, col, err := Item(b, "1.2")
		require.NoError(t, err)
		assert.Equal(t, "beef0002", id)
		assert.Equal(t, "aaaa1111-col", col)
	})

	t.Run("position pair out of range", func(t *testing.T) {
		_, _, err := Item(b, "3.1")
		assert.True(t, IsNotFoundError(err))
	})

	t.Run("unique prefix", func(t *testing.T) {
		id, col, err := Item(b, "cafe")
		require.NoError(t, err)
		assert.Equal(t, "cafe0001", id)
		assert.Equal(t, "aaaa2222-col", col)
	})

	t.Run("ambiguous prefix", func(t *testing.T) {
		_, _, err := Item(b, "beef")
		assert.True(t, IsAmbiguousError(err))
	})

	t.Run("too short", func(t *testing.T) {
		_, _, err := Item(b, "be")
		assert.Error(t, err)
		assert.False(t, IsNotFoundError(err))
	})
}

func TestFormatAmbiguousError(t *testing.T) {
	matches := make([]string, 12)
	for i := range matches {
		matches[i] = fmt.Sprintf("id-%02d", i)
	}
	msg := FormatAmbiguousError(&AmbiguousError{Kind: "item", Ref: "id-", Matches: matches})

	assert.Contains(t, msg, "matches 12 items")
	assert.Contains(t, msg, "id-09")
	assert.NotContains(t, msg, "id-10")
	assert.Contains(t, msg, "...and 2 more")
	assert.Contains(t, msg, "uniquely identify the item")
}
