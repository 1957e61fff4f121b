package transfer

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-hosseinpour/infinite-kanban-task-manager/pkg/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var exportTime = time.Date(2026, 10, 18, 9, 30, 15, 123456789, time.UTC)

func sample() board.Board {
	return board.Board{
		{ID: "c1", Tasks: []board.Item{{ID: "i1", Text: "dry"}}},
		{ID: "c2", Tasks: []board.Item{{ID: "i2", Text: "wash"}, {ID: "i3", Text: "fold"}}},
		{ID: "c3", Tasks: []board.Item{}},
	}
}

func TestExport(t *testing.T) {
	t.Run("refuses pristine board", func(t *testing.T) {
		_, err := Export(board.New(), exportTime)
		assert.ErrorIs(t, err, ErrNothingToExport)
	})

	t.Run("two empty columns are exportable", func(t *testing.T) {
		b := board.Board{{ID: "a", Tasks: []board.Item{}}, {ID: "b", Tasks: []board.Item{}}}
		_, err := Export(b, exportTime)
		assert.NoError(t, err)
	})

	t.Run("fills metadata", func(t *testing.T) {
		s, err := Export(sample(), exportTime)
		require.NoError(t, err)
		assert.Equal(t, "1.0", s.Version)
		assert.Equal(t, "2026-10-18T09:30:15.123Z", s.ExportDate)
		assert.True(t, sample().Equal(s.Columns))
	})
}

func TestEncode(t *testing.T) {
	s, err := Export(sample(), exportTime)
	require.NoError(t, err)

	data, err := Encode(s)
	require.NoError(t, err)

	assert.Contains(t, string(data), "\n  \"version\": \"1.0\"")
	assert.Contains(t, string(data), "\"exportDate\"")
	assert.Contains(t, string(data), "\"tasks\": []")

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "1.0", decoded["version"])
}

func TestRoundTrip(t *testing.T) {
	s, err := Export(sample(), exportTime)
	require.NoError(t, err)
	data, err := Encode(s)
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)
	assert.True(t, sample().Equal(got))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		wantPath string
	}{
		{"not an object", `[1,2]`, "$"},
		{"missing columns", `{"version":"1.0"}`, "columns"},
		{"columns not an array", `{"columns":{"id":"c1"}}`, "columns"},
		{"empty columns", `{"columns":[]}`, "columns"},
		{"column not an object", `{"columns":["c1"]}`, "columns[0]"},
		{"column id not a string", `{"columns":[{"id":7,"tasks":[]}]}`, "columns[0].id"},
		{"column missing tasks", `{"columns":[{"id":"c1"}]}`, "columns[0].tasks"},
		{"task missing text", `{"columns":[{"id":"c1","tasks":[{"id":"i1"}]}]}`, "columns[0].tasks[0].text"},
		{"task id not a string", `{"columns":[{"id":"c1","tasks":[{"id":null,"text":"x"}]}]}`, "columns[0].tasks[0].id"},
		{"second column bad", `{"columns":[{"id":"c1","tasks":[]},{"id":"c2","tasks":"no"}]}`, "columns[1].tasks"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var doc any
			require.NoError(t, json.Unmarshal([]byte(tt.doc), &doc))

			v := Validate(doc)
			require.False(t, v.OK())
			assert.Equal(t, tt.wantPath, v.Problems[0].Path)
			assert.ErrorIs(t, v.Err(), ErrInvalidFormat)
		})
	}

	t.Run("collects every problem", func(t *testing.T) {
		var doc any
		require.NoError(t, json.Unmarshal([]byte(`{"columns":[{"tasks":[{"text":1}]}]}`), &doc))

		v := Validate(doc)
		assert.Len(t, v.Problems, 3)
	})

	t.Run("accepts minimal document and ignores extras", func(t *testing.T) {
		var doc any
		require.NoError(t, json.Unmarshal([]byte(`{"columns":[{"id":"c1","tasks":[],"color":"red"}],"extra":true}`), &doc))
		v := Validate(doc)
		assert.True(t, v.OK())
		assert.NoError(t, v.Err())
	})
}

func TestDecode(t *testing.T) {
	t.Run("rejects malformed JSON", func(t *testing.T) {
		_, err := Decode([]byte(`{"columns": [`))
		assert.ErrorIs(t, err, ErrInvalidFormat)
	})

	t.Run("builds board without metadata", func(t *testing.T) {
		got, err := Decode([]byte(`{"columns":[{"id":"x","tasks":[{"id":"y","text":"hello"}]}]}`))
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, board.Item{ID: "y", Text: "hello"}, got[0].Tasks[0])
	})

	t.Run("empty tasks array stays non-nil", func(t *testing.T) {
		got, err := Decode([]byte(`{"columns":[{"id":"x","tasks":[]}]}`))
		require.NoError(t, err)
		assert.NotNil(t, got[0].Tasks)
	})
}

func TestFiles(t *testing.T) {
	dir := t.TempDir()

	t.Run("writes dated file and reads it back", func(t *testing.T) {
		snapshot, err := Export(sample(), exportTime)
		require.NoError(t, err)
		path, err := WriteFile(filepath.Join(dir, "out"), snapshot, exportTime)
		require.NoError(t, err)
		assert.Equal(t, "kanban-export-2026-10-18.json", filepath.Base(path))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		got, err := Decode(data)
		require.NoError(t, err)
		assert.True(t, sample().Equal(got))
	})
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "kanban-export-2026-01-02.json", FileName(time.Date(2026, 1, 2, 23, 0, 0, 0, time.UTC)))
}
