package clipboard

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecorder(t *testing.T) {
	t.Run("keeps payloads in order", func(t *testing.T) {
		r := &Recorder{}
		assert.NoError(t, r.Copy("a\nb"))
		assert.NoError(t, r.Copy(""))

		assert.Equal(t, []string{"a\nb", ""}, r.Payloads())
		last, ok := r.Last()
		assert.True(t, ok)
		assert.Equal(t, "", last)
	})

	t.Run("empty recorder has no last payload", func(t *testing.T) {
		_, ok := (&Recorder{}).Last()
		assert.False(t, ok)
	})

	t.Run("returns configured error", func(t *testing.T) {
		r := &Recorder{Err: errors.New("denied")}
		assert.Error(t, r.Copy("x"))
		assert.Empty(t, r.Payloads())
	})
}

func TestDiscard(t *testing.T) {
	var c Copier = Discard{}
	assert.NoError(t, c.Copy("anything"))
}
