package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("defaults to warn and text", func(t *testing.T) {
		logger, err := New(Options{})
		require.NoError(t, err)
		assert.Equal(t, log.WarnLevel, logger.GetLevel())
		assert.IsType(t, &log.TextFormatter{}, logger.Formatter)
	})

	t.Run("json output carries component field", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := New(Options{Level: "debug", Format: "json", Output: &buf})
		require.NoError(t, err)

		Component(logger, "persist").WithField("identity", "alice").Info("saved")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "persist", entry["component"])
		assert.Equal(t, "alice", entry["identity"])
		assert.Equal(t, "saved", entry["msg"])
	})

	t.Run("rejects unknown level", func(t *testing.T) {
		_, err := New(Options{Level: "chatty"})
		assert.Error(t, err)
	})

	t.Run("rejects unknown format", func(t *testing.T) {
		_, err := New(Options{Format: "xml"})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log format")
	})
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	assert.NotPanics(t, func() { logger.Error("dropped") })
}
