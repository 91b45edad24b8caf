package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf).With().Str("service", "campusconnect").Logger()

	l := Component(base, "docstore")
	l.Info().Msg("ready")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "docstore", line["component"])
	assert.Equal(t, "campusconnect", line["service"])
	assert.Equal(t, "ready", line["message"])
}

func TestFromSettings(t *testing.T) {
	cfg := FromSettings(" DEBUG ", "json")
	assert.Equal(t, DebugLevel, cfg.Level)
	assert.False(t, cfg.Pretty)

	assert.True(t, FromSettings("info", "console").Pretty)
}
