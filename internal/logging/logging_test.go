package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restoreGlobals(t *testing.T) {
	prev, prevCtx := log.Logger, zerolog.DefaultContextLogger
	t.Cleanup(func() {
		log.Logger = prev
		zerolog.DefaultContextLogger = prevCtx
	})
}

func TestSetup_JSON(t *testing.T) {
	restoreGlobals(t)
	var buf bytes.Buffer

	logger, err := Setup("warn", "json", &buf)
	require.NoError(t, err)

	logger.Info().Msg("dropped")
	log.Warn().Str("key", "files/a").Msg("kept")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["message"])
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "files/a", entry["key"])
	assert.Equal(t, "watchme-vault", entry["service"])
}

func TestSetup_Console(t *testing.T) {
	restoreGlobals(t)
	var buf bytes.Buffer

	_, err := Setup("debug", "console", &buf)
	require.NoError(t, err)
	log.Debug().Msg("hello")
	assert.Contains(t, buf.String(), "hello")
}

func TestSetup_Errors(t *testing.T) {
	restoreGlobals(t)
	_, err := Setup("chatty", "json", nil)
	assert.Error(t, err)
	_, err = Setup("info", "xml", nil)
	assert.Error(t, err)
}
