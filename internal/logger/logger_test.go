package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWriterJSON(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	var buf bytes.Buffer
	require.NoError(t, InitWriter(&buf, "debug", "json"))
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	log.Debug().Str("path", "a.nii").Msg("Loaded volume")
	assert.Contains(t, buf.String(), `"path":"a.nii"`)
	assert.Contains(t, buf.String(), `"message":"Loaded volume"`)
}

func TestInitWriterLevels(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	var buf bytes.Buffer
	require.NoError(t, InitWriter(&buf, "WARN", "console"))
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	log.Info().Msg("hidden")
	assert.Empty(t, buf.String())

	t.Setenv("LOG_LEVEL", "error")
	require.NoError(t, InitWriter(&buf, "", "console"))
	assert.Equal(t, zerolog.ErrorLevel, zerolog.GlobalLevel())

	assert.Error(t, InitWriter(&buf, "chatty", "console"))
}
