package shared

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, false, true)

	logger.Info().Str("addr", "localhost:8080").Msg("starting")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "starting", entry["message"])
	assert.Equal(t, "localhost:8080", entry["addr"])
	assert.Equal(t, "info", entry["level"])
}

func TestNewLoggerConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, false, false)

	logger.Info().Msg("starting")

	// Console writer is for humans, not parsers
	out := buf.String()
	assert.Contains(t, out, "starting")
	require.Error(t, json.Unmarshal(buf.Bytes(), &map[string]interface{}{}))
}

func TestNewLoggerDebugLevel(t *testing.T) {
	var buf bytes.Buffer

	logger := newLogger(&buf, false, true)
	logger.Debug().Msg("hidden")
	assert.Empty(t, strings.TrimSpace(buf.String()))
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())

	logger = newLogger(&buf, true, true)
	logger.Debug().Msg("visible")
	assert.Contains(t, buf.String(), "visible")
}
