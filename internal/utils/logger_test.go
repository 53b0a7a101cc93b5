package utils_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/benmeehan/gps-ingestor/internal/utils"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer

	logger, err := utils.NewLogger(&buf, "warn", false)
	require.NoError(t, err)

	logger.Info().Msg("dropped")
	logger.Warn().Str("device", "123456ABC").Msg("kept")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "kept", entry["message"])
	assert.Equal(t, "123456ABC", entry["device"])
	assert.Equal(t, "gps-ingestor", entry["service"])
	assert.Contains(t, entry, "time")
}

func TestNewLogger_EmptyLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer

	logger, err := utils.NewLogger(&buf, "", false)
	require.NoError(t, err)

	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	_, err := utils.NewLogger(&bytes.Buffer{}, "loud", false)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), `invalid log level "loud"`)
}

func TestNewLogger_Pretty(t *testing.T) {
	var buf bytes.Buffer

	logger, err := utils.NewLogger(&buf, "info", true)
	require.NoError(t, err)

	logger.Info().Msg("listening")

	assert.Contains(t, buf.String(), "listening")
	assert.False(t, json.Valid(buf.Bytes()))
}
