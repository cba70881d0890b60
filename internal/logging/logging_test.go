package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "debug", "json")
	require.NoError(t, err)

	logger.Debug().Str("strategy", "exhaustive").Msg("Equity calculated")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "exhaustive", entry["strategy"])
	assert.Equal(t, "Equity calculated", entry["message"])
}

func TestNewFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "WARN", "console")
	require.NoError(t, err)
	assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())

	logger.Info().Msg("hidden")
	assert.Empty(t, buf.String())
	logger.Warn().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewRejectsBadSettings(t *testing.T) {
	_, err := New(&bytes.Buffer{}, "loud", "console")
	assert.Error(t, err)
	_, err = New(&bytes.Buffer{}, "info", "xml")
	assert.Error(t, err)
}

func TestSignalContextStop(t *testing.T) {
	ctx, stop := SignalContext(context.Background(), zerolog.Nop())
	require.NoError(t, ctx.Err())
	stop()
	<-ctx.Done()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}
