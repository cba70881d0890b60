package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokerequity/equity"
	"github.com/lox/pokerequity/poker"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.DebugLevel})
}

func TestNormalizeHands(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{"single hand", []string{"AcKh"}, []string{"AcKh"}},
		{"multiple args", []string{"AcKh", "KdQs"}, []string{"AcKh", "KdQs"}},
		{"hand with spaces", []string{"Ac Kh"}, []string{"Ac Kh"}},
		{"quoted hand list", []string{"AcKh QsJd 7c7d"}, []string{"AcKh", "QsJd", "7c7d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, normalizeHands(tt.input))
		})
	}
}

func TestRunRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		cli    CLI
		errMsg string
	}{
		{"too few cards", CLI{Hands: []string{"Ac", "KdQs"}, Strategy: "auto"}, "hole cards"},
		{"invalid card", CLI{Hands: []string{"AcXy", "KdQs"}, Strategy: "auto"}, "invalid card notation"},
		{"duplicate", CLI{Hands: []string{"AcKh", "AcQs"}, Strategy: "auto"}, "duplicate card"},
		{"single hand", CLI{Hands: []string{"AcKh"}, Strategy: "auto"}, "hand count"},
		{"bad variant", CLI{Hands: []string{"AcKh", "KdQs"}, Variant: "omaha", Strategy: "auto"}, "variant"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := run(context.Background(), tt.cli, io.Discard, quietLogger())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestRunPrintsTable(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	cli := CLI{
		Hands:         []string{"AhAd", "KcKd"},
		Board:         "Kh7s2c3d",
		Strategy:      "auto",
		Possibilities: true,
	}
	require.NoError(t, run(context.Background(), cli, &out, quietLogger()))

	text := out.String()
	assert.Contains(t, text, "Ah Ad")
	assert.Contains(t, text, "Kc Kd")
	assert.Contains(t, text, "4.5%")
	assert.Contains(t, text, "95.5%")
	assert.Contains(t, text, "Three of a Kind")
	assert.Contains(t, text, "AA Premium")
	assert.Contains(t, text, "KK Premium")
	assert.Contains(t, text, "44 exhaustive trials (standard)")
	assert.NotContains(t, text, "interrupted")
}

func TestRunJSONIsReproducibleWithSeed(t *testing.T) {
	t.Parallel()

	seed := int64(42)
	cli := CLI{
		Hands:      []string{"AcKh", "QsJd"},
		Strategy:   "monte-carlo",
		Iterations: 20_000,
		Workers:    2,
		Seed:       &seed,
		JSON:       true,
	}

	decode := func() equity.Result {
		var out bytes.Buffer
		require.NoError(t, run(context.Background(), cli, &out, quietLogger()))
		var res equity.Result
		require.NoError(t, json.Unmarshal(out.Bytes(), &res))
		return res
	}

	first, second := decode(), decode()
	assert.Equal(t, equity.StrategyMonteCarlo, first.Strategy)
	assert.Equal(t, int64(20_000), first.Iterations)
	assert.Equal(t, seed, first.Seed)
	require.Len(t, first.Players, 2)
	for i := range first.Players {
		assert.Equal(t, first.Players[i].Wins, second.Players[i].Wins)
		assert.Equal(t, first.Players[i].Ties, second.Players[i].Ties)
	}
}

func TestRunReportsInterruption(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	cli := CLI{Hands: []string{"AcKh", "QsJd"}, Strategy: "exhaustive"}
	require.NoError(t, run(ctx, cli, &out, quietLogger()))
	assert.Contains(t, out.String(), "interrupted after")
	assert.Contains(t, out.String(), "of 1712304 trials")
}

func TestRunReportsSampledInterruption(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	cli := CLI{Hands: []string{"AcKh", "QsJd"}, Strategy: "monte-carlo", Iterations: 50_000, Workers: 2}
	require.NoError(t, run(ctx, cli, &out, quietLogger()))
	assert.Contains(t, out.String(), "interrupted after 2048 of 50000 trials")
}

func TestFormatCards(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Ac Kh 7d", formatCards(poker.MustParseCards("AcKh7d")))
	assert.Equal(t, "", formatCards(nil))
}
