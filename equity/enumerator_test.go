package equity

import (
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokerequity/internal/randutil"
	"github.com/lox/pokerequity/poker"
)

func TestCombinations(t *testing.T) {
	t.Parallel()
	tests := []struct {
		n, k int
		want uint64
	}{
		{52, 5, 2_598_960},
		{48, 5, 1_712_304},
		{45, 2, 990},
		{44, 1, 44},
		{32, 5, 201_376},
		{5, 0, 1},
		{0, 0, 1},
		{3, 5, 0},
		{5, -1, 0},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Combinations(tc.n, tc.k), "C(%d,%d)", tc.n, tc.k)
	}
	assert.Equal(t, uint64(math.MaxUint64), Combinations(200, 100))
}

func TestExhaustiveVisitsEachSubsetOnce(t *testing.T) {
	t.Parallel()
	deck := poker.MustParseCards("AcKdQhJsTc9d8h")

	for k := 0; k <= 4; k++ {
		seen := make(map[poker.Hand]bool)
		for h := range Exhaustive(deck, k) {
			require.Equal(t, k, h.CountCards())
			require.False(t, seen[h], "duplicate completion %s", h)
			seen[h] = true
		}
		assert.Len(t, seen, int(Combinations(len(deck), k)), "k=%d", k)
	}

	count := 0
	for range Exhaustive(deck, 8) {
		count++
	}
	assert.Zero(t, count)
}

func TestExhaustiveShardsPartition(t *testing.T) {
	t.Parallel()
	deck, err := poker.NewDeck(poker.Standard, poker.MustParseCards("AcKhQsJd7d9dTs"))
	require.NoError(t, err)
	cards := deck.Cards()

	for _, k := range []int{0, 1, 2, 3} {
		var all []poker.Hand
		for h := range Exhaustive(cards, k) {
			all = append(all, h)
		}
		var sharded []poker.Hand
		for first := range shardCount(len(cards), k) {
			for h := range exhaustiveShard(cards, k, first) {
				sharded = append(sharded, h)
			}
		}
		assert.Equal(t, all, sharded, "k=%d", k)
	}
}

func TestExhaustiveStopsEarly(t *testing.T) {
	t.Parallel()
	deck := poker.Standard.Universe()
	n := 0
	for range Exhaustive(deck, 5) {
		n++
		if n == 10 {
			break
		}
	}
	assert.Equal(t, 10, n)
}

func TestSample(t *testing.T) {
	t.Parallel()
	deck, err := poker.NewDeck(poker.Standard, poker.MustParseCards("AcKh"), poker.MustParseCards("QsJd"))
	require.NoError(t, err)
	cards := deck.Cards()
	original := slices.Clone(cards)

	var draws []poker.Hand
	for h := range Sample(cards, 5, 500, randutil.New(9)) {
		require.Equal(t, 5, h.CountCards())
		require.Zero(t, h&deck.Dealt(), "sample reused a dealt card")
		draws = append(draws, h)
	}
	assert.Len(t, draws, 500)
	assert.Equal(t, original, cards, "Sample must not reorder its input")

	var again []poker.Hand
	for h := range Sample(cards, 5, 500, randutil.New(9)) {
		again = append(again, h)
	}
	assert.Equal(t, draws, again)
}

func TestSampleIsRoughlyUniform(t *testing.T) {
	t.Parallel()
	cards := poker.MustParseCards("2c3c4c5c6c7c")
	counts := make(map[poker.Hand]int)
	const n = 60_000
	for h := range Sample(cards, 1, n, randutil.New(3)) {
		counts[h]++
	}
	require.Len(t, counts, len(cards))
	for h, c := range counts {
		assert.InDelta(t, n/len(cards), c, 600, "card %s", h)
	}
}

func TestChooseStrategy(t *testing.T) {
	t.Parallel()
	assert.Equal(t, StrategyExhaustive, ChooseStrategy(StrategyAuto, 1_712_304, DefaultExhaustiveThreshold))
	assert.Equal(t, StrategyMonteCarlo, ChooseStrategy(StrategyAuto, 2_598_960, DefaultExhaustiveThreshold))
	assert.Equal(t, StrategyExhaustive, ChooseStrategy(StrategyAuto, 990, 990))
	assert.Equal(t, StrategyMonteCarlo, ChooseStrategy(StrategyMonteCarlo, 1, DefaultExhaustiveThreshold))
	assert.Equal(t, StrategyExhaustive, ChooseStrategy(StrategyExhaustive, 1<<40, 10))
}

func TestParseStrategy(t *testing.T) {
	t.Parallel()
	for in, want := range map[string]Strategy{
		"":            StrategyAuto,
		"exhaustive":  StrategyExhaustive,
		"Monte-Carlo": StrategyMonteCarlo,
		"mc":          StrategyMonteCarlo,
	} {
		got, err := ParseStrategy(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseStrategy("guess")
	assert.Error(t, err)
}
