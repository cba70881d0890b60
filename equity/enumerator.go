package equity

import (
	"fmt"
	"iter"
	"math"
	"math/bits"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/lox/pokerequity/poker"
)

// Strategy selects how board completions are produced.
type Strategy uint8

const (
	// StrategyAuto enumerates when the completion count is within the exhaustive
	// threshold and samples otherwise.
	StrategyAuto Strategy = iota
	// StrategyExhaustive visits every completion exactly once.
	StrategyExhaustive
	// StrategyMonteCarlo draws completions uniformly at random.
	StrategyMonteCarlo
)

// ParseStrategy resolves a strategy name. The empty string is StrategyAuto.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return StrategyAuto, nil
	case "exhaustive", "enumerate":
		return StrategyExhaustive, nil
	case "monte-carlo", "montecarlo", "mc", "sample":
		return StrategyMonteCarlo, nil
	default:
		return 0, fmt.Errorf("unknown strategy %q", name)
	}
}

func (s Strategy) String() string {
	switch s {
	case StrategyAuto:
		return "auto"
	case StrategyExhaustive:
		return "exhaustive"
	case StrategyMonteCarlo:
		return "monte-carlo"
	default:
		return "unknown"
	}
}

func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Strategy) UnmarshalText(text []byte) error {
	parsed, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ChooseStrategy resolves StrategyAuto against the number of completions.
func ChooseStrategy(requested Strategy, combinations, threshold uint64) Strategy {
	if requested != StrategyAuto {
		return requested
	}
	if combinations <= threshold {
		return StrategyExhaustive
	}
	return StrategyMonteCarlo
}

// Combinations returns C(n, k), saturating at math.MaxUint64.
func Combinations(n, k int) uint64 {
	if n < 0 || k < 0 || k > n {
		return 0
	}
	k = min(k, n-k)
	result := uint64(1)
	for i := 1; i <= k; i++ {
		// result is C(n-k+i-1, i-1) here, so the division is exact.
		hi, lo := bits.Mul64(result, uint64(n-k+i))
		if hi != 0 {
			return math.MaxUint64
		}
		result = lo / uint64(i)
	}
	return result
}

// Exhaustive yields every k-card subset of deck exactly once, in lexicographic index
// order. k == 0 yields a single empty completion.
func Exhaustive(deck []poker.Card, k int) iter.Seq[poker.Hand] {
	return func(yield func(poker.Hand) bool) {
		if k < 0 || k > len(deck) {
			return
		}
		combine(deck, k, 0, 0, yield)
	}
}

// shardCount is the number of first-index shards exhaustiveShard splits the space into.
func shardCount(n, k int) int {
	if k == 0 {
		return 1
	}
	return max(n-k+1, 0)
}

// exhaustiveShard yields the subsets whose lowest deck index is first. The shards
// 0..shardCount-1 partition the output of Exhaustive.
func exhaustiveShard(deck []poker.Card, k, first int) iter.Seq[poker.Hand] {
	return func(yield func(poker.Hand) bool) {
		if k == 0 {
			if first == 0 {
				yield(0)
			}
			return
		}
		if first < 0 || first > len(deck)-k {
			return
		}
		combine(deck, k-1, first+1, poker.Hand(deck[first]), yield)
	}
}

func combine(deck []poker.Card, k, start int, acc poker.Hand, yield func(poker.Hand) bool) bool {
	if k == 0 {
		return yield(acc)
	}
	for i := start; i <= len(deck)-k; i++ {
		if !combine(deck, k-1, i+1, acc|poker.Hand(deck[i]), yield) {
			return false
		}
	}
	return true
}

// Sample yields n independent uniform k-card subsets of deck. Each draw is a partial
// Fisher-Yates shuffle over a private copy, so deck is never modified.
func Sample(deck []poker.Card, k, n int, rng *rand.Rand) iter.Seq[poker.Hand] {
	return func(yield func(poker.Hand) bool) {
		if k < 0 || k > len(deck) {
			return
		}
		buf := slices.Clone(deck)
		for range n {
			var h poker.Hand
			for i := range k {
				j := i + rng.IntN(len(buf)-i)
				buf[i], buf[j] = buf[j], buf[i]
				h |= poker.Hand(buf[i])
			}
			if !yield(h) {
				return
			}
		}
	}
}
