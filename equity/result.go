package equity

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/lox/pokerequity/poker"
)

// Result is the outcome of one calculation.
type Result struct {
	ID       uuid.UUID      `json:"id"`
	Rules    poker.Rules    `json:"variant"`
	Board    []poker.Card   `json:"board"`
	Players  []PlayerResult `json:"players"`
	Strategy Strategy       `json:"strategy"`
	// Iterations is the number of trials actually scored.
	Iterations int64 `json:"iterations"`
	// Planned is the number of trials the calculation set out to score.
	Planned int64 `json:"planned"`
	// Combinations is the number of distinct board completions.
	Combinations uint64        `json:"combinations"`
	Elapsed      time.Duration `json:"elapsed"`
	// Partial is set when the calculation was cancelled before every planned trial ran.
	Partial bool `json:"partial"`
	// Seed is the Monte Carlo seed, zero for exhaustive runs.
	Seed int64 `json:"seed,omitempty"`
}

// PlayerResult is one hand's share of the pot and outcome breakdown. All rates are
// fractions in [0, 1].
type PlayerResult struct {
	Hand  []poker.Card `json:"hand"`
	Label string       `json:"label"`
	// Category is the preflop strength bucket of the hole cards.
	Category       poker.HoleCardCategory `json:"holeCategory"`
	Equity         float64                `json:"equity"`
	WinPercentage  float64                `json:"win"`
	TiePercentage  float64                `json:"tie"`
	LossPercentage float64                `json:"loss"`
	Wins           int64                  `json:"wins"`
	Ties           int64                  `json:"ties"`
	Losses         int64                  `json:"losses"`
	// Categories maps each final hand category the player made to its frequency.
	Categories map[poker.Category]float64 `json:"categories"`
	MostLikely poker.Category             `json:"mostLikely"`
	// Confidence is the 95% interval on Equity, set for sampled results only.
	Confidence *Interval `json:"confidence,omitempty"`
}

// Interval is a closed range of probabilities.
type Interval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

func newResult(req Request, strategy Strategy, t *tally, planned int64) *Result {
	r := &Result{
		ID:         uuid.New(),
		Rules:      req.Rules,
		Board:      append([]poker.Card{}, req.Board...),
		Players:    make([]PlayerResult, len(t.players)),
		Strategy:   strategy,
		Iterations: t.trials,
		Planned:    planned,
		Partial:    t.trials < planned,
	}
	for i, h := range t.players {
		r.Players[i] = newPlayerResult(req.Rules, req.Hands[i], h, t.unit, strategy == StrategyMonteCarlo)
	}
	return r
}

func newPlayerResult(rules poker.Rules, hand []poker.Card, h HandEquity, unit uint64, sampled bool) PlayerResult {
	p := PlayerResult{
		Hand:       append([]poker.Card{}, hand...),
		Label:      poker.StartingHandLabel(hand[0], hand[1]),
		Category:   poker.CategorizeHoleCards(hand[0], hand[1]),
		Wins:       h.Wins,
		Ties:       h.Ties,
		Losses:     h.Losses(),
		Categories: make(map[poker.Category]float64),
	}
	if h.Trials == 0 {
		return p
	}

	n := float64(h.Trials)
	p.Equity = float64(h.Share) / float64(unit) / n
	p.WinPercentage = float64(h.Wins) / n
	p.TiePercentage = float64(h.Ties) / n
	p.LossPercentage = float64(p.Losses) / n

	var best int64
	for i, count := range h.Categories {
		if count == 0 {
			continue
		}
		cat := poker.Category(i)
		p.Categories[cat] = float64(count) / n
		// Ties go to the stronger category under rules.
		if count > best || (count == best && rules.CategoryOrdinal(cat) > rules.CategoryOrdinal(p.MostLikely)) {
			best = count
			p.MostLikely = cat
		}
	}

	if sampled {
		lower, upper := confidenceInterval(p.Equity, n)
		p.Confidence = &Interval{Lower: lower, Upper: upper}
	}
	return p
}

// confidenceInterval returns the 95% normal-approximation interval for a proportion.
func confidenceInterval(p, n float64) (lower, upper float64) {
	margin := 1.96 * math.Sqrt(p*(1-p)/n)
	return math.Max(0, p-margin), math.Min(1, p+margin)
}
