package equity

import "github.com/lox/pokerequity/poker"

// HandEquity accumulates one player's outcomes over a set of trials.
//
// Share counts fractional wins in units of lcm(1..players): a sole win adds one full
// unit, a k-way tie adds unit/k. Keeping it integral makes merging exact regardless
// of how trials were split between workers.
type HandEquity struct {
	Trials     int64
	Wins       int64
	Ties       int64
	Share      uint64
	Categories [poker.NumCategories]int64
}

// Losses is the number of trials the player did not win or tie.
func (h HandEquity) Losses() int64 {
	return h.Trials - h.Wins - h.Ties
}

func (h *HandEquity) add(o HandEquity) {
	h.Trials += o.Trials
	h.Wins += o.Wins
	h.Ties += o.Ties
	h.Share += o.Share
	for i := range h.Categories {
		h.Categories[i] += o.Categories[i]
	}
}

// tally holds per-player accumulators for one worker.
type tally struct {
	unit    uint64
	trials  int64
	players []HandEquity
}

func newTally(players int) *tally {
	return &tally{
		unit:    shareUnit(players),
		players: make([]HandEquity, players),
	}
}

// record scores one trial given each player's final hand rank.
func (t *tally) record(ranks []poker.HandRank) {
	best, count := ranks[0], 1
	for _, r := range ranks[1:] {
		switch {
		case r > best:
			best, count = r, 1
		case r == best:
			count++
		}
	}

	share := t.unit / uint64(count)
	for i, r := range ranks {
		p := &t.players[i]
		p.Trials++
		p.Categories[r.Category()]++
		if r != best {
			continue
		}
		p.Share += share
		if count == 1 {
			p.Wins++
		} else {
			p.Ties++
		}
	}
	t.trials++
}

func (t *tally) merge(o *tally) {
	t.trials += o.trials
	for i := range t.players {
		t.players[i].add(o.players[i])
	}
}

// shareUnit returns lcm(1..n), the smallest unit every k-way split divides evenly.
func shareUnit(n int) uint64 {
	unit := uint64(1)
	for k := uint64(2); k <= uint64(n); k++ {
		unit = unit / gcd(unit, k) * k
	}
	return unit
}

func gcd(a, b uint64) uint64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
