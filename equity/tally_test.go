package equity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lox/pokerequity/poker"
)

func TestShareUnit(t *testing.T) {
	t.Parallel()
	want := []uint64{1, 1, 2, 6, 12, 60, 60, 420}
	for n := 1; n < len(want); n++ {
		assert.Equal(t, want[n], shareUnit(n), "lcm(1..%d)", n)
	}
	assert.Equal(t, uint64(5_354_228_880), shareUnit(23))
}

func TestTallyRecord(t *testing.T) {
	t.Parallel()
	rank := func(cards string) poker.HandRank {
		r, err := poker.Evaluate(poker.Standard, poker.MustParseCards(cards))
		if err != nil {
			t.Fatal(err)
		}
		return r
	}
	flush := rank("AhKhQh9h2h")
	pair := rank("AcAd7s5c3d")

	tl := newTally(3)
	tl.record([]poker.HandRank{flush, pair, pair})
	tl.record([]poker.HandRank{pair, pair, pair})
	tl.record([]poker.HandRank{pair, flush, flush})

	p0, p1, p2 := tl.players[0], tl.players[1], tl.players[2]
	assert.Equal(t, int64(3), tl.trials)

	assert.Equal(t, int64(1), p0.Wins)
	assert.Equal(t, int64(1), p0.Ties)
	assert.Equal(t, int64(1), p0.Losses())
	assert.Equal(t, tl.unit+tl.unit/3, p0.Share)

	assert.Equal(t, int64(0), p1.Wins)
	assert.Equal(t, int64(2), p1.Ties)
	assert.Equal(t, tl.unit/3+tl.unit/2, p1.Share)
	assert.Equal(t, p1, p2)

	assert.Equal(t, 3*tl.unit, p0.Share+p1.Share+p2.Share)
	assert.Equal(t, int64(1), p0.Categories[poker.Flush])
	assert.Equal(t, int64(2), p0.Categories[poker.Pair])
}

func TestTallyMergeIsOrderIndependent(t *testing.T) {
	t.Parallel()
	hi, lo := poker.HandRank(2<<24), poker.HandRank(1<<24)
	a, b := newTally(2), newTally(2)
	a.record([]poker.HandRank{hi, lo})
	a.record([]poker.HandRank{hi, hi})
	b.record([]poker.HandRank{lo, hi})

	ab := newTally(2)
	ab.merge(a)
	ab.merge(b)
	ba := newTally(2)
	ba.merge(b)
	ba.merge(a)

	assert.Equal(t, ab, ba)
	assert.Equal(t, int64(3), ab.trials)
	assert.Equal(t, int64(1), ab.players[0].Wins)
	assert.Equal(t, int64(1), ab.players[0].Ties)
}
