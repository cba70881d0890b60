package poker

import (
	"fmt"
	"math/bits"
)

// Evaluate ranks 5, 6 or 7 cards under rules, choosing the best five-card hand implicitly.
func Evaluate(rules Rules, cards []Card) (HandRank, error) {
	if len(cards) < 5 || len(cards) > 7 {
		return 0, fmt.Errorf("%w: got %d cards, want 5 to 7", ErrInvalidHandSize, len(cards))
	}
	if dup, ok := FirstDuplicate(cards); ok {
		return 0, fmt.Errorf("%w: %s", ErrDuplicateCard, dup)
	}
	if err := rules.validate(cards); err != nil {
		return 0, err
	}
	return EvaluateHand(rules, NewHand(cards...)), nil
}

// EvaluateHand ranks a hand bitset without validation. The caller guarantees 5-7 distinct
// cards that belong to the variant; this is the innermost loop of every equity calculation.
func EvaluateHand(rules Rules, hand Hand) HandRank {
	s0 := hand.SuitMask(Clubs)
	s1 := hand.SuitMask(Diamonds)
	s2 := hand.SuitMask(Hearts)
	s3 := hand.SuitMask(Spades)
	rankMask := s0 | s1 | s2 | s3

	// With at most seven cards only one suit can hold five.
	var flushMask uint16
	for _, m := range [4]uint16{s0, s1, s2, s3} {
		if bits.OnesCount16(m) >= 5 {
			flushMask = m
			break
		}
	}

	if flushMask != 0 {
		if high := straightHigh(rules, flushMask); high != 0 {
			return makeRank(rules, StraightFlush, kickers{}.add(high))
		}
	}

	quadsMask := s0 & s1 & s2 & s3
	tripCandidates := (s0 & s1 & s2) | (s0 & s1 & s3) | (s0 & s2 & s3) | (s1 & s2 & s3)
	tripsMask := tripCandidates &^ quadsMask
	pairsMask := ((s0 & s1) | (s0 & s2) | (s0 & s3) | (s1 & s2) | (s1 & s3) | (s2 & s3)) &^ tripCandidates

	if quadsMask != 0 {
		quad := highestRank(quadsMask)
		return makeRank(rules, FourOfAKind, kickers{}.add(quad).addTop(rankMask&^rankBit(quad), 1))
	}

	var fullHouse, flush HandRank
	if tripsMask != 0 {
		trip := highestRank(tripsMask)
		if rest := pairsMask | tripsMask&^rankBit(trip); rest != 0 {
			fullHouse = makeRank(rules, FullHouse, kickers{}.add(trip).add(highestRank(rest)))
		}
	}
	if flushMask != 0 {
		flush = makeRank(rules, Flush, kickers{}.addTop(flushMask, 5))
	}
	// Ordinals already encode which of the two wins under these rules.
	if best := max(fullHouse, flush); best != 0 {
		return best
	}

	if high := straightHigh(rules, rankMask); high != 0 {
		return makeRank(rules, Straight, kickers{}.add(high))
	}

	if tripsMask != 0 {
		trip := highestRank(tripsMask)
		return makeRank(rules, ThreeOfAKind, kickers{}.add(trip).addTop(rankMask&^rankBit(trip), 2))
	}

	if pairsMask != 0 {
		high := highestRank(pairsMask)
		if lowMask := pairsMask &^ rankBit(high); lowMask != 0 {
			low := highestRank(lowMask)
			rest := rankMask &^ rankBit(high) &^ rankBit(low)
			return makeRank(rules, TwoPair, kickers{}.add(high).add(low).addTop(rest, 1))
		}
		return makeRank(rules, Pair, kickers{}.add(high).addTop(rankMask&^rankBit(high), 3))
	}

	return makeRank(rules, HighCard, kickers{}.addTop(rankMask, 5))
}

// straightHigh returns the high rank of the best straight in mask, or 0 if there is none.
func straightHigh(rules Rules, mask uint16) Rank {
	mask &= RankMask

	// Bitwise cascade identifies consecutive sequences in one pass.
	if seq := mask & (mask >> 1) & (mask >> 2) & (mask >> 3) & (mask >> 4); seq != 0 {
		return Rank(bits.Len16(seq)-1) + Two + 4
	}

	low := rules.lowStraightMask()
	if mask&low == low {
		return rules.lowStraightHigh()
	}
	return 0
}

// highestRank returns the highest rank present in a non-empty mask.
func highestRank(mask uint16) Rank {
	return Rank(bits.Len16(mask)-1) + Two
}

func rankBit(r Rank) uint16 {
	return 1 << (r - Two)
}

// kickers packs up to five tie-break ranks, most significant first, four bits each.
type kickers struct {
	packed uint32
	n      uint
}

func (k kickers) add(r Rank) kickers {
	k.packed |= uint32(r) << (16 - 4*k.n)
	k.n++
	return k
}

// addTop appends the n highest ranks of mask in descending order.
func (k kickers) addTop(mask uint16, n int) kickers {
	for ; n > 0 && mask != 0; n-- {
		top := highestRank(mask)
		k = k.add(top)
		mask &^= rankBit(top)
	}
	return k
}
