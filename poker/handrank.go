package poker

import (
	"fmt"
	"strings"
)

// Category enumerates the kinds of poker hands ordered from weakest to strongest under
// standard rules.
type Category uint8

const (
	HighCard Category = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

// NumCategories is the number of hand categories.
const NumCategories = int(StraightFlush) + 1

// String returns a human-readable category name.
func (c Category) String() string {
	switch c {
	case HighCard:
		return "High Card"
	case Pair:
		return "Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	default:
		return "Unknown"
	}
}

// HandRank is the strength of a 5-7 card hand. Higher values are stronger.
//
// Layout: ordinal<<24 | category<<20 | five 4-bit kicker ranks. The ordinal is the
// category's strength under the rules used to evaluate, so plain integer comparison
// orders hands evaluated under the same rules. The zero value is not a valid rank.
type HandRank uint32

func makeRank(rules Rules, c Category, k kickers) HandRank {
	return HandRank(rules.CategoryOrdinal(c)<<24 | uint32(c)<<20 | k.packed)
}

// Category returns the hand category.
func (hr HandRank) Category() Category {
	return Category(hr >> 20 & 0xF)
}

// Kickers returns the tie-break ranks in comparison order.
func (hr HandRank) Kickers() []Rank {
	var ranks []Rank
	for shift := 16; shift >= 0; shift -= 4 {
		r := Rank(hr >> shift & 0xF)
		if r == 0 {
			break
		}
		ranks = append(ranks, r)
	}
	return ranks
}

// Compare returns 1 if hr beats other, -1 if other wins and 0 for a tie.
func (hr HandRank) Compare(other HandRank) int {
	switch {
	case hr > other:
		return 1
	case hr < other:
		return -1
	default:
		return 0
	}
}

func (hr HandRank) String() string {
	return hr.Category().String()
}

// Describe names the hand with its deciding ranks, e.g. "Full House, Kings full of Fives".
func (hr HandRank) Describe() string {
	k := hr.Kickers()
	if len(k) == 0 {
		return "Unknown"
	}
	switch hr.Category() {
	case StraightFlush:
		if k[0] == Ace {
			return "Royal Flush"
		}
		return fmt.Sprintf("Straight Flush, %s high", k[0])
	case FourOfAKind:
		return fmt.Sprintf("Four of a Kind, %s", k[0].Name())
	case FullHouse:
		return fmt.Sprintf("Full House, %s full of %s", k[0].Name(), k[1].Name())
	case Flush:
		return fmt.Sprintf("Flush, %s high", k[0])
	case Straight:
		return fmt.Sprintf("Straight, %s high", k[0])
	case ThreeOfAKind:
		return fmt.Sprintf("Three of a Kind, %s", k[0].Name())
	case TwoPair:
		return fmt.Sprintf("Two Pair, %s and %s", k[0].Name(), k[1].Name())
	case Pair:
		return fmt.Sprintf("Pair of %s", k[0].Name())
	default:
		parts := make([]string, len(k))
		for i, r := range k {
			parts[i] = r.String()
		}
		return "High Card, " + strings.Join(parts, " ")
	}
}
