package poker

import (
	"fmt"
	"strings"
)

// Rules selects the card universe and hand ordering for a calculation.
// The set of variants is closed; the zero value is Standard.
type Rules uint8

const (
	// Standard is 52-card hold'em: wheel straight allowed, full house beats flush.
	Standard Rules = iota
	// ShortDeck is 36-card (six-plus) hold'em: ranks Six through Ace, flush beats
	// full house, A-6-7-8-9 is the lowest straight.
	ShortDeck
)

// ParseRules resolves a variant name.
func ParseRules(name string) (Rules, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "standard", "holdem", "texas", "nlhe":
		return Standard, nil
	case "short-deck", "shortdeck", "short", "6plus", "6+":
		return ShortDeck, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedVariant, name)
	}
}

func (r Rules) String() string {
	switch r {
	case Standard:
		return "standard"
	case ShortDeck:
		return "short-deck"
	default:
		return "unknown"
	}
}

// MinRank returns the lowest rank dealt under these rules.
func (r Rules) MinRank() Rank {
	if r == ShortDeck {
		return Six
	}
	return Two
}

// DeckSize returns the size of the full card universe.
func (r Rules) DeckSize() int {
	return int(Ace-r.MinRank()+1) * 4
}

// Contains reports whether card exists in this variant's deck.
func (r Rules) Contains(card Card) bool {
	return card.Valid() && card.Rank() >= r.MinRank()
}

// FlushBeatsFullHouse reports the flush/full house ordering.
func (r Rules) FlushBeatsFullHouse() bool {
	return r == ShortDeck
}

// CategoryOrdinal returns the strength position of a category under these rules
// (0 weakest). Only flush and full house move between variants.
func (r Rules) CategoryOrdinal(c Category) uint32 {
	if r.FlushBeatsFullHouse() {
		switch c {
		case Flush:
			return uint32(FullHouse)
		case FullHouse:
			return uint32(Flush)
		}
	}
	return uint32(c)
}

// Universe returns every card of the variant in index order.
func (r Rules) Universe() []Card {
	cards := make([]Card, 0, r.DeckSize())
	for suit := range Suit(4) {
		for rank := r.MinRank(); rank <= Ace; rank++ {
			cards = append(cards, NewCard(rank, suit))
		}
	}
	return cards
}

// lowStraightMask is the special lowest straight of the variant (ace plays low).
func (r Rules) lowStraightMask() uint16 {
	if r == ShortDeck {
		return 1<<(Ace-Two) | 1<<(Six-Two) | 1<<(Seven-Two) | 1<<(Eight-Two) | 1<<(Nine-Two)
	}
	return 1<<(Ace-Two) | 1<<(Two-Two) | 1<<(Three-Two) | 1<<(Four-Two) | 1<<(Five-Two)
}

// lowStraightHigh is the rank credited as the high card of the low straight.
func (r Rules) lowStraightHigh() Rank {
	if r == ShortDeck {
		return Nine
	}
	return Five
}

func (r Rules) validate(cards []Card) error {
	for _, c := range cards {
		if !r.Contains(c) {
			return fmt.Errorf("%w: %s is not dealt in %s", ErrCardNotInVariant, c, r)
		}
	}
	return nil
}
