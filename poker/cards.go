package poker

import (
	"fmt"
	"math/bits"
	"slices"
	"strings"
)

// Card represents a single card as one bit in a uint64.
// Layout: [13 spades][13 hearts][13 diamonds][13 clubs], deuce in the lowest bit of each suit.
type Card uint64

// Rank is a card rank, Two=2 through Ace=14.
type Rank uint8

// Suit is a card suit, 0-3.
type Suit uint8

const (
	Clubs Suit = iota
	Diamonds
	Hearts
	Spades
)

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

const (
	rankChars = "23456789TJQKA"
	suitChars = "cdhs"

	// RankMask covers the 13 rank bits of one suit.
	RankMask = 0x1FFF
)

// String returns the single-character rank ("A", "T", "7").
func (r Rank) String() string {
	if r < Two || r > Ace {
		return "?"
	}
	return string(rankChars[r-Two])
}

// Name returns the plural rank name used in hand descriptions.
func (r Rank) Name() string {
	switch r {
	case Two:
		return "Twos"
	case Three:
		return "Threes"
	case Four:
		return "Fours"
	case Five:
		return "Fives"
	case Six:
		return "Sixes"
	case Seven:
		return "Sevens"
	case Eight:
		return "Eights"
	case Nine:
		return "Nines"
	case Ten:
		return "Tens"
	case Jack:
		return "Jacks"
	case Queen:
		return "Queens"
	case King:
		return "Kings"
	case Ace:
		return "Aces"
	default:
		return "?"
	}
}

// String returns the single-character suit ("c", "d", "h", "s").
func (s Suit) String() string {
	if s > Spades {
		return "?"
	}
	return string(suitChars[s])
}

// NewCard creates a card from rank and suit.
func NewCard(rank Rank, suit Suit) Card {
	return Card(1) << (uint(suit)*13 + uint(rank-Two))
}

// Index returns which bit position this card occupies (0-51), or 255 for the zero card.
func (c Card) Index() uint8 {
	if c == 0 {
		return 255
	}
	return uint8(bits.TrailingZeros64(uint64(c)))
}

// Rank returns the rank of the card.
func (c Card) Rank() Rank {
	idx := c.Index()
	if idx == 255 {
		return 0
	}
	return Rank(idx%13) + Two
}

// Suit returns the suit of the card.
func (c Card) Suit() Suit {
	idx := c.Index()
	if idx == 255 {
		return 255
	}
	return Suit(idx / 13)
}

// Valid reports whether the card is exactly one of the 52 cards.
func (c Card) Valid() bool {
	return bits.OnesCount64(uint64(c)) == 1 && c.Index() < 52
}

// String returns the canonical notation, e.g. "As", "Th".
func (c Card) String() string {
	if !c.Valid() {
		return "??"
	}
	return c.Rank().String() + c.Suit().String()
}

// ParseCard parses a two-character token like "As" into a Card.
func ParseCard(s string) (Card, error) {
	if len(s) != 2 {
		return 0, fmt.Errorf("%w: %q must be two characters", ErrInvalidCardNotation, s)
	}
	rank, ok := parseRank(s[0])
	if !ok {
		return 0, fmt.Errorf("%w: unknown rank %q in %q", ErrInvalidCardNotation, s[0], s)
	}
	suit, ok := parseSuit(s[1])
	if !ok {
		return 0, fmt.Errorf("%w: unknown suit %q in %q", ErrInvalidCardNotation, s[1], s)
	}
	return NewCard(rank, suit), nil
}

// ParseCards parses concatenated card notation such as "AcKh" or "Ac Kh 7d".
// Whitespace is ignored; ranks and suits are case-insensitive.
func ParseCards(s string) ([]Card, error) {
	s = strings.Join(strings.Fields(s), "")
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("%w: length %d is odd", ErrInvalidCardNotation, len(s))
	}

	cards := make([]Card, 0, len(s)/2)
	for i := 0; i < len(s); i += 2 {
		rank, ok := parseRank(s[i])
		if !ok {
			return nil, fmt.Errorf("%w: unknown rank %q at position %d", ErrInvalidCardNotation, s[i], i)
		}
		suit, ok := parseSuit(s[i+1])
		if !ok {
			return nil, fmt.Errorf("%w: unknown suit %q at position %d", ErrInvalidCardNotation, s[i+1], i+1)
		}
		cards = append(cards, NewCard(rank, suit))
	}
	return cards, nil
}

// MustParseCards parses cards and panics on error (for tests and literals).
func MustParseCards(s string) []Card {
	cards, err := ParseCards(s)
	if err != nil {
		panic(fmt.Sprintf("failed to parse cards %q: %v", s, err))
	}
	return cards
}

// FormatCards renders cards in canonical concatenated notation ("AcKh").
func FormatCards(cards []Card) string {
	var b strings.Builder
	b.Grow(len(cards) * 2)
	for _, c := range cards {
		b.WriteString(c.String())
	}
	return b.String()
}

// Canonicalize parses s and formats it back, normalising case and whitespace.
func Canonicalize(s string) (string, error) {
	cards, err := ParseCards(s)
	if err != nil {
		return "", err
	}
	return FormatCards(cards), nil
}

// ContainsCard reports whether card occurs in cards.
func ContainsCard(cards []Card, card Card) bool {
	return slices.Contains(cards, card)
}

// SortCards returns a copy of cards ordered by rank (high first), then suit.
func SortCards(cards []Card) []Card {
	sorted := slices.Clone(cards)
	slices.SortFunc(sorted, func(a, b Card) int {
		if a.Rank() != b.Rank() {
			return int(b.Rank()) - int(a.Rank())
		}
		return int(b.Suit()) - int(a.Suit())
	})
	return sorted
}

// FirstDuplicate returns the first card that appears more than once across sets.
func FirstDuplicate(sets ...[]Card) (Card, bool) {
	var seen Hand
	for _, set := range sets {
		for _, c := range set {
			if seen.HasCard(c) {
				return c, true
			}
			seen.AddCard(c)
		}
	}
	return 0, false
}

// HasDuplicates reports whether any card repeats across sets.
func HasDuplicates(sets ...[]Card) bool {
	_, ok := FirstDuplicate(sets...)
	return ok
}

func parseRank(c byte) (Rank, bool) {
	switch c {
	case '2', '3', '4', '5', '6', '7', '8', '9':
		return Rank(c-'2') + Two, true
	case 'T', 't':
		return Ten, true
	case 'J', 'j':
		return Jack, true
	case 'Q', 'q':
		return Queen, true
	case 'K', 'k':
		return King, true
	case 'A', 'a':
		return Ace, true
	default:
		return 0, false
	}
}

func parseSuit(c byte) (Suit, bool) {
	switch c {
	case 'c', 'C':
		return Clubs, true
	case 'd', 'D':
		return Diamonds, true
	case 'h', 'H':
		return Hearts, true
	case 's', 'S':
		return Spades, true
	default:
		return 0, false
	}
}

// Hand is a set of cards: multiple bits set in one uint64.
type Hand uint64

// NewHand creates a hand from multiple cards.
func NewHand(cards ...Card) Hand {
	var h Hand
	for _, c := range cards {
		h |= Hand(c)
	}
	return h
}

// AddCard adds a card to the hand.
func (h *Hand) AddCard(c Card) {
	*h |= Hand(c)
}

// HasCard checks if the hand contains a specific card.
func (h Hand) HasCard(c Card) bool {
	return h&Hand(c) != 0
}

// CountCards returns the number of cards in the hand.
func (h Hand) CountCards() int {
	return bits.OnesCount64(uint64(h))
}

// SuitMask returns the ranks held in one suit as a 13-bit mask (bit 0 = deuce).
func (h Hand) SuitMask(suit Suit) uint16 {
	return uint16(h>>(uint(suit)*13)) & RankMask
}

// RankMask returns a mask of every rank present in any suit.
func (h Hand) RankMask() uint16 {
	return h.SuitMask(Clubs) | h.SuitMask(Diamonds) | h.SuitMask(Hearts) | h.SuitMask(Spades)
}

// Cards expands the hand into cards in index order (clubs deuce first).
func (h Hand) Cards() []Card {
	cards := make([]Card, 0, h.CountCards())
	for rest := uint64(h); rest != 0; rest &= rest - 1 {
		cards = append(cards, Card(rest&-rest))
	}
	return cards
}

// String renders the hand in canonical notation, highest cards first.
func (h Hand) String() string {
	return FormatCards(SortCards(h.Cards()))
}
