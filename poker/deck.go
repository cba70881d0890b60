package poker

import (
	"fmt"
	"slices"
)

// Deck is the unseen part of a variant's universe: every card not assigned to a hand or
// the board. It is a value; its card order is fixed (index order) so enumeration over it
// is deterministic.
type Deck struct {
	rules Rules
	cards []Card
	dealt Hand
}

// NewDeck builds the universe of rules minus every card in sets. It fails if a card is
// assigned twice or does not exist in the variant.
func NewDeck(rules Rules, sets ...[]Card) (Deck, error) {
	var dealt Hand
	for _, set := range sets {
		if err := rules.validate(set); err != nil {
			return Deck{}, err
		}
		for _, c := range set {
			if dealt.HasCard(c) {
				return Deck{}, fmt.Errorf("%w: %s", ErrDuplicateCard, c)
			}
			dealt.AddCard(c)
		}
	}

	universe := rules.Universe()
	cards := make([]Card, 0, len(universe)-dealt.CountCards())
	for _, c := range universe {
		if !dealt.HasCard(c) {
			cards = append(cards, c)
		}
	}
	return Deck{rules: rules, cards: cards, dealt: dealt}, nil
}

// Rules returns the variant the deck was built for.
func (d Deck) Rules() Rules {
	return d.rules
}

// Len returns the number of unseen cards.
func (d Deck) Len() int {
	return len(d.cards)
}

// Cards returns a copy of the unseen cards in index order.
func (d Deck) Cards() []Card {
	return slices.Clone(d.cards)
}

// Contains reports whether card is still unseen.
func (d Deck) Contains(card Card) bool {
	return d.rules.Contains(card) && !d.dealt.HasCard(card)
}

// Dealt returns every card removed from the universe.
func (d Deck) Dealt() Hand {
	return d.dealt
}
