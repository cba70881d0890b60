package poker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeckRemovesAssignedCards(t *testing.T) {
	t.Parallel()
	hands := [][]Card{MustParseCards("AcKh"), MustParseCards("QsJd")}
	board := MustParseCards("7d9dTs")

	deck, err := NewDeck(Standard, hands[0], hands[1], board)
	require.NoError(t, err)

	assert.Equal(t, 52-7, deck.Len())
	assert.Equal(t, 7, deck.Dealt().CountCards())
	for _, set := range [][]Card{hands[0], hands[1], board} {
		for _, c := range set {
			assert.False(t, deck.Contains(c), "deck still holds %s", c)
		}
	}
	assert.True(t, deck.Contains(NewCard(Two, Clubs)))

	// Cards returns a copy.
	cards := deck.Cards()
	cards[0] = NewCard(Ace, Clubs)
	assert.NotEqual(t, NewCard(Ace, Clubs), deck.Cards()[0])
}

func TestNewDeckDuplicate(t *testing.T) {
	t.Parallel()
	_, err := NewDeck(Standard, MustParseCards("AcKh"), MustParseCards("AcKh"))
	assert.ErrorIs(t, err, ErrDuplicateCard)
	assert.Contains(t, err.Error(), "Ac")

	_, err = NewDeck(Standard, MustParseCards("AcAc"))
	assert.ErrorIs(t, err, ErrDuplicateCard)
}

func TestShortDeckUniverse(t *testing.T) {
	t.Parallel()
	deck, err := NewDeck(ShortDeck)
	require.NoError(t, err)
	assert.Equal(t, 36, deck.Len())
	for _, c := range deck.Cards() {
		assert.GreaterOrEqual(t, c.Rank(), Six)
	}

	_, err = NewDeck(ShortDeck, MustParseCards("AcKh"), MustParseCards("5d9d"))
	assert.ErrorIs(t, err, ErrCardNotInVariant)
}

func TestParseRules(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in      string
		want    Rules
		wantErr bool
	}{
		{in: "standard", want: Standard},
		{in: "", want: Standard},
		{in: "Short-Deck", want: ShortDeck},
		{in: "6plus", want: ShortDeck},
		{in: "omaha", wantErr: true},
	}
	for _, tc := range tests {
		got, err := ParseRules(tc.in)
		if tc.wantErr {
			assert.ErrorIs(t, err, ErrUnsupportedVariant, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got)
	}
	assert.Equal(t, 52, Standard.DeckSize())
	assert.Equal(t, 36, ShortDeck.DeckSize())
	assert.Equal(t, "short-deck", ShortDeck.String())
}
