package poker

import (
	"fmt"
	"strings"
)

// MarshalText encodes the card in canonical notation so cards read naturally in JSON.
func (c Card) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: invalid card value %#x", ErrInvalidCardNotation, uint64(c))
	}
	return []byte(c.String()), nil
}

func (c *Card) UnmarshalText(text []byte) error {
	card, err := ParseCard(string(text))
	if err != nil {
		return err
	}
	*c = card
	return nil
}

func (r Rules) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Rules) UnmarshalText(text []byte) error {
	rules, err := ParseRules(string(text))
	if err != nil {
		return err
	}
	*r = rules
	return nil
}

func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(text []byte) error {
	for cat := range Category(NumCategories) {
		if strings.EqualFold(cat.String(), string(text)) {
			*c = cat
			return nil
		}
	}
	return fmt.Errorf("unknown hand category %q", text)
}
