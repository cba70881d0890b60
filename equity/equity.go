// Package equity computes showdown equity between hold'em hands.
//
// A Calculator takes two or more hole-card pairs and an optional partial board,
// completes the board either by enumerating every remaining combination or by
// sampling completions uniformly, and reports each hand's expected share of the pot.
// Ties split the pot evenly between every hand sharing the best rank.
package equity

import (
	"context"
	"fmt"

	"github.com/lox/pokerequity/poker"
)

// PlayerEquity is the compact per-hand summary returned by CalculateEquity.
type PlayerEquity struct {
	Equity        float64 `json:"equity"`
	TiePercentage float64 `json:"tiePercentage"`
}

// ParseRequest builds a Request from card notation. hands holds one string per
// player ("AcKh"); board may be empty; variant is a name accepted by poker.ParseRules.
func ParseRequest(hands []string, board, variant string, iterations int) (Request, error) {
	rules, err := poker.ParseRules(variant)
	if err != nil {
		return Request{}, err
	}
	req := Request{Rules: rules, Iterations: iterations}
	for i, s := range hands {
		cards, err := poker.ParseCards(s)
		if err != nil {
			return Request{}, fmt.Errorf("hand %d: %w", i+1, err)
		}
		req.Hands = append(req.Hands, cards)
	}
	if req.Board, err = poker.ParseCards(board); err != nil {
		return Request{}, fmt.Errorf("board: %w", err)
	}
	return req, nil
}

// CalculateEquity is the string-based entry point: it parses the inputs, runs a
// default Calculator and returns each player's equity and tie rate keyed by the
// player's position in hands.
func CalculateEquity(hands []string, board, variant string, iterations int) (map[int]PlayerEquity, error) {
	req, err := ParseRequest(hands, board, variant, iterations)
	if err != nil {
		return nil, err
	}
	calc, err := NewCalculator()
	if err != nil {
		return nil, err
	}
	result, err := calc.Calculate(context.Background(), req)
	if err != nil {
		return nil, err
	}

	out := make(map[int]PlayerEquity, len(result.Players))
	for i, p := range result.Players {
		out[i] = PlayerEquity{Equity: p.Equity, TiePercentage: p.TiePercentage}
	}
	return out, nil
}
