package poker

// HoleCardCategory represents the strength category of hole cards
type HoleCardCategory string

const (
	CategoryPremium HoleCardCategory = "Premium"
	CategoryStrong  HoleCardCategory = "Strong"
	CategoryMedium  HoleCardCategory = "Medium"
	CategoryWeak    HoleCardCategory = "Weak"
	CategoryTrash   HoleCardCategory = "Trash"
	CategoryUnknown HoleCardCategory = "Unknown"
)

// CategorizeHoleCards provides a simple preflop hand categorization.
// Categories: Premium (JJ+, AK), Strong (TT, AQ/AJ), Medium (77+, suited broadway),
// Weak (small pairs, suited connectors), Trash (everything else).
func CategorizeHoleCards(card1, card2 Card) HoleCardCategory {
	if !card1.Valid() || !card2.Valid() || card1 == card2 {
		return CategoryUnknown
	}

	small, big := card1.Rank(), card2.Rank()
	if small > big {
		small, big = big, small
	}
	suited := card1.Suit() == card2.Suit()
	isPair := small == big

	switch {
	case isPair && small >= Jack, small == King && big == Ace:
		return CategoryPremium
	case isPair && small == Ten, big == Ace && (small == Queen || small == Jack):
		return CategoryStrong
	case isPair && small >= Seven, suited && small >= Ten:
		return CategoryMedium
	case isPair, suited && big-small <= 2:
		return CategoryWeak
	default:
		return CategoryTrash
	}
}

// StartingHandLabel returns the 169-class notation for two hole cards: "AA", "AKs", "T9o".
func StartingHandLabel(card1, card2 Card) string {
	if !card1.Valid() || !card2.Valid() || card1 == card2 {
		return "??"
	}
	high, low := card1, card2
	if low.Rank() > high.Rank() {
		high, low = low, high
	}
	label := high.Rank().String() + low.Rank().String()
	switch {
	case high.Rank() == low.Rank():
		return label
	case high.Suit() == low.Suit():
		return label + "s"
	default:
		return label + "o"
	}
}
