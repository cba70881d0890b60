package poker

import "errors"

// Validation failures. They are always wrapped with the offending token or card, so match
// them with errors.Is.
var (
	ErrInvalidCardNotation = errors.New("invalid card notation")
	ErrDuplicateCard       = errors.New("duplicate card")
	ErrInvalidHandSize     = errors.New("invalid hand size")
	ErrInvalidHandCount    = errors.New("invalid hand count")
	ErrUnsupportedVariant  = errors.New("unsupported variant")
	ErrCardNotInVariant    = errors.New("card not in variant")
	ErrInvalidHoleCards    = errors.New("invalid hole cards")
	ErrInvalidBoardSize    = errors.New("invalid board size")
	ErrInvalidIterations   = errors.New("invalid iterations")
)

var validationErrors = []error{
	ErrInvalidCardNotation,
	ErrDuplicateCard,
	ErrInvalidHandSize,
	ErrInvalidHandCount,
	ErrUnsupportedVariant,
	ErrCardNotInVariant,
	ErrInvalidHoleCards,
	ErrInvalidBoardSize,
	ErrInvalidIterations,
}

// IsValidationError reports whether err was caused by bad caller input.
func IsValidationError(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
