package watchlist

import (
	"errors"

	"github.com/bestchoice-b3/b3-daily/internal/contracts"
)

var (
	// ErrInvalidCPF is returned when the session CPF fails validation
	ErrInvalidCPF = errors.New("invalid CPF")

	// ErrEmptyCPF is returned when a session is opened without a CPF
	ErrEmptyCPF = errors.New("empty CPF")

	// ErrTooManySessions is returned when every open session is in use
	ErrTooManySessions = errors.New("too many open watchlists")

	// ErrEmptySymbol is returned when adding a blank symbol
	ErrEmptySymbol = errors.New("empty symbol")

	// ErrDuplicateSymbol is returned when the symbol is already watched
	ErrDuplicateSymbol = errors.New("symbol already registered")

	// ErrStockNotFound is returned for a symbol not in the current list
	ErrStockNotFound = errors.New("stock not found")

	// ErrAnnotationIndex is returned when removing an annotation that does not exist
	ErrAnnotationIndex = errors.New("annotation index out of range")

	// ErrInvalidAnnotationType is returned for a type other than info, warning, error
	ErrInvalidAnnotationType = errors.New("invalid annotation type")

	// ErrUnknownChecklistItem is returned for an unknown checklist key
	ErrUnknownChecklistItem = contracts.ErrUnknownChecklistItem
)
