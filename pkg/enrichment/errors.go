package enrichment

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrInvalidCategory is returned for a category outside the supported set.
	ErrInvalidCategory = errors.New("invalid enrichment category")
	// ErrInvalidDirection is returned for an unknown direction tag or an unsupported direction input type.
	ErrInvalidDirection = errors.New("invalid direction")
	// ErrMalformedRow is returned when a table row cannot be parsed.
	ErrMalformedRow = errors.New("malformed enrichment row")
	// ErrMissingColumn is returned when a required header column is absent.
	ErrMissingColumn = fmt.Errorf("%w: missing column", ErrMalformedRow)
)
