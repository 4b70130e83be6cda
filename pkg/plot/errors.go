package plot

import "errors"

// Sentinel errors.
var (
	ErrUnknownTheme  = errors.New("unknown theme")
	ErrUnknownColumn = errors.New("unknown column")
	ErrInvalidBase   = errors.New("log base must be positive and not 1")
	ErrNothingToDraw = errors.New("no terms left to draw")
)
