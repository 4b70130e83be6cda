package aggregate

import "errors"

// ErrFinalized is returned when rows are added to a builder that already handed out its result.
var ErrFinalized = errors.New("aggregate: builder already finalized")

var errNotDirectory = errors.New("not a directory")
