package stringdb

import "errors"

// Sentinel errors.
var (
	ErrUnknownSpecies  = errors.New("unknown species")
	ErrNoIdentifiers   = errors.New("no identifiers to query")
	ErrAPI             = errors.New("STRING API error")
	ErrBadResponse     = errors.New("malformed STRING response")
	ErrBadDETable      = errors.New("malformed differential expression table")
	ErrUnsupportedFile = errors.New("unsupported table format")
	ErrOutputExists    = errors.New("output directory already exists")
	ErrUnknownDatabase = errors.New("unknown annotation database")
	ErrNoClient        = errors.New("pipeline has no client")
)
