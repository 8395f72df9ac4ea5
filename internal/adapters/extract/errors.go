package extract

import "errors"

// Sentinel kinds for extraction errors.
var (
	ErrMissingColumn  = errors.New("missing required column")
	ErrMalformedInput = errors.New("malformed input")
)
