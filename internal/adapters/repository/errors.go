package repository

import "errors"

// Sentinel kinds for lookup errors.
var (
	ErrNotFound = errors.New("neo not found")
)
