package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrBadRequest    = errors.New("bad request")
	ErrInvalidParam  = errors.New("invalid query parameter")
	ErrLimitExceeded = errors.New("limit exceeds maximum")
)
