package export

import "errors"

// ErrUnsupportedFormat is returned for output formats no writer handles.
var ErrUnsupportedFormat = errors.New("unsupported export format")
