package extract

import "github.com/okian/neodb/pkg/logger"

// Option applies a configuration option to the Loader.
type Option func(*Loader)

// WithLogger sets the logger used to report skipped rows.
func WithLogger(l logger.Logger) Option {
	return func(ld *Loader) {
		if l != nil {
			ld.logger = l
		}
	}
}

// WithStrict makes any skipped row a hard error.
func WithStrict(strict bool) Option {
	return func(ld *Loader) {
		ld.strict = strict
	}
}
