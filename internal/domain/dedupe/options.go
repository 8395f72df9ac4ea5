// Package dedupe tracks keys that were seen more than once.
package dedupe

// Option applies a configuration option to the Tracker.
type Option func(*Tracker)

// WithMaxDuplicates caps how many repeated keys are kept for reporting.
// Counting is unaffected. maxDuplicates <= 0 means unbounded.
func WithMaxDuplicates(maxDuplicates int) Option {
	return func(t *Tracker) {
		t.maxDuplicates = maxDuplicates
	}
}
