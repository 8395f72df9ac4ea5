// Package dedupe tracks keys that were seen more than once.
package dedupe

import (
	"context"
	"sync"
)

// Deduper records seen keys.
type Deduper interface {
	// SeenAndRecord reports whether id was already recorded, recording it if not.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord forgets id.
	Unrecord(ctx context.Context, id string)

	// Size returns the number of distinct keys recorded.
	Size() int64
}

// Tracker is a Deduper that also remembers which keys repeated, in the
// order their first repeat was observed.
type Tracker struct {
	mu            sync.Mutex
	seen          map[string]int // id -> occurrences
	duplicates    []string
	maxDuplicates int // 0 = unbounded
}

// NewTracker creates an empty Tracker.
func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{seen: make(map[string]int)}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// SeenAndRecord implements Deduper.
func (t *Tracker) SeenAndRecord(_ context.Context, id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := t.seen[id]
	t.seen[id] = n + 1
	if n == 1 && (t.maxDuplicates <= 0 || len(t.duplicates) < t.maxDuplicates) {
		t.duplicates = append(t.duplicates, id)
	}
	return n > 0
}

// Unrecord implements Deduper.
func (t *Tracker) Unrecord(_ context.Context, id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.seen, id)
}

// Size implements Deduper.
func (t *Tracker) Size() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return int64(len(t.seen))
}

// Occurrences returns how many times id was recorded.
func (t *Tracker) Occurrences(id string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.seen[id]
}

// Duplicates returns the keys recorded more than once.
func (t *Tracker) Duplicates() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.duplicates))
	copy(out, t.duplicates)
	return out
}
