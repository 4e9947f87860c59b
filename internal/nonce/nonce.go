// Package nonce produces the strictly increasing update identifiers used to
// order book diffs relative to the snapshot and to each other.
package nonce

import "sync"

const microsecondsPerSecond = 1e6

// Sequencer derives monotonically increasing identifiers from timestamps.
// Identifiers are the timestamp in microseconds, bumped past the previous
// value whenever a burst lands inside the same microsecond, so two calls
// never return the same id. Safe for concurrent use.
type Sequencer struct {
	mu   sync.Mutex
	last uint64
}

// NewSequencer returns a Sequencer starting from zero.
func NewSequencer() *Sequencer {
	return &Sequencer{}
}

// Next returns an identifier strictly greater than any previously returned
// one. The timestamp is epoch seconds with fraction; it never fails.
func (s *Sequencer) Next(timestamp float64) uint64 {
	candidate := uint64(timestamp * microsecondsPerSecond)

	s.mu.Lock()
	defer s.mu.Unlock()
	if candidate <= s.last {
		candidate = s.last + 1
	}
	s.last = candidate
	return candidate
}
