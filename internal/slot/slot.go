// Package slot provides the single-payload mailbox between a session's
// capture scheduler and its consumers. A write always overwrites any
// unread value; there is no queue, so a slow consumer can never cause
// stale-frame buildup or unbounded memory growth.
package slot

import (
	"sync"

	"github.com/vburojevic/scw/internal/domain"
)

// Stats is a snapshot of a slot's drop accounting.
type Stats struct {
	// TotalDrops is the lifetime count of payloads overwritten before
	// any consumer read them.
	TotalDrops uint64
	// ConsecutiveDrops is the current streak of unread overwrites.
	// Resets on a successful read; a growing streak means the consumer
	// has stalled.
	ConsecutiveDrops uint64
}

// Slot holds at most one payload. Single writer (the session's scheduler),
// any number of readers.
type Slot struct {
	mu      sync.Mutex
	payload *domain.Payload
	read    bool
	closed  bool
	stats   Stats
	notify  chan struct{}
}

// New creates an empty, open slot.
func New() *Slot {
	return &Slot{notify: make(chan struct{}, 1)}
}

// Publish replaces the slot's contents with p. If the previous payload was
// never read it is counted as dropped. Returns false after Close.
func (s *Slot) Publish(p *domain.Payload) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	if s.payload != nil && !s.read {
		s.stats.TotalDrops++
		s.stats.ConsecutiveDrops++
	}
	s.payload = p
	s.read = false

	// Non-blocking wake for anyone selecting on Updated.
	select {
	case s.notify <- struct{}{}:
	default:
	}
	return true
}

// Latest returns the most recent payload, or (nil, false) if nothing has
// been published yet. Reads are idempotent: repeated calls between writes
// observe the same value.
func (s *Slot) Latest() (*domain.Payload, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.payload == nil {
		return nil, false
	}
	s.read = true
	s.stats.ConsecutiveDrops = 0
	return s.payload, true
}

// Updated returns a channel that receives after a publish. The channel has
// capacity one and is closed by Close, so a blocked reader always unblocks
// when the session ends.
func (s *Slot) Updated() <-chan struct{} {
	return s.notify
}

// Stats returns a snapshot of the slot's drop counters.
func (s *Slot) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Close marks the slot closed and wakes any waiter. Idempotent. Publishes
// after Close are discarded; Latest continues to serve the final value.
func (s *Slot) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	close(s.notify)
}
