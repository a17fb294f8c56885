// Package history keeps a bounded, oldest-first window of recent readings.
package history

import (
	"fmt"
	"iter"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/chrissnell/wxcore/internal/errcode"
	"github.com/chrissnell/wxcore/internal/types"
)

// DefaultCapacity is the history size used when none is configured
const DefaultCapacity = 10

// History is a capacity-bounded, insertion-ordered list of readings. Appending
// beyond capacity silently drops the oldest readings. It is safe for
// concurrent use.
type History struct {
	mu       sync.RWMutex
	buf      buffer
	capacity int
	clock    clockwork.Clock
}

// Option configures a History
type Option func(*History)

// WithClock sets the clock used by EvictOlderThanAge
func WithClock(c clockwork.Clock) Option {
	return func(h *History) {
		h.clock = c
	}
}

// New creates an empty History holding at most capacity readings
func New(capacity int, opts ...Option) (*History, error) {
	if capacity < 1 {
		return nil, errcode.New(errcode.InvalidArgument, "history.New", fmt.Sprintf("capacity must be at least 1, got %d", capacity))
	}

	h := &History{
		capacity: capacity,
		clock:    clockwork.NewRealClock(),
	}
	for _, o := range opts {
		o(h)
	}
	h.buf.items = make([]types.Reading, 0, capacity)

	return h, nil
}

// NewDefault creates a History with DefaultCapacity
func NewDefault(opts ...Option) *History {
	h, _ := New(DefaultCapacity, opts...)
	return h
}

// Append adds r as the newest reading and returns how many of the oldest
// readings were dropped to stay within capacity.
func (h *History) Append(r types.Reading) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.buf.pushBack(r)
	over := h.buf.len() - h.capacity
	h.buf.dropFront(over)

	return max(over, 0)
}

// EvictOlderThan removes every reading timestamped before cutoff. Survivors
// keep their order. It returns the number removed.
func (h *History) EvictOlderThan(cutoff time.Time) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.buf.retain(func(r types.Reading) bool {
		return !r.Timestamp.Before(cutoff)
	})
}

// EvictOlderThanAge removes readings older than maxAge relative to the
// history's clock
func (h *History) EvictOlderThanAge(maxAge time.Duration) int {
	return h.EvictOlderThan(h.clock.Now().Add(-maxAge))
}

// Len returns the number of readings held
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.buf.len()
}

// Capacity returns the maximum number of readings held
func (h *History) Capacity() int {
	return h.capacity
}

// At returns the i'th reading, 0 being the oldest
func (h *History) At(i int) (types.Reading, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if i < 0 || i >= h.buf.len() {
		return types.Reading{}, false
	}
	return h.buf.at(i), true
}

// Latest returns the newest reading
func (h *History) Latest() (types.Reading, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.buf.len() == 0 {
		return types.Reading{}, false
	}
	return h.buf.at(h.buf.len() - 1), true
}

// Readings returns a copy of the held readings, oldest first
func (h *History) Readings() []types.Reading {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.buf.snapshot()
}

// All iterates over a snapshot of the history, oldest first. The loop body
// runs without the lock held, so it may call back into the History.
func (h *History) All() iter.Seq2[int, types.Reading] {
	return func(yield func(int, types.Reading) bool) {
		for i, r := range h.Readings() {
			if !yield(i, r) {
				return
			}
		}
	}
}
