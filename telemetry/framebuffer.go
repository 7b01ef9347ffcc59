package telemetry

import (
	"sync"
	"time"
)

// FrameBuffer holds the most recent render frame received from the peer.
// Unlike DoubleBuffer it is written from the link's receive path and read
// from wherever output is consumed, with no single-writer guarantee, so a
// mutex guards it. Stale frames are simply overwritten.
type FrameBuffer struct {
	mu       sync.Mutex
	data     []byte
	seq      uint32
	received time.Time
	fresh    bool
}

// Store replaces the held frame.
func (f *FrameBuffer) Store(data []byte, seq uint32, at time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data = append(f.data[:0], data...)
	f.seq = seq
	f.received = at
	f.fresh = true
}

// Take returns a copy of the held frame and clears the freshness mark.
// ok is false when no frame has arrived since the last Take.
func (f *FrameBuffer) Take() (data []byte, seq uint32, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.fresh {
		return nil, 0, false
	}
	f.fresh = false
	return append([]byte(nil), f.data...), f.seq, true
}

// Peek returns a copy of the held frame without consuming freshness.
func (f *FrameBuffer) Peek() (data []byte, seq uint32, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.data == nil {
		return nil, 0, false
	}
	return append([]byte(nil), f.data...), f.seq, true
}

// Age reports how long ago the held frame arrived, relative to now.
// ok is false when no frame has ever arrived.
func (f *FrameBuffer) Age(now time.Time) (time.Duration, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.received.IsZero() {
		return 0, false
	}
	return now.Sub(f.received), true
}
