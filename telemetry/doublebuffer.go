package telemetry

import "sync/atomic"

// DoubleBuffer hands complete snapshots from a single producer to any
// number of consumers without locks. The producer writes into the
// inactive slot and flips an atomic index; readers copy from whichever
// slot the index points at. A reader never observes a half-written
// snapshot, and the producer never blocks on readers.
//
// The single-writer rule is the caller's to uphold: Publish must not be
// called concurrently with itself. Read is safe from any goroutine.
type DoubleBuffer struct {
	slots  [2]Snapshot
	active atomic.Uint32
	seq    atomic.Uint64
}

// NewDoubleBuffer returns a buffer whose initial snapshot is the zero
// value. Read before the first Publish returns that zero snapshot.
func NewDoubleBuffer() *DoubleBuffer {
	return &DoubleBuffer{}
}

// Publish stores a new snapshot and makes it the one Read returns.
// The previous snapshot stays intact until the flip, so a Read started
// under one flip sees a whole snapshot. A reader that stalls across two
// consecutive publishes can observe the writer reusing its slot; at
// 60 Hz that window is a full frame period, far longer than a copy.
func (b *DoubleBuffer) Publish(s Snapshot) {
	next := 1 - b.active.Load()
	b.slots[next] = s
	b.active.Store(next)
	b.seq.Add(1)
}

// Read returns a copy of the most recently published snapshot.
func (b *DoubleBuffer) Read() Snapshot {
	return b.slots[b.active.Load()]
}

// Version returns the number of snapshots published so far. Consumers
// that poll can compare versions to skip unchanged data.
func (b *DoubleBuffer) Version() uint64 {
	return b.seq.Load()
}
