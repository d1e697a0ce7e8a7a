package audio

import (
	"fmt"
	"math"
	"sync/atomic"
)

// RingBuffer is a lock-free single-producer, single-consumer circular store
// of mono float32 samples.
//
// The write cursor w and read cursor r increase monotonically; the physical
// slot of a cursor is its value modulo the capacity. Only Write stores w and
// only Read stores r. Slots hold float32 bit patterns in atomics so a writer
// overwriting a slot the reader is lagging on never produces a torn value.
//
// Overflow overwrites the oldest unread samples (no backpressure). Underflow
// repeats the slot at the read cursor without advancing it (no zero fill).
//
// Thread assignment:
//   - Write: producer goroutine only
//   - Read: consumer (audio callback) only
type RingBuffer struct {
	// Separate cache lines so producer and consumer cursors don't false-share.
	w     atomic.Uint64
	_pad1 [56]byte
	r     atomic.Uint64
	_pad2 [56]byte

	slots []atomic.Uint32
	size  uint64

	written     atomic.Uint64
	read        atomic.Uint64
	overwritten atomic.Uint64
	underruns   atomic.Uint64
}

// RingStats are cumulative diagnostic counters of a RingBuffer.
type RingStats struct {
	Written     uint64 // Samples accepted by Write
	Read        uint64 // Samples delivered by Read, excluding repeats
	Overwritten uint64 // Unread samples lost to overflow
	Underruns   uint64 // Output slots filled by repeating the held slot
}

// NewRingBuffer creates a zero-filled buffer holding capacity samples.
func NewRingBuffer(capacity int) (*RingBuffer, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: ring buffer capacity %d (must be > 0)", ErrInvalidConfig, capacity)
	}
	return &RingBuffer{
		slots: make([]atomic.Uint32, capacity),
		size:  uint64(capacity),
	}, nil
}

// Capacity returns the number of samples the buffer retains.
func (rb *RingBuffer) Capacity() int {
	return int(rb.size)
}

// Write appends samples in order. It never blocks and never fails; when the
// buffer is full the oldest unread samples are overwritten. A write longer
// than the capacity keeps only its last Capacity() samples, but the write
// cursor still advances by len(samples).
// Only call from the producer goroutine.
func (rb *RingBuffer) Write(samples []float32) {
	n := uint64(len(samples))
	if n == 0 {
		return
	}

	w := rb.w.Load()
	start := w
	if n > rb.size {
		skip := n - rb.size
		samples = samples[skip:]
		start += skip
	}

	for i, s := range samples {
		rb.slots[(start+uint64(i))%rb.size].Store(math.Float32bits(s))
	}

	// Count only what this write pushes out of the retained window; the
	// reader may not have caught up with earlier losses yet.
	unread := w - rb.r.Load()
	if lost := rb.excess(unread+n) - rb.excess(unread); lost > 0 {
		rb.overwritten.Add(lost)
	}

	rb.written.Add(n)
	rb.w.Store(w + n)
}

// Read fills every element of out. While unread samples remain the read
// cursor advances; once it reaches the write cursor the slot at the cursor
// is repeated for the rest of out. A reader that fell more than Capacity()
// behind is first moved to the oldest retained sample.
// Only call from the consumer goroutine.
func (rb *RingBuffer) Read(out []float32) {
	if len(out) == 0 {
		return
	}

	r := rb.r.Load()
	w := rb.w.Load()
	if w-r > rb.size {
		r = w - rb.size
	}

	avail := w - r
	n := uint64(len(out))
	if n > avail {
		n = avail
	}

	for i := uint64(0); i < n; i++ {
		out[i] = math.Float32frombits(rb.slots[(r+i)%rb.size].Load())
	}
	r += n

	if rest := out[n:]; len(rest) > 0 {
		held := math.Float32frombits(rb.slots[r%rb.size].Load())
		for i := range rest {
			rest[i] = held
		}
		rb.underruns.Add(uint64(len(rest)))
	}

	rb.read.Add(n)
	rb.r.Store(r)
}

// excess returns how far an unread count exceeds the capacity.
func (rb *RingBuffer) excess(unread uint64) uint64 {
	if unread > rb.size {
		return unread - rb.size
	}
	return 0
}

// Buffered returns the number of unread samples still retained.
func (rb *RingBuffer) Buffered() int {
	r := rb.r.Load()
	w := rb.w.Load()
	if w-r > rb.size {
		return int(rb.size)
	}
	return int(w - r)
}

// Cursors returns the current write and read cursor values.
func (rb *RingBuffer) Cursors() (write, read uint64) {
	return rb.w.Load(), rb.r.Load()
}

// Stats returns a snapshot of the diagnostic counters.
func (rb *RingBuffer) Stats() RingStats {
	return RingStats{
		Written:     rb.written.Load(),
		Read:        rb.read.Load(),
		Overwritten: rb.overwritten.Load(),
		Underruns:   rb.underruns.Load(),
	}
}
