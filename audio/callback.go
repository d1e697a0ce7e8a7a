package audio

import (
	"encoding/binary"
	"math"
)

// bytesPerSample is the size of one mono FormatFloat32LE sample.
const bytesPerSample = 4

// callbackChunk is the number of samples converted per pass. Larger device
// requests are served in several passes over the same scratch slice.
const callbackChunk = 1024

// RenderCallback is the consumer side of the audio path. oto's player
// goroutine pulls from it at the device cadence; each Read takes exactly the
// samples it needs from the ring buffer and encodes them as little-endian
// float32.
//
// Read never blocks and never allocates. It always fills the whole request
// (rounded down to a whole sample), repeating the held sample on underflow.
type RenderCallback struct {
	ring    *RingBuffer
	scratch [callbackChunk]float32
}

// NewRenderCallback creates the consumer for rb. Only one RenderCallback
// may read from a given ring buffer.
func NewRenderCallback(rb *RingBuffer) *RenderCallback {
	return &RenderCallback{ring: rb}
}

// Read implements io.Reader.
func (c *RenderCallback) Read(p []byte) (int, error) {
	total := len(p) / bytesPerSample
	done := 0
	for done < total {
		n := total - done
		if n > callbackChunk {
			n = callbackChunk
		}
		block := c.scratch[:n]
		c.ring.Read(block)

		out := p[done*bytesPerSample:]
		for i, s := range block {
			binary.LittleEndian.PutUint32(out[i*bytesPerSample:], math.Float32bits(s))
		}
		done += n
	}
	return total * bytesPerSample, nil
}
