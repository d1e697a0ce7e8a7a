package standalone

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/user-none/snesfront/pump"
)

// SharedFramebuffer holds the last presented frame. Present is called by the
// emulation goroutine and Read by ebiten's Draw. Uses separate write and
// read buffers so Draw can use its copy without holding the lock.
type SharedFramebuffer struct {
	mu          sync.Mutex
	writePixels []byte // Written by Present under lock
	readPixels  []byte // Snapshot copied on Read for safe external use
	width       int
	height      int
	frames      uint64

	dropped atomic.Uint64
}

// NewSharedFramebuffer creates a pre-allocated framebuffer sized for the
// given screen dimensions (width and height in pixels, 4 bytes per pixel).
func NewSharedFramebuffer(width, height int) *SharedFramebuffer {
	size := width * height * 4
	return &SharedFramebuffer{
		writePixels: make([]byte, size),
		readPixels:  make([]byte, size),
		width:       width,
		height:      height,
	}
}

// Present implements pump.Presenter. If Draw is copying the frame at that
// moment the new frame is dropped instead of waiting.
func (sf *SharedFramebuffer) Present(video []byte) {
	if !sf.mu.TryLock() {
		sf.dropped.Add(1)
		return
	}
	copy(sf.writePixels, video)
	sf.frames++
	sf.mu.Unlock()
}

// Read returns a snapshot of the last presented frame and the number of
// frames presented so far. The pixels are only meaningful once frames > 0.
func (sf *SharedFramebuffer) Read() (pixels []byte, frames uint64) {
	sf.mu.Lock()
	frames = sf.frames
	if frames > 0 {
		copy(sf.readPixels, sf.writePixels)
	}
	pixels = sf.readPixels
	sf.mu.Unlock()
	return
}

// Size returns the frame dimensions in pixels.
func (sf *SharedFramebuffer) Size() (width, height int) {
	return sf.width, sf.height
}

// Dropped returns the number of frames discarded by Present.
func (sf *SharedFramebuffer) Dropped() uint64 {
	return sf.dropped.Load()
}

// ticker is the part of the pump driven by TickLoop.
type ticker interface {
	Tick(ctx context.Context) error
}

// TickLoop runs ticks on a dedicated emulation goroutine. ebiten's Update
// calls Trigger once per display refresh; a trigger that arrives while the
// previous tick is still running is skipped, never queued.
type TickLoop struct {
	pump  ticker
	ticks chan struct{} // unbuffered: a send only lands when the loop is idle
	quit  chan struct{}
	done  chan struct{}

	startOnce sync.Once
	stopOnce  sync.Once

	triggered atomic.Uint64
	skipped   atomic.Uint64
}

// NewTickLoop creates a stopped loop for p.
func NewTickLoop(p ticker) *TickLoop {
	return &TickLoop{
		pump:  p,
		ticks: make(chan struct{}),
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
	}
}

// Start launches the emulation goroutine.
func (l *TickLoop) Start() {
	l.startOnce.Do(func() {
		go l.run()
	})
}

func (l *TickLoop) run() {
	defer close(l.done)

	ctx := context.Background()
	for {
		select {
		case <-l.quit:
			return
		case <-l.ticks:
		}

		// Engine and audio failures are reported by the pump itself.
		if err := l.pump.Tick(ctx); errors.Is(err, pump.ErrStopped) {
			return
		}
	}
}

// Trigger requests one tick without blocking. It reports whether the
// emulation goroutine accepted it.
func (l *TickLoop) Trigger() bool {
	select {
	case l.ticks <- struct{}{}:
		l.triggered.Add(1)
		return true
	default:
		l.skipped.Add(1)
		return false
	}
}

// Stop ends the loop and waits for a running tick to finish. Safe to call
// more than once and before Start.
func (l *TickLoop) Stop() {
	l.stopOnce.Do(func() {
		close(l.quit)
	})
	// A loop that never started has nothing to wait for.
	l.startOnce.Do(func() {
		close(l.done)
	})
	<-l.done
}

// Counts returns the number of accepted and skipped triggers.
func (l *TickLoop) Counts() (triggered, skipped uint64) {
	return l.triggered.Load(), l.skipped.Load()
}
