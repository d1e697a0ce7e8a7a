package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// State is the lifecycle state of an Output.
type State int

const (
	StateInit State = iota
	StateRunning
	StateStopped
)

// String returns the name of the state.
func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// oto allows a single context per process; it is created on first use and
// every Output must agree on its sample rate.
var (
	otoCtx        *oto.Context
	otoSampleRate int
	otoInitOnce   sync.Once
	otoInitErr    error
)

// ensureOtoContext initializes the oto audio context on first use.
func ensureOtoContext(sampleRate int) (*oto.Context, error) {
	otoInitOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: 1,
			Format:       oto.FormatFloat32LE,
			BufferSize:   50 * time.Millisecond,
		}
		var readyChan chan struct{}
		otoCtx, readyChan, otoInitErr = oto.NewContext(op)
		if otoInitErr != nil {
			return
		}
		otoSampleRate = sampleRate
		<-readyChan
	})
	if otoInitErr != nil {
		return nil, otoInitErr
	}
	if otoSampleRate != sampleRate {
		return nil, fmt.Errorf("%w: audio device already opened at %d Hz, requested %d Hz",
			ErrInvalidConfig, otoSampleRate, sampleRate)
	}
	return otoCtx, nil
}

// Output owns the device side of the audio path: an oto player pulling from
// a RenderCallback over the shared ring buffer. It moves through
// init -> running -> stopped exactly once.
type Output struct {
	mu       sync.Mutex
	state    State
	ring     *RingBuffer
	callback *RenderCallback
	player   *oto.Player
}

// NewOutput opens the audio device for cfg and attaches a player to rb.
// Playback does not begin until Start. The volume is applied before the
// first sample is played to avoid a pop.
func NewOutput(cfg Config, rb *RingBuffer, volume float64) (*Output, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ctx, err := ensureOtoContext(cfg.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("oto audio not available: %w", err)
	}

	cb := NewRenderCallback(rb)
	player := ctx.NewPlayer(cb)
	// Keep the mux player's own buffer to ~50ms so the ring buffer, not
	// oto, holds the slack between the two clocks.
	player.SetBufferSize(cfg.SampleRate / 20 * bytesPerSample)
	player.SetVolume(clampVolume(volume))

	return &Output{
		state:    StateInit,
		ring:     rb,
		callback: cb,
		player:   player,
	}, nil
}

// Start begins pulling samples from the ring buffer.
func (o *Output) Start() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch o.state {
	case StateRunning:
		return nil
	case StateStopped:
		return fmt.Errorf("audio output already stopped")
	}
	o.player.Play()
	o.state = StateRunning
	return nil
}

// State returns the current lifecycle state.
func (o *Output) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// SetVolume sets the playback volume (0.0 = silent, 1.0 = normal, 2.0 = max).
// Values are clamped to [0.0, 2.0].
func (o *Output) SetVolume(vol float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state == StateStopped {
		return
	}
	o.player.SetVolume(clampVolume(vol))
}

// BufferedSamples returns the samples queued between the producer and the
// device: unread ring buffer samples plus oto's internal buffer.
func (o *Output) BufferedSamples() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	n := o.ring.Buffered()
	if o.state != StateStopped {
		n += o.player.BufferedSize() / bytesPerSample
	}
	return n
}

// Close stops playback. The ring buffer may be released afterwards.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state == StateStopped {
		return nil
	}
	o.state = StateStopped
	return o.player.Close()
}

func clampVolume(vol float64) float64 {
	if vol < 0 {
		return 0
	} else if vol > 2.0 {
		return 2.0
	}
	return vol
}
