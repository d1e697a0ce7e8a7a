// Package pump drives one emulation frame per display refresh: it snapshots
// input, steps the engine, hands validated audio to the ring buffer and the
// video frame to the presenter.
package pump

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sync"
	"sync/atomic"

	emucore "github.com/user-none/snesfront/api"
	"github.com/user-none/snesfront/audio"
)

var (
	// ErrTickInFlight is returned by Tick while another tick is running.
	ErrTickInFlight = errors.New("tick already in flight")
	// ErrStopped is returned by Tick after Stop.
	ErrStopped = errors.New("frame pump stopped")
	// ErrEngine wraps every failed or malformed engine step.
	ErrEngine = errors.New("engine step failed")
	// ErrInvalidConfig is returned by New for missing collaborators or a
	// bad video size. A bad gain wraps audio.ErrInvalidConfig instead.
	ErrInvalidConfig = errors.New("invalid pump config")
)

// State is the tick state of a Pump.
type State int32

const (
	Idle State = iota
	TickInFlight
)

// String returns the name of the state.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case TickInFlight:
		return "tick in flight"
	default:
		return "unknown"
	}
}

// InputSource supplies the controller snapshot for a tick.
type InputSource interface {
	Snapshot() emucore.Input
}

// AudioSink receives validated samples. It is the producer side of the
// audio ring buffer and must never block.
type AudioSink interface {
	Write(samples []float32)
}

// Presenter displays a video frame. Present must not retain video after it
// returns and may drop the frame if the display is unavailable.
type Presenter interface {
	Present(video []byte)
}

// Recorder is an optional tap on the accepted audio stream.
type Recorder interface {
	Record(samples []float32) error
}

// Config holds the fixed parameters of a Pump.
type Config struct {
	Width  int     // Video width in pixels
	Height int     // Video height in pixels
	Gain   float32 // Applied to every accepted sample; 1 is unity

	// Optional
	Logger        *log.Logger     // Defaults to log.Default()
	Recorder      Recorder        // Receives every batch written to the sink
	OnEngineError func(err error) // Called on the first of a run of identical engine errors
}

// Stats are cumulative pump counters.
type Stats struct {
	Ticks          uint64 // Completed ticks, including those whose audio was dropped
	EngineErrors   uint64 // Abandoned ticks
	DroppedBatches uint64 // Audio batches rejected by validation
	BusySkips      uint64 // Tick calls refused because a tick was in flight
	Samples        uint64 // Samples written to the sink
}

// Pump runs the per-frame orchestration. Tick may be called from any
// goroutine; at most one tick runs at a time.
type Pump struct {
	engine    emucore.Engine
	input     InputSource
	sink      AudioSink
	presenter Presenter
	recorder  Recorder
	onErr     func(error)
	logger    *log.Logger
	gain      float32
	frameSize int

	state atomic.Int32

	mu       sync.Mutex // guards stopped and inflight.Add
	stopped  bool
	inflight sync.WaitGroup

	// Only touched inside a tick.
	scratch      []float32
	lastErr      string
	errRepeats   int
	rangeRepeats int

	ticks          atomic.Uint64
	engineErrors   atomic.Uint64
	droppedBatches atomic.Uint64
	busySkips      atomic.Uint64
	samples        atomic.Uint64
}

// New creates a pump. engine, input, sink and presenter are required.
func New(engine emucore.Engine, input InputSource, sink AudioSink, presenter Presenter, cfg Config) (*Pump, error) {
	if engine == nil || input == nil || sink == nil || presenter == nil {
		return nil, fmt.Errorf("%w: pump needs an engine, input, audio sink and presenter", ErrInvalidConfig)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: video size %dx%d", ErrInvalidConfig, cfg.Width, cfg.Height)
	}
	g := float64(cfg.Gain)
	if math.IsNaN(g) || math.IsInf(g, 0) || g < 0 {
		return nil, fmt.Errorf("%w: gain %v (must be finite and >= 0)", audio.ErrInvalidConfig, cfg.Gain)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Pump{
		engine:    engine,
		input:     input,
		sink:      sink,
		presenter: presenter,
		recorder:  cfg.Recorder,
		onErr:     cfg.OnEngineError,
		logger:    logger,
		gain:      cfg.Gain,
		frameSize: cfg.Width * cfg.Height * 4,
	}, nil
}

// State returns the current tick state.
func (p *Pump) State() State {
	return State(p.state.Load())
}

// Tick advances the engine by one frame and delivers its output. It returns
// ErrTickInFlight without touching the engine if a tick is already running,
// ErrStopped after Stop, and an error wrapping ErrEngine when the step
// failed. A rejected audio batch is not an error: the batch is dropped and
// the frame is still presented.
func (p *Pump) Tick(ctx context.Context) error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return ErrStopped
	}
	if !p.state.CompareAndSwap(int32(Idle), int32(TickInFlight)) {
		p.mu.Unlock()
		p.busySkips.Add(1)
		return ErrTickInFlight
	}
	p.inflight.Add(1)
	p.mu.Unlock()

	defer func() {
		p.state.Store(int32(Idle))
		p.inflight.Done()
	}()

	in := p.input.Snapshot()

	res, err := p.engine.Step(ctx, in)
	if err == nil && len(res.Video) != p.frameSize {
		err = fmt.Errorf("video frame is %d bytes, expected %d", len(res.Video), p.frameSize)
	}
	if err != nil {
		return p.engineFailed(err)
	}
	p.engineRecovered()

	validated, err := audio.Validate(p.scratch, res.Audio, p.gain)
	p.scratch = validated[:0]
	if err != nil {
		p.droppedBatches.Add(1)
		if p.rangeRepeats == 0 {
			p.logger.Printf("Warning: dropping audio batch of %d samples: %v", len(res.Audio), err)
		}
		p.rangeRepeats++
	} else {
		if p.rangeRepeats > 1 {
			p.logger.Printf("Audio recovered after %d dropped batches", p.rangeRepeats)
		}
		p.rangeRepeats = 0

		p.sink.Write(validated)
		p.samples.Add(uint64(len(validated)))
		p.record(validated)
	}

	p.presenter.Present(res.Video)
	p.ticks.Add(1)
	return nil
}

// engineFailed logs the first of a run of identical errors and counts the
// rest.
func (p *Pump) engineFailed(err error) error {
	p.engineErrors.Add(1)
	wrapped := fmt.Errorf("%w: %w", ErrEngine, err)

	msg := err.Error()
	if msg == p.lastErr {
		p.errRepeats++
		return wrapped
	}
	if p.errRepeats > 0 {
		p.logger.Printf("Engine error repeated %d more times: %s", p.errRepeats, p.lastErr)
	}
	p.lastErr = msg
	p.errRepeats = 0

	p.logger.Printf("Error: %v", wrapped)
	if p.onErr != nil {
		p.onErr(wrapped)
	}
	return wrapped
}

func (p *Pump) engineRecovered() {
	if p.lastErr == "" {
		return
	}
	if p.errRepeats > 0 {
		p.logger.Printf("Engine recovered after %d repeated failures: %s", p.errRepeats, p.lastErr)
	} else {
		p.logger.Printf("Engine recovered: %s", p.lastErr)
	}
	p.lastErr = ""
	p.errRepeats = 0
}

func (p *Pump) record(samples []float32) {
	if p.recorder == nil || len(samples) == 0 {
		return
	}
	if err := p.recorder.Record(samples); err != nil {
		p.logger.Printf("Warning: audio recording stopped: %v", err)
		p.recorder = nil
	}
}

// Stop refuses further ticks and waits for an in-flight tick to finish.
// After Stop returns the audio sink is no longer written and may be
// released.
func (p *Pump) Stop() {
	p.mu.Lock()
	p.stopped = true
	p.mu.Unlock()
	p.inflight.Wait()
}

// Stats returns a snapshot of the pump counters.
func (p *Pump) Stats() Stats {
	return Stats{
		Ticks:          p.ticks.Load(),
		EngineErrors:   p.engineErrors.Load(),
		DroppedBatches: p.droppedBatches.Load(),
		BusySkips:      p.busySkips.Load(),
		Samples:        p.samples.Load(),
	}
}
