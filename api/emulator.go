package emucore

import "context"

// FrameResult is the output of one emulation step.
type FrameResult struct {
	// Video is RGBA8 pixel data of exactly ScreenWidth x ScreenHeight
	// as advertised by the core's SystemInfo.
	Video []byte

	// Audio holds the mono samples generated during the frame, nominally
	// in [-1.0, 1.0]. It may be empty.
	Audio []float32
}

// Engine is the interface every emulation core adapter must implement.
type Engine interface {
	// Step advances the machine by one frame using the given input. The
	// call may block, for example when the core lives behind a worker
	// goroutine or another process. The returned buffers are only valid
	// until the next call to Step.
	Step(ctx context.Context, in Input) (FrameResult, error)

	// Close releases any resources held by the engine.
	Close() error
}

// CoreFactory creates engine instances and provides system metadata.
type CoreFactory interface {
	// SystemInfo returns system metadata for UI configuration.
	SystemInfo() SystemInfo

	// CreateEngine creates a new engine running the given program data.
	CreateEngine(rom []byte, region Region, sampleRate int) (Engine, error)
}
