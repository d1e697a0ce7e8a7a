// Package audio moves emulator audio from the frame pump to the output
// device: a lock-free ring buffer between the two clocks, the per-batch
// sample validator, the device render callback and the oto output that
// drives it.
package audio

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidConfig is returned when audio settings cannot be used to build
// the audio path. It is fatal at construction.
var ErrInvalidConfig = errors.New("invalid audio config")

// DefaultSampleRate is the native output rate of the SNES DSP.
const DefaultSampleRate = 32000

// Config holds the recognized audio options.
type Config struct {
	SampleRate            int     // Hz
	BufferCapacitySamples int     // Ring buffer capacity in samples
	NumChannels           int     // Fixed at 1
	Gain                  float32 // Fixed scalar applied to every accepted sample
}

// DefaultConfig returns a Config holding one second of mono audio at the
// default sample rate with unity gain.
func DefaultConfig() Config {
	return Config{
		SampleRate:            DefaultSampleRate,
		BufferCapacitySamples: DefaultSampleRate,
		NumChannels:           1,
		Gain:                  1.0,
	}
}

// Validate checks the config. Any returned error wraps ErrInvalidConfig.
func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d (must be > 0)", ErrInvalidConfig, c.SampleRate)
	}
	if c.BufferCapacitySamples <= 0 {
		return fmt.Errorf("%w: buffer capacity %d (must be > 0)", ErrInvalidConfig, c.BufferCapacitySamples)
	}
	if c.NumChannels != 1 {
		return fmt.Errorf("%w: %d channels (only mono is supported)", ErrInvalidConfig, c.NumChannels)
	}
	g := float64(c.Gain)
	if math.IsNaN(g) || math.IsInf(g, 0) || g < 0 {
		return fmt.Errorf("%w: gain %v (must be finite and >= 0)", ErrInvalidConfig, c.Gain)
	}
	return nil
}
