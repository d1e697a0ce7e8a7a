package storage

import (
	"github.com/user-none/snesfront/audio"
)

// Config represents the application configuration stored in config.json
type Config struct {
	Version   int             `json:"version"`
	Audio     AudioConfig     `json:"audio"`
	Video     VideoConfig     `json:"video"`
	Window    WindowConfig    `json:"window"`
	Input     InputConfig     `json:"input"`
	Recording RecordingConfig `json:"recording"`
}

// AudioConfig contains audio-related settings
type AudioConfig struct {
	SampleRate            int     `json:"sampleRate"`            // Output rate in Hz, default 32000
	BufferCapacitySamples int     `json:"bufferCapacitySamples"` // Ring buffer size, default one second
	NumChannels           int     `json:"numChannels"`           // Only 1 is supported
	Gain                  float64 `json:"gain"`                  // Applied to every accepted sample
	Volume                float64 `json:"volume"`                // Device volume 0.0-2.0
	Muted                 bool    `json:"muted"`
}

// VideoConfig contains video-related settings
type VideoConfig struct {
	Region    string `json:"region"`    // "ntsc" or "pal"
	ShowStats bool   `json:"showStats"` // Diagnostics overlay visible at start
}

// WindowConfig contains window position and size
type WindowConfig struct {
	Width      int  `json:"width"`
	Height     int  `json:"height"`
	X          *int `json:"x,omitempty"` // nil = OS decides position
	Y          *int `json:"y,omitempty"`
	Fullscreen bool `json:"fullscreen"`
}

// InputConfig contains input binding overrides for P1 keyboard and controller.
// Empty/nil maps mean "use defaults." Only user overrides are stored.
type InputConfig struct {
	P1Keyboard         map[string]string `json:"p1Keyboard,omitempty"`         // button name -> key name override
	P1Controller       map[string]string `json:"p1Controller,omitempty"`       // button name -> pad button name override
	DisableAnalogStick bool              `json:"disableAnalogStick,omitempty"` // disable analog stick mirroring d-pad
}

// RecordingConfig contains audio capture settings
type RecordingConfig struct {
	WAVPath string `json:"wavPath,omitempty"` // Empty disables recording
}

// DefaultConfig returns a new Config with default values
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Audio: AudioConfig{
			SampleRate:            audio.DefaultSampleRate,
			BufferCapacitySamples: audio.DefaultSampleRate,
			NumChannels:           1,
			Gain:                  1.0,
			Volume:                1.0,
			Muted:                 false,
		},
		Video: VideoConfig{
			Region: "ntsc",
		},
		Window: WindowConfig{
			Width:  768,
			Height: 720,
			X:      nil,
			Y:      nil,
		},
		Input: InputConfig{},
	}
}

// AudioConfig converts the stored audio settings into the audio path
// configuration.
func (c *Config) AudioConfig() audio.Config {
	return audio.Config{
		SampleRate:            c.Audio.SampleRate,
		BufferCapacitySamples: c.Audio.BufferCapacitySamples,
		NumChannels:           c.Audio.NumChannels,
		Gain:                  float32(c.Audio.Gain),
	}
}

// OutputVolume returns the device volume, 0 when muted.
func (c *Config) OutputVolume() float64 {
	if c.Audio.Muted {
		return 0
	}
	return c.Audio.Volume
}
