package storage

import (
	"encoding/json"
	"fmt"
)

const (
	minWidth  = 256
	minHeight = 240
)

// configKeys lists the dotted-path keys that have defaults and validation
// rules, grouped by section.
var configKeys = map[string][]string{
	"audio":  {"sampleRate", "bufferCapacitySamples", "numChannels", "gain", "volume"},
	"video":  {"region"},
	"window": {"width", "height"},
}

// detectPresentKeys unmarshals JSON bytes to determine which config keys
// are explicitly present in the file. Returns a flat set of dotted-path keys
// (e.g., "audio.volume", "window.width").
func detectPresentKeys(jsonBytes []byte) map[string]bool {
	present := make(map[string]bool)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(jsonBytes, &raw); err != nil {
		return present
	}

	if _, ok := raw["version"]; ok {
		present["version"] = true
	}

	for section, keys := range configKeys {
		sectionRaw, ok := raw[section]
		if !ok {
			continue
		}
		var fields map[string]json.RawMessage
		if json.Unmarshal(sectionRaw, &fields) != nil {
			continue
		}
		for _, k := range keys {
			if _, ok := fields[k]; ok {
				present[section+"."+k] = true
			}
		}
	}

	return present
}

// ApplyMissingDefaults sets default values for config fields that are absent
// from the JSON file. Only truly missing fields get defaults, preserving
// intentional zero values (e.g., volume=0).
func ApplyMissingDefaults(config *Config, presentKeys map[string]bool) {
	defaults := DefaultConfig()

	if !presentKeys["version"] {
		config.Version = defaults.Version
	}
	if !presentKeys["audio.sampleRate"] {
		config.Audio.SampleRate = defaults.Audio.SampleRate
	}
	if !presentKeys["audio.bufferCapacitySamples"] {
		// One second at whatever rate is in effect.
		config.Audio.BufferCapacitySamples = config.Audio.SampleRate
	}
	if !presentKeys["audio.numChannels"] {
		config.Audio.NumChannels = defaults.Audio.NumChannels
	}
	if !presentKeys["audio.gain"] {
		config.Audio.Gain = defaults.Audio.Gain
	}
	if !presentKeys["audio.volume"] {
		config.Audio.Volume = defaults.Audio.Volume
	}
	if !presentKeys["video.region"] {
		config.Video.Region = defaults.Video.Region
	}
	if !presentKeys["window.width"] {
		config.Window.Width = defaults.Window.Width
	}
	if !presentKeys["window.height"] {
		config.Window.Height = defaults.Window.Height
	}
}

func validRegion(r string) bool {
	return r == "ntsc" || r == "pal"
}

// ValidateAudio checks the settings that build the audio path: sample rate,
// buffer capacity, channel count and gain. These are never corrected; any
// returned error wraps audio.ErrInvalidConfig.
func ValidateAudio(config *Config) error {
	return config.AudioConfig().Validate()
}

// ValidateConfig checks the correctable fields against valid ranges and
// returns human-readable error descriptions. An empty slice means they are
// valid. Audio path settings are left to ValidateAudio.
func ValidateConfig(config *Config) []string {
	var errors []string

	// version
	if config.Version != 1 {
		errors = append(errors, fmt.Sprintf("version: %d (valid: 1)", config.Version))
	}

	// audio.volume
	if config.Audio.Volume < 0 || config.Audio.Volume > 2.0 {
		errors = append(errors, fmt.Sprintf("audio.volume: %.2f (valid: 0.0-2.0)", config.Audio.Volume))
	}

	// video.region
	if !validRegion(config.Video.Region) {
		errors = append(errors, fmt.Sprintf("video.region: %q (valid: \"ntsc\", \"pal\")", config.Video.Region))
	}

	// window.width
	if config.Window.Width < minWidth {
		errors = append(errors, fmt.Sprintf("window.width: %d (valid: >= %d)", config.Window.Width, minWidth))
	}

	// window.height
	if config.Window.Height < minHeight {
		errors = append(errors, fmt.Sprintf("window.height: %d (valid: >= %d)", config.Window.Height, minHeight))
	}

	return errors
}

// CorrectConfig resets any invalid correctable fields to their defaults from
// DefaultConfig(). Valid fields and audio path settings are preserved.
func CorrectConfig(config *Config) *Config {
	defaults := DefaultConfig()

	if config.Version != 1 {
		config.Version = defaults.Version
	}
	if config.Audio.Volume < 0 || config.Audio.Volume > 2.0 {
		config.Audio.Volume = defaults.Audio.Volume
	}
	if !validRegion(config.Video.Region) {
		config.Video.Region = defaults.Video.Region
	}
	if config.Window.Width < minWidth {
		config.Window.Width = defaults.Window.Width
	}
	if config.Window.Height < minHeight {
		config.Window.Height = defaults.Window.Height
	}

	return config
}
