package emucore

import (
	"fmt"
	"strings"
)

// Region represents a console video region.
type Region int

const (
	RegionNTSC Region = iota
	RegionPAL
)

// String returns the display name of the region.
func (r Region) String() string {
	switch r {
	case RegionNTSC:
		return "NTSC"
	case RegionPAL:
		return "PAL"
	default:
		return "Unknown"
	}
}

// Timing returns the frame rate and scanline count of the region.
func (r Region) Timing() Timing {
	if r == RegionPAL {
		return Timing{FPS: 50, Scanlines: 312}
	}
	return Timing{FPS: 60, Scanlines: 262}
}

// ParseRegion converts "ntsc" or "pal" (case-insensitive) to a Region.
func ParseRegion(s string) (Region, error) {
	switch strings.ToLower(s) {
	case "ntsc", "":
		return RegionNTSC, nil
	case "pal":
		return RegionPAL, nil
	default:
		return 0, fmt.Errorf("unknown region %q: use ntsc or pal", s)
	}
}

// Timing holds the frame rate and scanline count for the current region.
// CPU clocks are core-internal and not exposed here.
type Timing struct {
	FPS       int
	Scanlines int
}

// SamplesPerFrame returns how many audio samples one frame spans at the
// given sample rate.
func (t Timing) SamplesPerFrame(sampleRate int) int {
	if t.FPS <= 0 {
		return 0
	}
	return sampleRate / t.FPS
}
