package emucore

import (
	"math"
	"testing"
)

func TestDisplayAspectRatio(t *testing.T) {
	tests := []struct {
		name     string
		width    int
		height   int
		par      float64
		expected float64
	}{
		{
			name:     "SNES 224 lines",
			width:    256,
			height:   224,
			par:      8.0 / 7.0,
			expected: (256.0 / 224.0) * (8.0 / 7.0),
		},
		{
			name:     "SNES 240 lines",
			width:    256,
			height:   240,
			par:      8.0 / 7.0,
			expected: (256.0 / 240.0) * (8.0 / 7.0),
		},
		{
			name:     "Square pixels",
			width:    320,
			height:   240,
			par:      1.0,
			expected: 320.0 / 240.0,
		},
		{
			name:     "Zero height",
			width:    320,
			height:   0,
			par:      1.0,
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DisplayAspectRatio(tt.width, tt.height, tt.par)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("DisplayAspectRatio(%d, %d, %f) = %f, want %f",
					tt.width, tt.height, tt.par, got, tt.expected)
			}
		})
	}
}

func TestSystemInfoFrameSize(t *testing.T) {
	info := SystemInfo{ScreenWidth: 256, ScreenHeight: 240}
	if got := info.FrameSize(); got != 256*240*4 {
		t.Fatalf("FrameSize() = %d, want %d", got, 256*240*4)
	}
	if got := info.AspectRatio(); math.Abs(got-256.0/240.0) > 1e-9 {
		t.Fatalf("AspectRatio() with zero PAR = %f, want %f", got, 256.0/240.0)
	}
}

func TestStandardButtonsCoverEveryButton(t *testing.T) {
	seen := make(map[ButtonID]bool)
	for _, b := range StandardButtons {
		if seen[b.ID] {
			t.Fatalf("button %v listed twice", b.ID)
		}
		seen[b.ID] = true
		if b.DefaultKey == "" || b.DefaultPad == "" {
			t.Errorf("button %v missing default binding", b.ID)
		}
	}
	if len(seen) != NumButtons {
		t.Fatalf("StandardButtons covers %d buttons, want %d", len(seen), NumButtons)
	}
}

func TestRegionTiming(t *testing.T) {
	tests := []struct {
		region Region
		fps    int
		per    int
	}{
		{RegionNTSC, 60, 533},
		{RegionPAL, 50, 640},
	}
	for _, tt := range tests {
		timing := tt.region.Timing()
		if timing.FPS != tt.fps {
			t.Errorf("%v FPS = %d, want %d", tt.region, timing.FPS, tt.fps)
		}
		if got := timing.SamplesPerFrame(32000); got != tt.per {
			t.Errorf("%v SamplesPerFrame(32000) = %d, want %d", tt.region, got, tt.per)
		}
	}
}

func TestParseRegion(t *testing.T) {
	if r, err := ParseRegion("PAL"); err != nil || r != RegionPAL {
		t.Fatalf("ParseRegion(PAL) = %v, %v", r, err)
	}
	if r, err := ParseRegion("ntsc"); err != nil || r != RegionNTSC {
		t.Fatalf("ParseRegion(ntsc) = %v, %v", r, err)
	}
	if _, err := ParseRegion("secam"); err == nil {
		t.Fatal("expected error for unknown region")
	}
}
