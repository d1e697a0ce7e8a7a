package engine

import (
	"context"
	"errors"
	"hash/crc32"
	"math"

	emucore "github.com/user-none/snesfront/api"
)

const (
	// ScreenWidth and ScreenHeight are the fixed output size of every core.
	ScreenWidth  = 256
	ScreenHeight = 240

	toneBaseHz    = 220.0
	toneAmplitude = 0.25
	paletteSize   = 8
	cursorSize    = 16
	cursorSpeed   = 2
)

// ErrEmptyROM is returned when a core is created without program data.
var ErrEmptyROM = errors.New("empty ROM")

// TestCore is a deterministic stand-in machine. Each frame it draws scrolling
// color bars with a cursor moved by the d-pad and one lamp per pressed
// button, and produces a sine tone whose pitch rises with every held button.
// The ROM bytes choose the bar palette.
type TestCore struct {
	timing          emucore.Timing
	sampleRate      int
	samplesPerFrame int
	palette         [paletteSize][3]byte

	frame   uint64
	phase   float64
	cursorX int
	cursorY int

	video []byte
	audio []float32
}

// NewTestCore creates a test core for rom at the given region and sample
// rate.
func NewTestCore(rom []byte, region emucore.Region, sampleRate int) (*TestCore, error) {
	if len(rom) == 0 {
		return nil, ErrEmptyROM
	}
	if sampleRate <= 0 {
		return nil, errors.New("sample rate must be > 0")
	}

	timing := region.Timing()
	c := &TestCore{
		timing:          timing,
		sampleRate:      sampleRate,
		samplesPerFrame: timing.SamplesPerFrame(sampleRate),
		video:           make([]byte, ScreenWidth*ScreenHeight*4),
	}
	c.audio = make([]float32, c.samplesPerFrame)
	c.palette = paletteFromROM(rom)
	c.reset()
	return c, nil
}

// paletteFromROM derives the bar colors from the ROM checksum.
func paletteFromROM(rom []byte) [paletteSize][3]byte {
	var p [paletteSize][3]byte
	seed := crc32.ChecksumIEEE(rom)
	for i := range p {
		// xorshift32
		seed ^= seed << 13
		seed ^= seed >> 17
		seed ^= seed << 5
		p[i] = [3]byte{byte(seed), byte(seed >> 8), byte(seed >> 16)}
	}
	return p
}

func (c *TestCore) reset() {
	c.frame = 0
	c.phase = 0
	c.cursorX = (ScreenWidth - cursorSize) / 2
	c.cursorY = (ScreenHeight - cursorSize) / 2
}

// Frame returns the number of frames run since creation or the last reset.
func (c *TestCore) Frame() uint64 {
	return c.frame
}

// SamplesPerFrame returns the audio batch size of every frame.
func (c *TestCore) SamplesPerFrame() int {
	return c.samplesPerFrame
}

// Step implements emucore.Engine. The returned slices are reused by the
// next Step.
func (c *TestCore) Step(_ context.Context, in emucore.Input) (emucore.FrameResult, error) {
	if in.Reset {
		c.reset()
	}

	p1 := in.Controllers[0]
	c.moveCursor(p1)
	c.drawFrame(p1)
	c.renderTone(p1)
	c.frame++

	return emucore.FrameResult{Video: c.video, Audio: c.audio}, nil
}

func (c *TestCore) moveCursor(p1 emucore.ControllerState) {
	if p1.Left {
		c.cursorX -= cursorSpeed
	}
	if p1.Right {
		c.cursorX += cursorSpeed
	}
	if p1.Up {
		c.cursorY -= cursorSpeed
	}
	if p1.Down {
		c.cursorY += cursorSpeed
	}
	c.cursorX = clamp(c.cursorX, 0, ScreenWidth-cursorSize)
	c.cursorY = clamp(c.cursorY, 0, ScreenHeight-cursorSize)
}

func (c *TestCore) drawFrame(p1 emucore.ControllerState) {
	const barWidth = ScreenWidth / paletteSize
	scroll := int(c.frame % ScreenWidth)

	for y := 0; y < ScreenHeight; y++ {
		row := c.video[y*ScreenWidth*4:]
		for x := 0; x < ScreenWidth; x++ {
			col := c.palette[((x+scroll)/barWidth)%paletteSize]
			o := x * 4
			row[o] = col[0]
			row[o+1] = col[1]
			row[o+2] = col[2]
			row[o+3] = 0xFF
		}
	}

	c.fillRect(c.cursorX, c.cursorY, cursorSize, cursorSize, [3]byte{0xFF, 0xFF, 0xFF})

	// Button lamps along the bottom edge.
	const lamp = ScreenWidth / emucore.NumButtons
	for i, id := range emucore.AllButtons {
		col := [3]byte{0x20, 0x20, 0x20}
		if p1.Pressed(id) {
			col = [3]byte{0xFF, 0x40, 0x40}
		}
		c.fillRect(i*lamp+1, ScreenHeight-lamp, lamp-2, lamp-2, col)
	}
}

func (c *TestCore) fillRect(x0, y0, w, h int, col [3]byte) {
	for y := y0; y < y0+h && y < ScreenHeight; y++ {
		for x := x0; x < x0+w && x < ScreenWidth; x++ {
			o := (y*ScreenWidth + x) * 4
			c.video[o] = col[0]
			c.video[o+1] = col[1]
			c.video[o+2] = col[2]
			c.video[o+3] = 0xFF
		}
	}
}

func (c *TestCore) renderTone(p1 emucore.ControllerState) {
	held := 0
	for _, id := range emucore.AllButtons {
		if p1.Pressed(id) {
			held++
		}
	}
	freq := toneBaseHz * math.Pow(2, float64(held)/12)
	step := 2 * math.Pi * freq / float64(c.sampleRate)

	for i := range c.audio {
		c.audio[i] = float32(toneAmplitude * math.Sin(c.phase))
		c.phase += step
		if c.phase >= 2*math.Pi {
			c.phase -= 2 * math.Pi
		}
	}
}

// Close implements emucore.Engine.
func (c *TestCore) Close() error {
	return nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
