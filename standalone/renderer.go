package standalone

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// FramebufferRenderer owns the ebiten offscreen buffer and draws the
// emulated frame scaled to the window at the system's display aspect ratio.
type FramebufferRenderer struct {
	width     int
	height    int
	aspect    float64 // Display aspect ratio of the whole frame
	offscreen *ebiten.Image
	drawOpts  ebiten.DrawImageOptions
}

// NewFramebufferRenderer creates a renderer for frames of the given native
// size. aspect is the display aspect ratio; 0 means square pixels.
func NewFramebufferRenderer(width, height int, aspect float64) *FramebufferRenderer {
	if aspect <= 0 && height > 0 {
		aspect = float64(width) / float64(height)
	}
	return &FramebufferRenderer{
		width:  width,
		height: height,
		aspect: aspect,
	}
}

// DrawFramebuffer renders RGBA pixel data to the screen, letterboxed and
// centered.
func (r *FramebufferRenderer) DrawFramebuffer(screen *ebiten.Image, pixels []byte) {
	requiredLen := r.width * r.height * 4
	if requiredLen == 0 || len(pixels) < requiredLen {
		return
	}

	if r.offscreen == nil {
		r.offscreen = ebiten.NewImage(r.width, r.height)
	}
	r.offscreen.WritePixels(pixels[:requiredLen])

	bounds := screen.Bounds()
	sx, sy, ox, oy := fitFrame(bounds.Dx(), bounds.Dy(), r.width, r.height, r.aspect)

	r.drawOpts = ebiten.DrawImageOptions{}
	r.drawOpts.GeoM.Scale(sx, sy)
	r.drawOpts.GeoM.Translate(ox, oy)
	r.drawOpts.Filter = ebiten.FilterNearest
	screen.DrawImage(r.offscreen, &r.drawOpts)
}

// fitFrame returns the scale and offset that fit a srcW x srcH frame with
// display aspect ratio aspect inside a screenW x screenH target.
func fitFrame(screenW, screenH, srcW, srcH int, aspect float64) (scaleX, scaleY, offsetX, offsetY float64) {
	if srcW == 0 || srcH == 0 || aspect <= 0 {
		return 1, 1, 0, 0
	}

	outW := float64(screenW)
	outH := outW / aspect
	if outH > float64(screenH) {
		outH = float64(screenH)
		outW = outH * aspect
	}

	scaleX = outW / float64(srcW)
	scaleY = outH / float64(srcH)
	offsetX = (float64(screenW) - outW) / 2
	offsetY = (float64(screenH) - outH) / 2
	return
}
