package standalone

import (
	"image"
	"image/color"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
)

const (
	notificationPadding = 12
	notificationMargin  = 8
)

var (
	overlayBackground = color.RGBA{0x10, 0x10, 0x18, 153} // 60% opacity
	overlayText       = color.RGBA{0xF0, 0xF0, 0xF0, 0xFF}
)

// Notification displays temporary messages on screen. Show may be called
// from any goroutine; Draw only from ebiten's Draw.
type Notification struct {
	mu        sync.Mutex
	message   string
	startTime time.Time
	duration  time.Duration
	now       func() time.Time

	// Pre-allocated images for rendering (avoid per-frame allocations)
	face text.Face
	bg   *ebiten.Image
}

// NewNotification creates a new notification system
func NewNotification() *Notification {
	return &Notification{now: time.Now}
}

// Show displays a notification message
func (n *Notification) Show(message string, duration time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.message = message
	n.startTime = n.now()
	n.duration = duration
}

// ShowDefault displays a notification with default 3 second duration
func (n *Notification) ShowDefault(message string) {
	n.Show(message, 3*time.Second)
}

// ShowShort displays a notification with 1 second duration
func (n *Notification) ShowShort(message string) {
	n.Show(message, 1*time.Second)
}

// Current returns the visible message, or "" when nothing is shown.
func (n *Notification) Current() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.message == "" || n.now().Sub(n.startTime) >= n.duration {
		return ""
	}
	return n.message
}

// IsVisible returns whether the notification is currently visible
func (n *Notification) IsVisible() bool {
	return n.Current() != ""
}

// Clear removes the current notification
func (n *Notification) Clear() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.message = ""
}

// Draw renders the notification in the bottom-right corner
func (n *Notification) Draw(screen *ebiten.Image) {
	message := n.Current()
	if message == "" {
		return
	}
	if n.face == nil {
		n.face = fontFace(defaultFontSize)
		if n.face == nil {
			return
		}
	}

	bounds := screen.Bounds()
	textWidth, textHeight := text.Measure(message, n.face, 0)

	bgWidth := int(textWidth) + notificationPadding*2
	bgHeight := int(textHeight) + notificationPadding*2
	bgX := bounds.Dx() - bgWidth - notificationMargin
	bgY := bounds.Dy() - bgHeight - notificationMargin

	// Reuse or create background image
	if n.bg == nil || n.bg.Bounds().Dx() < bgWidth || n.bg.Bounds().Dy() < bgHeight {
		n.bg = ebiten.NewImage(bgWidth, bgHeight)
		n.bg.Fill(overlayBackground)
	}

	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Translate(float64(bgX), float64(bgY))
	screen.DrawImage(n.bg.SubImage(image.Rect(0, 0, bgWidth, bgHeight)).(*ebiten.Image), opts)

	textOpts := &text.DrawOptions{}
	textOpts.GeoM.Translate(float64(bgX+notificationPadding), float64(bgY+notificationPadding))
	textOpts.ColorScale.ScaleWithColor(overlayText)
	text.Draw(screen, message, n.face, textOpts)
}
