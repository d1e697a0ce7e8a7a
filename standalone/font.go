package standalone

import (
	"bytes"
	"log"
	"sync"

	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/goregular"
)

const defaultFontSize = 14

var (
	fontOnce   sync.Once
	fontSource *text.GoTextFaceSource
)

// loadFontSource loads the shared GoTextFaceSource from goregular.TTF (once)
func loadFontSource() *text.GoTextFaceSource {
	fontOnce.Do(func() {
		source, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
		if err != nil {
			log.Printf("Failed to load font source: %v", err)
			return
		}
		fontSource = source
	})
	return fontSource
}

// fontFace returns a face of the given size, or nil if the font failed to load.
func fontFace(size float64) text.Face {
	source := loadFontSource()
	if source == nil {
		return nil
	}
	return &text.GoTextFace{Source: source, Size: size}
}
