package standalone

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"
)

// SaveScreenshot writes an RGBA frame as a PNG named by Unix timestamp under
// dir/gameCRC and returns the file path.
func SaveScreenshot(dir, gameCRC string, pixels []byte, width, height int, when time.Time) (string, error) {
	if width <= 0 || height <= 0 || len(pixels) < width*height*4 {
		return "", fmt.Errorf("screenshot: frame is %d bytes, need %dx%d RGBA", len(pixels), width, height)
	}

	screenshotDir := dir
	if gameCRC != "" {
		screenshotDir = filepath.Join(dir, gameCRC)
	}
	if err := os.MkdirAll(screenshotDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create screenshot directory: %w", err)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	copy(img.Pix, pixels[:width*height*4])
	// The frame is opaque whatever the core wrote to alpha.
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xFF
	}

	fullPath := filepath.Join(screenshotDir, fmt.Sprintf("%d.png", when.Unix()))
	f, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create screenshot file: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return "", fmt.Errorf("failed to encode screenshot: %w", err)
	}
	return fullPath, nil
}
