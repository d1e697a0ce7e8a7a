package standalone

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSaveScreenshot(t *testing.T) {
	dir := t.TempDir()
	pixels := []byte{
		0xFF, 0x00, 0x00, 0x00, 0x00, 0xFF, 0x00, 0x00,
		0x00, 0x00, 0xFF, 0x00, 0x10, 0x20, 0x30, 0x00,
	}
	when := time.Unix(1700000000, 0)

	path, err := SaveScreenshot(dir, "DEADBEEF", pixels, 2, 2, when)
	if err != nil {
		t.Fatalf("SaveScreenshot: %v", err)
	}
	if want := filepath.Join(dir, "DEADBEEF", "1700000000.png"); path != want {
		t.Fatalf("path %q, want %q", path, want)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 2 || b.Dy() != 2 {
		t.Fatalf("unexpected bounds %v", b)
	}
	r, g, b, a := img.At(1, 1).RGBA()
	if r>>8 != 0x10 || g>>8 != 0x20 || b>>8 != 0x30 || a>>8 != 0xFF {
		t.Errorf("pixel (1,1) = %x %x %x %x", r>>8, g>>8, b>>8, a>>8)
	}
}

func TestSaveScreenshotNoCRC(t *testing.T) {
	dir := t.TempDir()
	path, err := SaveScreenshot(dir, "", make([]byte, 4), 1, 1, time.Unix(5, 0))
	if err != nil {
		t.Fatalf("SaveScreenshot: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("expected file directly in %s, got %s", dir, path)
	}
}

func TestSaveScreenshotShortFrame(t *testing.T) {
	if _, err := SaveScreenshot(t.TempDir(), "", make([]byte, 3), 1, 1, time.Now()); err == nil {
		t.Fatal("expected error for short frame")
	}
}
