package audio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
)

func TestWAVRecorder_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")

	rec, err := NewWAVRecorder(path, 32000)
	if err != nil {
		t.Fatalf("NewWAVRecorder: %v", err)
	}
	if err := rec.Record([]float32{0, 0.5, -0.5}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := rec.Record([]float32{1, 2, -2}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if rec.Frames() != 6 {
		t.Fatalf("expected 6 frames, got %d", rec.Frames())
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		t.Fatal("recorded file is not a valid wav")
	}
	if dec.SampleRate != 32000 || dec.NumChans != 1 || dec.BitDepth != 16 {
		t.Fatalf("unexpected format: %d Hz, %d ch, %d bit", dec.SampleRate, dec.NumChans, dec.BitDepth)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("FullPCMBuffer: %v", err)
	}
	want := []int{0, 16383, -16383, 32767, 32767, -32767}
	if len(buf.Data) != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), len(buf.Data))
	}
	for i := range want {
		if buf.Data[i] != want[i] {
			t.Fatalf("sample %d: expected %d, got %d", i, want[i], buf.Data[i])
		}
	}
}

func TestWAVRecorder_RecordAfterClose(t *testing.T) {
	rec, err := NewWAVRecorder(filepath.Join(t.TempDir(), "x.wav"), 32000)
	if err != nil {
		t.Fatalf("NewWAVRecorder: %v", err)
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("second Close should be a no-op, got %v", err)
	}
	if err := rec.Record([]float32{0.1}); err == nil {
		t.Fatal("expected error recording after close")
	}
}

func TestWAVRecorder_InvalidRate(t *testing.T) {
	if _, err := NewWAVRecorder(filepath.Join(t.TempDir(), "x.wav"), 0); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
}
