package audio

import (
	"fmt"
	"os"
	"sync"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// wavBitDepth is the PCM depth of recordings.
const wavBitDepth = 16

// wavFormatPCM is the WAVE_FORMAT_PCM tag.
const wavFormatPCM = 1

// WAVRecorder streams accepted samples to a 16-bit mono PCM WAV file. It is
// fed from the producer side, after validation and gain, so it records
// exactly what was written to the ring buffer.
type WAVRecorder struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	enc    *wav.Encoder
	buf    *goaudio.IntBuffer
	frames int
	closed bool
}

// NewWAVRecorder creates path and writes the WAV header for sampleRate.
func NewWAVRecorder(path string, sampleRate int) (*WAVRecorder, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: wav sample rate %d", ErrInvalidConfig, sampleRate)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("wav recorder: %w", err)
	}

	return &WAVRecorder{
		path: path,
		file: f,
		enc:  wav.NewEncoder(f, sampleRate, wavBitDepth, 1, wavFormatPCM),
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
			SourceBitDepth: wavBitDepth,
		},
	}, nil
}

// Path returns the file being written.
func (r *WAVRecorder) Path() string {
	return r.path
}

// Record appends samples. Values are clamped to [-1.0, 1.0] before
// conversion since gain may push accepted samples past full scale.
func (r *WAVRecorder) Record(samples []float32) error {
	if len(samples) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return fmt.Errorf("wav recorder: %s already closed", r.path)
	}

	data := r.buf.Data[:0]
	for _, s := range samples {
		data = append(data, floatToPCM16(s))
	}
	r.buf.Data = data

	if err := r.enc.Write(r.buf); err != nil {
		return fmt.Errorf("wav recorder: %w", err)
	}
	r.frames += len(samples)
	return nil
}

// Frames returns the number of samples recorded so far.
func (r *WAVRecorder) Frames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

// Close finalizes the WAV header and closes the file.
func (r *WAVRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true

	encErr := r.enc.Close()
	fileErr := r.file.Close()
	if encErr != nil {
		return fmt.Errorf("wav recorder: %w", encErr)
	}
	if fileErr != nil {
		return fmt.Errorf("wav recorder: %w", fileErr)
	}
	return nil
}

func floatToPCM16(s float32) int {
	if s > 1 {
		s = 1
	} else if s < -1 {
		s = -1
	} else if s != s {
		s = 0
	}
	return int(s * 32767)
}
