package audio

import (
	"errors"
	"fmt"
)

// ErrOutOfRange is matched by errors returned from Validate when a batch
// contains a sample outside [-1.0, 1.0].
var ErrOutOfRange = errors.New("audio sample out of range")

// OutOfRangeError reports the first illegal sample of a batch.
type OutOfRangeError struct {
	Index int
	Value float32
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("audio sample %d out of range: %v", e.Index, e.Value)
}

// Is makes errors.Is(err, ErrOutOfRange) true.
func (e *OutOfRangeError) Is(target error) bool {
	return target == ErrOutOfRange
}

// Validate checks a batch of raw samples and applies gain. The scaled
// samples are appended to dst[:0], so callers can reuse one scratch slice
// across batches.
//
// A batch with any sample above 1.0, below -1.0 or NaN is rejected as a
// whole: the error is an *OutOfRangeError and dst[:0] is returned.
func Validate(dst, samples []float32, gain float32) ([]float32, error) {
	dst = dst[:0]
	for i, s := range samples {
		// Written so that NaN fails too.
		if !(s >= -1.0 && s <= 1.0) {
			return dst, &OutOfRangeError{Index: i, Value: s}
		}
	}
	for _, s := range samples {
		dst = append(dst, s*gain)
	}
	return dst, nil
}
