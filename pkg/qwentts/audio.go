package qwentts

import (
	"fmt"
	"time"
)

// Audio is the output of one generation call: mono float samples in [-1, 1]
// and the rate they were produced at.
type Audio struct {
	Samples    []float32
	SampleRate int
}

// Validate checks that samples and sample rate are both present.
func (a *Audio) Validate() error {
	if a == nil {
		return fmt.Errorf("%w: nil result", ErrEmptyAudio)
	}
	if len(a.Samples) == 0 {
		return fmt.Errorf("%w: no samples", ErrEmptyAudio)
	}
	if a.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrEmptyAudio, a.SampleRate)
	}
	return nil
}

// Duration returns the playback length of the samples.
func (a *Audio) Duration() time.Duration {
	if a == nil || a.SampleRate <= 0 {
		return 0
	}
	return time.Duration(len(a.Samples)) * time.Second / time.Duration(a.SampleRate)
}
