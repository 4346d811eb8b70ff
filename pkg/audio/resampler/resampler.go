package resampler

import (
	"errors"
	"fmt"
	"math"

	resampling "github.com/tphakala/go-audio-resampling"
)

// ErrInvalidRate is returned for a non-positive sample rate.
var ErrInvalidRate = errors.New("resampler: invalid sample rate")

// Resampler converts whole buffers of mono float32 audio from one rate to
// another. It is not safe for concurrent use.
type Resampler struct {
	srcRate int
	dstRate int
	rs      resampling.Resampler
}

// New creates a Resampler from srcRate to dstRate.
func New(srcRate, dstRate int) (*Resampler, error) {
	if srcRate <= 0 || dstRate <= 0 {
		return nil, fmt.Errorf("%w: %d -> %d", ErrInvalidRate, srcRate, dstRate)
	}
	r := &Resampler{srcRate: srcRate, dstRate: dstRate}
	if srcRate == dstRate {
		return r, nil
	}
	config := &resampling.Config{
		InputRate:  float64(srcRate),
		OutputRate: float64(dstRate),
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	}
	rs, err := resampling.New(config)
	if err != nil {
		return nil, fmt.Errorf("resampler: create: %w", err)
	}
	r.rs = rs
	return r, nil
}

// OutputLen returns the number of samples n input samples turn into.
func (r *Resampler) OutputLen(n int) int {
	return int(math.Round(float64(n) * float64(r.dstRate) / float64(r.srcRate)))
}

// Process resamples one complete buffer. The input is followed by a short
// run of silence so the filter tail is flushed, and the result is cut or
// padded to exactly OutputLen(len(samples)).
func (r *Resampler) Process(samples []float32) ([]float32, error) {
	if r.rs == nil {
		return append([]float32(nil), samples...), nil
	}
	if len(samples) == 0 {
		return nil, nil
	}

	// 50ms of padding covers the filter delay at the high quality preset.
	pad := r.srcRate / 20
	input := make([]float64, len(samples)+pad)
	for i, s := range samples {
		input[i] = float64(s)
	}
	output, err := r.rs.Process(input)
	if err != nil {
		return nil, fmt.Errorf("resampler: process: %w", err)
	}

	want := r.OutputLen(len(samples))
	out := make([]float32, want)
	for i := 0; i < want && i < len(output); i++ {
		out[i] = float32(output[i])
	}
	return out, nil
}

// Resample converts samples from srcRate to dstRate.
func Resample(samples []float32, srcRate, dstRate int) ([]float32, error) {
	r, err := New(srcRate, dstRate)
	if err != nil {
		return nil, err
	}
	return r.Process(samples)
}
