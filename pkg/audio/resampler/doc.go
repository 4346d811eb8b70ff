// Package resampler converts float32 mono audio between sample rates using
// a pure Go resampler (no CGO/FFI dependencies).
//
// Example usage:
//
//	out, err := resampler.Resample(samples, 24000, 16000)
//	if err != nil {
//	    return err
//	}
package resampler
