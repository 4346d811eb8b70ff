// Package pcm provides types and utilities for working with 16-bit linear
// PCM audio.
//
// Models produce float32 samples in [-1, 1]. Format describes the raw L16
// layouts the tools can emit, and Float32ToL16 / L16ToFloat32 convert between
// the two representations.
//
// Example usage:
//
//	format, err := pcm.FormatForRate(24000)
//	if err != nil {
//	    return err
//	}
//	chunk := format.Float32Chunk(samples)
//	chunk.WriteTo(w)
package pcm
