// Package audio groups the audio helpers used to turn model output into
// files:
//
//   - pcm: 16-bit linear PCM formats and float32 conversion
//   - resampler: sample rate conversion of float32 mono audio
//   - wav: WAV encoding and decoding
package audio
