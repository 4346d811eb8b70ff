// Package wav encodes and decodes mono 16-bit PCM WAV files.
package wav

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/up-zero/gotool/fileutil"
	"github.com/up-zero/gotool/mediautil"
)

const (
	channels      = 1
	bitsPerSample = 16
	headerSize    = 44
)

// ContentType is the MIME type of encoded files.
const ContentType = "audio/wav"

// ErrEmpty is returned when there is nothing to encode.
var ErrEmpty = errors.New("wav: no samples")

// Encode encodes float32 samples in [-1, 1] as a 16-bit mono WAV file.
func Encode(samples []float32, sampleRate int) ([]byte, error) {
	if len(samples) == 0 {
		return nil, ErrEmpty
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("wav: invalid sample rate %d", sampleRate)
	}
	data, err := mediautil.Float32ToWavBytes(samples, sampleRate, channels, bitsPerSample)
	if err != nil {
		return nil, fmt.Errorf("wav: encode: %w", err)
	}
	return data, nil
}

// WriteFile encodes samples and writes them to path, creating parent
// directories as needed.
func WriteFile(path string, samples []float32, sampleRate int) error {
	data, err := Encode(samples, sampleRate)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("wav: create dir: %w", err)
		}
	}
	if err := fileutil.FileSave(path, data); err != nil {
		return fmt.Errorf("wav: save %s: %w", path, err)
	}
	return nil
}

// Decode converts any PCM WAV file to mono 16-bit at sampleRate and returns
// its samples as float32.
func Decode(data []byte, sampleRate int) ([]float32, error) {
	out, err := mediautil.ReformatWavBytes(data, sampleRate, channels, bitsPerSample)
	if err != nil {
		return nil, fmt.Errorf("wav: decode: %w", err)
	}
	if len(out) < headerSize {
		return nil, fmt.Errorf("wav: decode: short file (%d bytes)", len(out))
	}
	samples, err := mediautil.PcmBytesToFloat32(out[headerSize:], bitsPerSample)
	if err != nil {
		return nil, fmt.Errorf("wav: decode: %w", err)
	}
	return samples, nil
}

// ReadFile reads and decodes the WAV file at path.
func ReadFile(path string, sampleRate int) ([]float32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("wav: %w", err)
	}
	return Decode(data, sampleRate)
}
