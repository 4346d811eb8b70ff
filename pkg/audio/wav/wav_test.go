package wav

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestEncodeHeader(t *testing.T) {
	data, err := Encode([]float32{0, 0.5, -0.5, 0.25}, 24000)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("RIFF")) || !bytes.Equal(data[8:12], []byte("WAVE")) {
		t.Errorf("missing RIFF/WAVE header: % x", data[:12])
	}
	if got, want := len(data), headerSize+4*2; got != want {
		t.Errorf("len = %d, want %d", got, want)
	}
}

func TestEncodeErrors(t *testing.T) {
	if _, err := Encode(nil, 24000); !errors.Is(err, ErrEmpty) {
		t.Errorf("Encode(nil) error = %v", err)
	}
	if _, err := Encode([]float32{0}, 0); err == nil {
		t.Error("Encode with zero rate should fail")
	}
}

func TestWriteAndReadFile(t *testing.T) {
	in := make([]float32, 2400)
	for i := range in {
		in[i] = float32(0.5 * math.Sin(2*math.Pi*440*float64(i)/24000))
	}

	path := filepath.Join(t.TempDir(), "nested", "out.wav")
	if err := WriteFile(path, in, 24000); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	if fi, err := os.Stat(path); err != nil || fi.Size() == 0 {
		t.Fatalf("output missing: %v", err)
	}

	out, err := ReadFile(path, 24000)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("len = %d, want %d", len(out), len(in))
	}
	for i := range in {
		if d := math.Abs(float64(out[i] - in[i])); d > 1e-3 {
			t.Fatalf("sample %d = %v, want %v", i, out[i], in[i])
		}
	}
}

func TestReadFileMissing(t *testing.T) {
	if _, err := ReadFile(filepath.Join(t.TempDir(), "none.wav"), 24000); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ReadFile() error = %v", err)
	}
}
