package resampler

import (
	"errors"
	"math"
	"testing"
)

func sine(rate, n int, freq float64) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate)))
	}
	return out
}

func TestResampleLength(t *testing.T) {
	tests := []struct {
		name     string
		src, dst int
		n        int
		want     int
	}{
		{"downsample", 24000, 16000, 24000, 16000},
		{"upsample", 24000, 48000, 2400, 4800},
		{"odd ratio", 24000, 22050, 2400, 2205},
		{"same rate", 24000, 24000, 1000, 1000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Resample(sine(tt.src, tt.n, 440), tt.src, tt.dst)
			if err != nil {
				t.Fatalf("Resample() error: %v", err)
			}
			if len(out) != tt.want {
				t.Errorf("len = %d, want %d", len(out), tt.want)
			}
			for i, s := range out {
				if math.IsNaN(float64(s)) || math.IsInf(float64(s), 0) {
					t.Fatalf("sample %d = %v", i, s)
				}
			}
		})
	}
}

func TestResampleSameRateCopies(t *testing.T) {
	in := []float32{0.1, 0.2}
	out, err := Resample(in, 16000, 16000)
	if err != nil {
		t.Fatal(err)
	}
	out[0] = 9
	if in[0] != 0.1 {
		t.Error("output aliases input")
	}
}

func TestResampleEmpty(t *testing.T) {
	out, err := Resample(nil, 24000, 16000)
	if err != nil || len(out) != 0 {
		t.Errorf("Resample(nil) = %v, %v", out, err)
	}
}

func TestInvalidRate(t *testing.T) {
	if _, err := New(0, 16000); !errors.Is(err, ErrInvalidRate) {
		t.Errorf("New(0, 16000) error = %v", err)
	}
	if _, err := New(16000, -1); !errors.Is(err, ErrInvalidRate) {
		t.Errorf("New(16000, -1) error = %v", err)
	}
}
