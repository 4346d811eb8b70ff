package cli

import (
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0ms"},
		{time.Millisecond, "1ms"},
		{999 * time.Millisecond, "999ms"},
		{time.Second, "1.0s"},
		{1500 * time.Millisecond, "1.5s"},
		{59 * time.Second, "59.0s"},
		{time.Minute, "1m0.0s"},
		{90 * time.Second, "1m30.0s"},
		{125500 * time.Millisecond, "2m5.5s"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatDuration(tt.d); got != tt.want {
				t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
			}
		})
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{1024 * 1024, "1.00 MB"},
		{5 * 1024 * 1024 * 1024, "5.00 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatBytes(tt.bytes); got != tt.want {
				t.Errorf("FormatBytes(%d) = %q, want %q", tt.bytes, got, tt.want)
			}
		})
	}
}

func TestFormatShape(t *testing.T) {
	tests := []struct {
		shape []int
		want  string
	}{
		{nil, "()"},
		{[]int{1024}, "(1024,)"},
		{[]int{1, 2048}, "(1, 2048)"},
	}
	for _, tt := range tests {
		if got := FormatShape(tt.shape); got != tt.want {
			t.Errorf("FormatShape(%v) = %q, want %q", tt.shape, got, tt.want)
		}
	}
}

func TestFormatSampleRate(t *testing.T) {
	tests := []struct {
		hz   int
		want string
	}{
		{24000, "24 kHz"},
		{16000, "16 kHz"},
		{22050, "22.1 kHz"},
	}
	for _, tt := range tests {
		if got := FormatSampleRate(tt.hz); got != tt.want {
			t.Errorf("FormatSampleRate(%d) = %q, want %q", tt.hz, got, tt.want)
		}
	}
}
