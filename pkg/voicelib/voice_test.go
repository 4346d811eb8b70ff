package voicelib

import (
	"errors"
	"testing"
)

func TestVoiceID(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Ryan", "ryan"},
		{"My Voice", "my_voice"},
		{"  Grandpa Joe! ", "grandpa_joe_"},
		{"café-2", "caf__2"},
		{"ABC123", "abc123"},
	}
	for _, tt := range tests {
		got, err := VoiceID(tt.name)
		if err != nil {
			t.Fatalf("VoiceID(%q) error: %v", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("VoiceID(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}

	for _, bad := range []string{"", "   ", "!!!", "../.."} {
		if _, err := VoiceID(bad); !errors.Is(err, ErrInvalidName) {
			t.Errorf("VoiceID(%q) error = %v, want ErrInvalidName", bad, err)
		}
	}
}

func TestPaths(t *testing.T) {
	v := &Voice{ID: "ryan"}
	if v.AudioPath() != "voices/ryan/audio.wav" {
		t.Errorf("AudioPath() = %q", v.AudioPath())
	}
	if v.EmbeddingPath() != "voices/ryan/embedding.npy" {
		t.Errorf("EmbeddingPath() = %q", v.EmbeddingPath())
	}
}
