// Package voicelib keeps a library of saved voices for cloning.
//
// A saved voice is a reference recording, its transcript and, when the
// embedding extractor is available, a cached speaker embedding. Assets live
// in an artifact.Store under voices/{id}/ and metadata in an Index.
//
// When a saved voice is used for generation the cached embedding is
// preferred; without one the reference recording and its saved transcript
// are used.
package voicelib

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when no voice has the requested id.
	ErrNotFound = errors.New("voicelib: voice not found")

	// ErrInvalidName is returned for names that do not produce a usable id.
	ErrInvalidName = errors.New("voicelib: invalid voice name")
)

// Voice is the metadata of a saved voice.
type Voice struct {
	ID           string    `msgpack:"id" json:"id" yaml:"id"`
	Name         string    `msgpack:"name" json:"name" yaml:"name"`
	RefText      string    `msgpack:"ref_text" json:"refText" yaml:"ref_text"`
	HasEmbedding bool      `msgpack:"has_embedding" json:"hasEmbedding" yaml:"has_embedding"`
	EmbeddingDim int       `msgpack:"embedding_dim,omitempty" json:"embeddingDim,omitempty" yaml:"embedding_dim,omitempty"`
	Fingerprint  string    `msgpack:"fingerprint,omitempty" json:"fingerprint,omitempty" yaml:"fingerprint,omitempty"`
	CreatedAt    time.Time `msgpack:"created_at" json:"createdAt" yaml:"created_at"`
	UpdatedAt    time.Time `msgpack:"updated_at,omitempty" json:"updatedAt,omitempty" yaml:"updated_at,omitempty"`
}

// AudioPath is the store path of the voice's reference recording.
func (v *Voice) AudioPath() string { return AudioPath(v.ID) }

// EmbeddingPath is the store path of the voice's cached embedding.
func (v *Voice) EmbeddingPath() string { return EmbeddingPath(v.ID) }

// Dir is the store directory holding a voice's assets.
func Dir(id string) string { return "voices/" + id }

// AudioPath is the store path of a voice's reference recording.
func AudioPath(id string) string { return Dir(id) + "/audio.wav" }

// EmbeddingPath is the store path of a voice's cached embedding.
func EmbeddingPath(id string) string { return Dir(id) + "/embedding.npy" }

// VoiceID derives the id of a voice from its display name: lower case, with
// every character outside [a-z0-9] replaced by an underscore.
func VoiceID(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidName)
	}
	var b strings.Builder
	meaningful := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			meaningful = true
		} else {
			b.WriteByte('_')
		}
	}
	if !meaningful {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return b.String(), nil
}
