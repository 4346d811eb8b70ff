package qwentts

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrValidation is matched by every request validation failure.
	ErrValidation = errors.New("qwentts: invalid request")

	// ErrUnknownMode is returned for a mode name outside [Modes].
	ErrUnknownMode = errors.New("qwentts: unknown mode")

	// ErrUnknownModelSize is returned for a size outside [ModelSizes].
	ErrUnknownModelSize = errors.New("qwentts: unknown model size")

	// ErrNoPromptItems is returned when clone prompt creation yields nothing.
	ErrNoPromptItems = errors.New("qwentts: no prompt items returned")

	// ErrNoEmbedding is returned when the first prompt item carries no
	// speaker embedding.
	ErrNoEmbedding = errors.New("qwentts: could not extract speaker embedding")

	// ErrEmbeddingShape is returned when an embedding does not match the
	// dimensionality declared by the model.
	ErrEmbeddingShape = errors.New("qwentts: embedding shape mismatch")

	// ErrEmptyAudio is returned when a model answers without samples or
	// without a sample rate.
	ErrEmptyAudio = errors.New("qwentts: empty audio")
)

// ValidationError reports a required field missing for a mode.
type ValidationError struct {
	Mode  Mode
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("qwentts: %s requires %s", e.Mode, e.Field)
}

// Unwrap makes every ValidationError match ErrValidation.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// LoadError records a failed checkpoint load on one device.
type LoadError struct {
	Checkpoint string
	Device     Device
	Err        error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("qwentts: load %s on %s: %v", e.Checkpoint, e.Device, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is a request validation failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}
