package qwentts

import (
	"fmt"
	"strings"
)

// Mode selects a generation operation.
type Mode string

const (
	// ModeCustomVoice generates speech with a preset speaker.
	ModeCustomVoice Mode = "custom_voice"
	// ModeVoiceClone generates speech in the voice of a reference recording.
	ModeVoiceClone Mode = "voice_clone"
	// ModeVoiceDesign generates speech in a voice described in natural language.
	ModeVoiceDesign Mode = "voice_design"
)

// Modes lists every supported mode in display order.
var Modes = []Mode{ModeCustomVoice, ModeVoiceClone, ModeVoiceDesign}

// ParseMode parses a mode name.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.TrimSpace(s))
	switch m {
	case ModeCustomVoice, ModeVoiceClone, ModeVoiceDesign:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

func (m Mode) String() string { return string(m) }

// ModelSize selects the parameter count of a checkpoint family.
type ModelSize string

const (
	// Size06B is the 0.6B parameter family.
	Size06B ModelSize = "0.6B"
	// Size17B is the 1.7B parameter family.
	Size17B ModelSize = "1.7B"
)

// ModelSizes lists every supported size in display order.
var ModelSizes = []ModelSize{Size06B, Size17B}

// ParseModelSize parses a model size. Matching is case-insensitive so "0.6b"
// is accepted.
func ParseModelSize(s string) (ModelSize, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "0.6B":
		return Size06B, nil
	case "1.7B":
		return Size17B, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownModelSize, s)
}

func (s ModelSize) String() string { return string(s) }

const checkpointPrefix = "Qwen/Qwen3-TTS-12Hz-"

// EmbeddingCheckpoint is the checkpoint used for speaker embedding extraction.
const EmbeddingCheckpoint = checkpointPrefix + "0.6B-Base"

// ModelKey identifies a model configuration by mode and size.
type ModelKey struct {
	Mode Mode
	Size ModelSize
}

// Checkpoint resolves the checkpoint identifier for the key.
//
// Voice design is only published as a 1.7B checkpoint; the requested size is
// ignored for that mode.
func (k ModelKey) Checkpoint() (string, error) {
	return ResolveCheckpoint(k.Mode, k.Size)
}

// ResolveCheckpoint maps a mode and size to a checkpoint identifier.
func ResolveCheckpoint(mode Mode, size ModelSize) (string, error) {
	if mode != ModeVoiceDesign {
		if _, err := ParseModelSize(string(size)); err != nil {
			return "", err
		}
	}
	switch mode {
	case ModeCustomVoice:
		return checkpointPrefix + string(size) + "-CustomVoice", nil
	case ModeVoiceClone:
		return checkpointPrefix + string(size) + "-Base", nil
	case ModeVoiceDesign:
		return checkpointPrefix + "1.7B-VoiceDesign", nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, mode)
}
