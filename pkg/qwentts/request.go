package qwentts

import (
	"fmt"
	"strings"
)

// DefaultRefText is the transcript sent with a reference recording when the
// caller does not supply one.
const DefaultRefText = "Reference audio transcript."

// Request is a generation request. The concrete types are
// *CustomVoiceRequest, *VoiceCloneRequest and *VoiceDesignRequest.
type Request interface {
	// Mode returns the generation mode the request targets.
	Mode() Mode

	// Validate checks the fields the mode requires.
	Validate() error

	isRequest()
}

// CustomVoiceRequest synthesizes text with a preset speaker.
type CustomVoiceRequest struct {
	Text     string `json:"text" yaml:"text"`
	Language string `json:"language" yaml:"language"`
	Speaker  string `json:"speaker" yaml:"speaker"`

	// Instruct is an optional style instruction ("speak slowly", "whisper").
	Instruct string `json:"instruct,omitempty" yaml:"instruct,omitempty"`
}

// VoiceCloneRequest synthesizes text in the voice of a reference recording.
// Either RefAudio or SpeakerEmbedding must be set; when both are set the
// embedding wins.
type VoiceCloneRequest struct {
	Text     string `json:"text" yaml:"text"`
	Language string `json:"language" yaml:"language"`

	// RefAudio is the path of the reference recording.
	RefAudio string `json:"ref_audio,omitempty" yaml:"ref_audio,omitempty"`

	// RefText is the transcript of RefAudio. Defaults to DefaultRefText.
	RefText string `json:"ref_text,omitempty" yaml:"ref_text,omitempty"`

	// SpeakerEmbedding is the path of a cached .npy speaker embedding.
	SpeakerEmbedding string `json:"speaker_embedding,omitempty" yaml:"speaker_embedding,omitempty"`
}

// VoiceDesignRequest synthesizes text in a voice described in prose.
type VoiceDesignRequest struct {
	Text     string `json:"text" yaml:"text"`
	Language string `json:"language" yaml:"language"`

	// VoiceDescription is sent to the model as the style instruction.
	VoiceDescription string `json:"voice_description" yaml:"voice_description"`
}

func (*CustomVoiceRequest) Mode() Mode { return ModeCustomVoice }
func (*VoiceCloneRequest) Mode() Mode  { return ModeVoiceClone }
func (*VoiceDesignRequest) Mode() Mode { return ModeVoiceDesign }

func (*CustomVoiceRequest) isRequest() {}
func (*VoiceCloneRequest) isRequest()  {}
func (*VoiceDesignRequest) isRequest() {}

// Validate implements Request.
func (r *CustomVoiceRequest) Validate() error {
	if err := validateCommon(ModeCustomVoice, r.Text, r.Language); err != nil {
		return err
	}
	if blank(r.Speaker) {
		return &ValidationError{Mode: ModeCustomVoice, Field: "speaker"}
	}
	return nil
}

// Validate implements Request.
func (r *VoiceCloneRequest) Validate() error {
	if err := validateCommon(ModeVoiceClone, r.Text, r.Language); err != nil {
		return err
	}
	if blank(r.RefAudio) && blank(r.SpeakerEmbedding) {
		return &ValidationError{Mode: ModeVoiceClone, Field: "ref_audio"}
	}
	return nil
}

// Validate implements Request.
func (r *VoiceDesignRequest) Validate() error {
	if err := validateCommon(ModeVoiceDesign, r.Text, r.Language); err != nil {
		return err
	}
	if blank(r.VoiceDescription) {
		return &ValidationError{Mode: ModeVoiceDesign, Field: "voice_description"}
	}
	return nil
}

func validateCommon(mode Mode, text, language string) error {
	if blank(text) {
		return &ValidationError{Mode: mode, Field: "text"}
	}
	if blank(language) {
		return &ValidationError{Mode: mode, Field: "language"}
	}
	return nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Params is the flat parameter set collected by the command line and HTTP
// front ends. Request converts it into the request shape for Mode; fields
// that do not belong to the mode are dropped.
type Params struct {
	Text             string `json:"text" yaml:"text"`
	Mode             Mode   `json:"mode,omitempty" yaml:"mode,omitempty"`
	Model            string `json:"model,omitempty" yaml:"model,omitempty"`
	Speaker          string `json:"speaker,omitempty" yaml:"speaker,omitempty"`
	Language         string `json:"language,omitempty" yaml:"language,omitempty"`
	Instruct         string `json:"instruct,omitempty" yaml:"instruct,omitempty"`
	RefAudio         string `json:"ref_audio,omitempty" yaml:"ref_audio,omitempty"`
	RefText          string `json:"ref_text,omitempty" yaml:"ref_text,omitempty"`
	VoiceDescription string `json:"voice_description,omitempty" yaml:"voice_description,omitempty"`
	SpeakerEmbedding string `json:"speaker_embedding,omitempty" yaml:"speaker_embedding,omitempty"`
}

// Request builds the typed request for p.Mode. An empty mode selects
// custom voice.
func (p Params) Request() (Request, error) {
	mode := p.Mode
	if mode == "" {
		mode = ModeCustomVoice
	}
	switch mode {
	case ModeCustomVoice:
		return &CustomVoiceRequest{
			Text:     p.Text,
			Language: p.Language,
			Speaker:  p.Speaker,
			Instruct: p.Instruct,
		}, nil
	case ModeVoiceClone:
		return &VoiceCloneRequest{
			Text:             p.Text,
			Language:         p.Language,
			RefAudio:         p.RefAudio,
			RefText:          p.RefText,
			SpeakerEmbedding: p.SpeakerEmbedding,
		}, nil
	case ModeVoiceDesign:
		return &VoiceDesignRequest{
			Text:             p.Text,
			Language:         p.Language,
			VoiceDescription: p.VoiceDescription,
		}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
}

// Size parses p.Model, defaulting to Size06B when empty.
func (p Params) Size() (ModelSize, error) {
	if p.Model == "" {
		return Size06B, nil
	}
	return ParseModelSize(p.Model)
}
