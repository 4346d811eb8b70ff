package qwentts

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
)

var paramDescriptions = map[string]string{
	"text":              "Text to synthesize.",
	"mode":              "Generation mode. Defaults to custom_voice.",
	"model":             "Model size. Defaults to 0.6B; voice_design always uses 1.7B.",
	"speaker":           "Preset speaker for custom_voice.",
	"language":          "Language of the text, or Auto.",
	"instruct":          "Style instruction for custom_voice.",
	"ref_audio":         "Reference recording for voice_clone.",
	"ref_text":          "Transcript of the reference recording.",
	"voice_description": "Voice description for voice_design.",
	"speaker_embedding": "Cached .npy speaker embedding for voice_clone.",
}

// ParamsSchema returns the JSON Schema of a request document. Every field
// is optional since flags and context defaults may fill them later.
func ParamsSchema() (*jsonschema.Schema, error) {
	s, err := jsonschema.For[Params](nil)
	if err != nil {
		return nil, fmt.Errorf("qwentts: params schema: %w", err)
	}
	s.Title = "Qwen3-TTS request"
	s.Required = nil
	for name, prop := range s.Properties {
		prop.Description = paramDescriptions[name]
	}

	modes := make([]any, len(Modes))
	for i, m := range Modes {
		modes[i] = string(m)
	}
	if p := s.Properties["mode"]; p != nil {
		p.Enum = modes
	}

	var sizes []any
	for _, size := range ModelSizes {
		sizes = append(sizes, string(size), strings.ToLower(string(size)))
	}
	if p := s.Properties["model"]; p != nil {
		p.Enum = sizes
	}
	return s, nil
}

var resolvedParamsSchema = sync.OnceValues(func() (*jsonschema.Resolved, error) {
	s, err := ParamsSchema()
	if err != nil {
		return nil, err
	}
	return s.Resolve(nil)
})

// ValidateDocument checks a decoded request document against
// ParamsSchema. A failure matches ErrValidation.
func ValidateDocument(doc map[string]any) error {
	rs, err := resolvedParamsSchema()
	if err != nil {
		return err
	}
	if err := rs.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

// ParamsFromDocument validates doc and converts it to Params.
func ParamsFromDocument(doc map[string]any) (Params, error) {
	var p Params
	if err := ValidateDocument(doc); err != nil {
		return p, err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return p, fmt.Errorf("qwentts: encode request: %w", err)
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return p, nil
}
