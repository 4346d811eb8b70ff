package qwentts

import "context"

// Precision is the numeric type the model weights are loaded with.
type Precision string

const (
	PrecisionFloat32  Precision = "float32"
	PrecisionFloat16  Precision = "float16"
	PrecisionBFloat16 Precision = "bfloat16"
)

// LoadSpec describes one checkpoint load.
type LoadSpec struct {
	// Checkpoint is the model identifier, e.g. "Qwen/Qwen3-TTS-12Hz-0.6B-Base".
	Checkpoint string

	// Device is the compute device to place the weights on.
	Device Device

	// Precision is the weight dtype.
	Precision Precision
}

// Loader loads checkpoints. Implementations may fetch weights over the
// network on first use and block until the model is ready.
type Loader interface {
	Load(ctx context.Context, spec LoadSpec) (Model, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, spec LoadSpec) (Model, error)

// Load implements Loader.
func (f LoaderFunc) Load(ctx context.Context, spec LoadSpec) (Model, error) {
	return f(ctx, spec)
}

// CustomVoiceInput is the argument shape of a custom voice generation.
type CustomVoiceInput struct {
	Text     string
	Language string
	Speaker  string
	Instruct string
}

// VoiceCloneInput is the argument shape of a voice clone generation. Exactly
// one of RefAudio and SpeakerEmbedding is set by the dispatcher.
type VoiceCloneInput struct {
	Text     string
	Language string

	// RefAudio is the path of the reference recording.
	RefAudio string

	// RefText is the transcript of the reference recording.
	RefText string

	// SpeakerEmbedding is a previously extracted speaker embedding used in
	// place of the reference recording.
	SpeakerEmbedding []float32
}

// VoiceDesignInput is the argument shape of a voice design generation.
type VoiceDesignInput struct {
	Text     string
	Language string
	Instruct string
}

// PromptOptions configures voice clone prompt creation.
type PromptOptions struct {
	// RefAudio is the path of the reference recording.
	RefAudio string

	// RefText is the optional transcript of the reference recording.
	RefText string

	// XVectorOnly restricts the prompt to the speaker embedding; no in-context
	// audio tokens are produced.
	XVectorOnly bool
}

// PromptItem is one voice clone prompt returned by the model.
type PromptItem struct {
	// SpeakerEmbedding is the flattened speaker embedding, nil if the model
	// did not produce one.
	SpeakerEmbedding []float32

	// RefText is the transcript the prompt was built with.
	RefText string

	// XVectorOnly reports whether the prompt carries only the embedding.
	XVectorOnly bool
}

// Model is a loaded checkpoint. A Model is bound to one device for its
// lifetime. Implementations that hold resources should also implement
// io.Closer; the Cache closes them on eviction and shutdown.
type Model interface {
	// GenerateCustomVoice synthesizes text with a preset speaker.
	GenerateCustomVoice(ctx context.Context, in CustomVoiceInput) (*Audio, error)

	// GenerateVoiceClone synthesizes text in the voice of a reference.
	GenerateVoiceClone(ctx context.Context, in VoiceCloneInput) (*Audio, error)

	// GenerateVoiceDesign synthesizes text in a described voice.
	GenerateVoiceDesign(ctx context.Context, in VoiceDesignInput) (*Audio, error)

	// CreateVoiceClonePrompt builds reusable clone prompts from reference audio.
	CreateVoiceClonePrompt(ctx context.Context, opts PromptOptions) ([]PromptItem, error)

	// EmbeddingDim returns the speaker embedding dimensionality, or 0 when the
	// model does not declare one.
	EmbeddingDim() int
}
