package qwentts

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sbinet/npyio"
)

// Embedding is a speaker embedding. Vector is the flattened tensor and Shape
// its dimensions; a freshly extracted embedding is one-dimensional.
type Embedding struct {
	Vector []float32
	Shape  []int
}

// NewEmbedding wraps a flat vector.
func NewEmbedding(vec []float32) *Embedding {
	return &Embedding{Vector: vec, Shape: []int{len(vec)}}
}

// Dim returns the number of elements.
func (e *Embedding) Dim() int {
	return len(e.Vector)
}

// Write encodes the embedding as a .npy array.
func (e *Embedding) Write(w io.Writer) error {
	if err := npyio.Write(w, e.Vector); err != nil {
		return fmt.Errorf("qwentts: write embedding: %w", err)
	}
	return nil
}

// WriteFile writes the embedding to path as a .npy file.
func (e *Embedding) WriteFile(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("qwentts: create embedding file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()
	return e.Write(f)
}

// ReadEmbedding decodes a .npy array of float32 or float64 values.
func ReadEmbedding(r io.Reader) (*Embedding, error) {
	nr, err := npyio.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("qwentts: read embedding: %w", err)
	}
	shape := append([]int(nil), nr.Header.Descr.Shape...)

	var vec []float32
	switch nr.Header.Descr.Type {
	case "<f8", "f8", "float64":
		var wide []float64
		if err := nr.Read(&wide); err != nil {
			return nil, fmt.Errorf("qwentts: read embedding: %w", err)
		}
		vec = make([]float32, len(wide))
		for i, v := range wide {
			vec[i] = float32(v)
		}
	default:
		if err := nr.Read(&vec); err != nil {
			return nil, fmt.Errorf("qwentts: read embedding: %w", err)
		}
	}
	if len(shape) == 0 {
		shape = []int{len(vec)}
	}
	return &Embedding{Vector: vec, Shape: shape}, nil
}

// ReadEmbeddingFile reads a .npy embedding from path.
func ReadEmbeddingFile(path string) (*Embedding, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("qwentts: open embedding: %w", err)
	}
	defer f.Close()
	return ReadEmbedding(f)
}

// Extractor derives speaker embeddings from reference recordings using the
// base checkpoint.
type Extractor struct {
	cache      *Cache
	checkpoint string
}

// NewExtractor creates an Extractor that loads EmbeddingCheckpoint through
// cache.
func NewExtractor(cache *Cache) *Extractor {
	return &Extractor{cache: cache, checkpoint: EmbeddingCheckpoint}
}

// Extract runs the embedding-only clone prompt path against refAudio and
// returns the speaker embedding of the first prompt item.
func (x *Extractor) Extract(ctx context.Context, refAudio string) (*Embedding, error) {
	if _, err := os.Stat(refAudio); err != nil {
		return nil, fmt.Errorf("qwentts: reference audio: %w", err)
	}
	m, err := x.cache.GetCheckpoint(ctx, x.checkpoint)
	if err != nil {
		return nil, err
	}

	items, err := m.CreateVoiceClonePrompt(ctx, PromptOptions{RefAudio: refAudio, XVectorOnly: true})
	if err != nil {
		return nil, fmt.Errorf("qwentts: create voice clone prompt: %w", err)
	}
	if len(items) == 0 {
		return nil, ErrNoPromptItems
	}
	vec := items[0].SpeakerEmbedding
	if len(vec) == 0 {
		return nil, ErrNoEmbedding
	}
	if dim := m.EmbeddingDim(); dim > 0 && len(vec) != dim {
		return nil, fmt.Errorf("%w: got %d values, model declares %d", ErrEmbeddingShape, len(vec), dim)
	}
	return NewEmbedding(vec), nil
}
