package voicelib

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/haivivi/qwentts/pkg/artifact"
	"github.com/haivivi/qwentts/pkg/qwentts"
)

// Embedder extracts a speaker embedding from a local reference recording.
// *qwentts.Extractor satisfies it.
type Embedder interface {
	Extract(ctx context.Context, refAudio string) (*qwentts.Embedding, error)
}

// Library manages saved voices.
type Library struct {
	index    Index
	store    artifact.Store
	embedder Embedder
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Library.
type Option func(*Library)

// WithEmbedder enables embedding extraction on Save.
func WithEmbedder(e Embedder) Option {
	return func(l *Library) {
		l.embedder = e
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Library) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithClock sets the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Library) {
		l.now = now
	}
}

// New creates a Library over index and store.
func New(index Index, store artifact.Store, opts ...Option) *Library {
	l := &Library{
		index:  index,
		store:  store,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// SaveRequest describes a voice to save.
type SaveRequest struct {
	// Name is the display name; the id is derived from it.
	Name string

	// RefText is the transcript of the recording.
	RefText string

	// AudioPath is a local reference recording.
	AudioPath string
}

// Save copies the recording into the store, extracts and caches its
// embedding when an Embedder is configured, and records the metadata.
// Saving a name that maps to an existing id replaces that voice.
//
// A failed extraction is logged and the voice is saved without an
// embedding; generation then falls back to the recording.
func (l *Library) Save(ctx context.Context, req SaveRequest) (*Voice, error) {
	id, err := VoiceID(req.Name)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.AudioPath) == "" {
		return nil, fmt.Errorf("voicelib: save %s: reference audio required", id)
	}
	if err := artifact.CopyFile(ctx, l.store, AudioPath(id), req.AudioPath); err != nil {
		return nil, fmt.Errorf("voicelib: save %s: %w", id, err)
	}

	v := &Voice{
		ID:        id,
		Name:      strings.TrimSpace(req.Name),
		RefText:   req.RefText,
		CreatedAt: l.now().UTC(),
	}

	// Drop any embedding left by a previous voice with this id.
	if err := l.store.Delete(ctx, EmbeddingPath(id)); err != nil {
		return nil, fmt.Errorf("voicelib: save %s: %w", id, err)
	}
	if l.embedder != nil {
		l.logger.Info("extracting speaker embedding", "voice", id)
		emb, err := l.embedder.Extract(ctx, req.AudioPath)
		if err == nil {
			err = l.writeEmbedding(ctx, id, emb)
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			l.logger.Warn("embedding extraction failed, saving without embedding", "voice", id, "error", err)
		} else {
			v.HasEmbedding = true
			v.EmbeddingDim = emb.Dim()
			v.Fingerprint = Fingerprint(emb.Vector)
		}
	}

	if err := l.index.Put(ctx, v); err != nil {
		return nil, fmt.Errorf("voicelib: save %s: %w", id, err)
	}
	return v, nil
}

func (l *Library) writeEmbedding(ctx context.Context, id string, emb *qwentts.Embedding) error {
	w, err := l.store.Write(ctx, EmbeddingPath(id))
	if err != nil {
		return err
	}
	if err := emb.Write(w); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// Get returns a saved voice.
func (l *Library) Get(ctx context.Context, id string) (*Voice, error) {
	return l.index.Get(ctx, id)
}

// List returns every saved voice, newest first.
func (l *Library) List(ctx context.Context) ([]*Voice, error) {
	voices, err := l.index.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(voices, func(i, j int) bool {
		return voices[i].CreatedAt.After(voices[j].CreatedAt)
	})
	return voices, nil
}

// Delete removes a voice and its assets.
func (l *Library) Delete(ctx context.Context, id string) error {
	if _, err := l.index.Get(ctx, id); err != nil {
		return err
	}
	if err := l.store.DeletePrefix(ctx, Dir(id)); err != nil {
		return fmt.Errorf("voicelib: delete %s: %w", id, err)
	}
	return l.index.Delete(ctx, id)
}

// Rename changes the display name of a voice. The id is unchanged.
func (l *Library) Rename(ctx context.Context, id, name string) (*Voice, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidName)
	}
	v, err := l.index.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	v.Name = name
	v.UpdatedAt = l.now().UTC()
	if err := l.index.Put(ctx, v); err != nil {
		return nil, fmt.Errorf("voicelib: rename %s: %w", id, err)
	}
	return v, nil
}

// Embedding loads the cached embedding of a voice.
func (l *Library) Embedding(ctx context.Context, id string) (*qwentts.Embedding, error) {
	r, err := l.store.Read(ctx, EmbeddingPath(id))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return qwentts.ReadEmbedding(r)
}

// Apply points a voice clone request at a saved voice. The cached embedding
// is preferred and the request's transcript is left alone; otherwise the
// saved recording is used and an empty transcript is filled from the
// voice. release frees any temporary copies and must be called once the
// request is done; it is never nil.
func (l *Library) Apply(ctx context.Context, id string, req *qwentts.VoiceCloneRequest) (release func(), err error) {
	release = func() {}
	v, err := l.index.Get(ctx, id)
	if err != nil {
		return release, err
	}

	if v.HasEmbedding {
		p, rel, err := artifact.Fetch(ctx, l.store, v.EmbeddingPath())
		if err == nil {
			req.SpeakerEmbedding = p
			req.RefAudio = ""
			return rel, nil
		}
		l.logger.Warn("cached embedding unavailable, using recording", "voice", id, "error", err)
	}

	p, rel, err := artifact.Fetch(ctx, l.store, v.AudioPath())
	if err != nil {
		return release, fmt.Errorf("voicelib: voice %s: %w", id, err)
	}
	req.RefAudio = p
	req.SpeakerEmbedding = ""
	if req.RefText == "" {
		req.RefText = v.RefText
	}
	return rel, nil
}

// Match is a saved voice ranked by similarity to a query embedding.
type Match struct {
	Voice      *Voice  `json:"voice" yaml:"voice"`
	Similarity float64 `json:"similarity" yaml:"similarity"`
}

// Match ranks saved voices with embeddings by cosine similarity to query,
// most similar first, returning at most limit results (all when limit <= 0).
func (l *Library) Match(ctx context.Context, query []float32, limit int) ([]Match, error) {
	voices, err := l.index.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []Match
	for _, v := range voices {
		if !v.HasEmbedding || v.EmbeddingDim != len(query) {
			continue
		}
		emb, err := l.Embedding(ctx, v.ID)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			l.logger.Warn("skip voice", "voice", v.ID, "error", err)
			continue
		}
		out = append(out, Match{Voice: v, Similarity: Cosine(query, emb.Vector)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Similarity > out[j].Similarity
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
