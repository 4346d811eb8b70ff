package qwentts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Dispatcher routes generation requests to the model operation matching their
// mode, loading handles through a Cache.
type Dispatcher struct {
	cache  *Cache
	logger *slog.Logger
}

// NewDispatcher creates a Dispatcher backed by cache.
func NewDispatcher(cache *Cache) *Dispatcher {
	return &Dispatcher{cache: cache, logger: cache.logger}
}

// Generate validates req, resolves the checkpoint for its mode and size and
// runs the generation.
//
// Validation happens before any model is loaded. If generation fails on a
// handle loaded on the primary device and the cache has a fallback device,
// the checkpoint is reloaded there and the call is retried once.
func (d *Dispatcher) Generate(ctx context.Context, size ModelSize, req Request) (*Audio, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: nil request", ErrValidation)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	call, err := d.prepare(req)
	if err != nil {
		return nil, err
	}

	mode := req.Mode()
	checkpoint, err := ResolveCheckpoint(mode, size)
	if err != nil {
		return nil, err
	}
	m, err := d.cache.GetCheckpoint(ctx, checkpoint)
	if err != nil {
		return nil, err
	}

	d.logger.Debug("generating", "mode", mode, "checkpoint", checkpoint)
	audio, err := call(ctx, m)
	if err != nil && ctx.Err() == nil {
		retry, ok, ferr := d.cache.reloadOnFallback(ctx, checkpoint, m)
		if ferr != nil {
			return nil, fmt.Errorf("qwentts: generate %s: %w", mode, errors.Join(err, ferr))
		}
		if ok {
			audio, err = call(ctx, retry)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("qwentts: generate %s: %w", mode, err)
	}
	if err := audio.Validate(); err != nil {
		return nil, err
	}
	return audio, nil
}

type generateFunc func(ctx context.Context, m Model) (*Audio, error)

// prepare turns a validated request into the model call for its mode. Any
// file the call depends on is read here, before a model is loaded.
func (d *Dispatcher) prepare(req Request) (generateFunc, error) {
	switch r := req.(type) {
	case *CustomVoiceRequest:
		in := CustomVoiceInput{
			Text:     r.Text,
			Language: r.Language,
			Speaker:  r.Speaker,
			Instruct: r.Instruct,
		}
		return func(ctx context.Context, m Model) (*Audio, error) {
			return m.GenerateCustomVoice(ctx, in)
		}, nil

	case *VoiceCloneRequest:
		in := VoiceCloneInput{
			Text:     r.Text,
			Language: r.Language,
			RefText:  r.RefText,
		}
		if in.RefText == "" {
			in.RefText = DefaultRefText
		}
		if r.SpeakerEmbedding != "" {
			emb, err := ReadEmbeddingFile(r.SpeakerEmbedding)
			if err != nil {
				return nil, err
			}
			in.SpeakerEmbedding = emb.Vector
		} else {
			in.RefAudio = r.RefAudio
		}
		return func(ctx context.Context, m Model) (*Audio, error) {
			return m.GenerateVoiceClone(ctx, in)
		}, nil

	case *VoiceDesignRequest:
		in := VoiceDesignInput{
			Text:     r.Text,
			Language: r.Language,
			Instruct: r.VoiceDescription,
		}
		return func(ctx context.Context, m Model) (*Audio, error) {
			return m.GenerateVoiceDesign(ctx, in)
		}, nil
	}
	return nil, fmt.Errorf("%w: %T", ErrUnknownMode, req)
}
