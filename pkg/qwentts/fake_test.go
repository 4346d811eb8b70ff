package qwentts

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
)

type fakeModel struct {
	spec LoadSpec
	dim  int

	mu        sync.Mutex
	calls     int
	genErr    error
	audio     *Audio
	items     []PromptItem
	promptErr error
	closed    bool

	custom CustomVoiceInput
	clone  VoiceCloneInput
	design VoiceDesignInput
	prompt PromptOptions
}

func (m *fakeModel) result() (*Audio, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.genErr != nil {
		return nil, m.genErr
	}
	if m.audio != nil {
		return m.audio, nil
	}
	return &Audio{Samples: []float32{0.1, -0.2, 0.3}, SampleRate: 24000}, nil
}

func (m *fakeModel) GenerateCustomVoice(_ context.Context, in CustomVoiceInput) (*Audio, error) {
	m.custom = in
	return m.result()
}

func (m *fakeModel) GenerateVoiceClone(_ context.Context, in VoiceCloneInput) (*Audio, error) {
	m.clone = in
	return m.result()
}

func (m *fakeModel) GenerateVoiceDesign(_ context.Context, in VoiceDesignInput) (*Audio, error) {
	m.design = in
	return m.result()
}

func (m *fakeModel) CreateVoiceClonePrompt(_ context.Context, opts PromptOptions) ([]PromptItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.prompt = opts
	return m.items, m.promptErr
}

func (m *fakeModel) EmbeddingDim() int { return m.dim }

func (m *fakeModel) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// fakeLoader records every load and fails on the devices listed in fail.
type fakeLoader struct {
	mu     sync.Mutex
	specs  []LoadSpec
	models []*fakeModel
	fail   map[Device]error

	// configure, if set, adjusts each model before it is returned.
	configure func(*fakeModel)
}

func (l *fakeLoader) Load(_ context.Context, spec LoadSpec) (Model, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.specs = append(l.specs, spec)
	if err, ok := l.fail[spec.Device]; ok {
		return nil, err
	}
	m := &fakeModel{spec: spec}
	if l.configure != nil {
		l.configure(m)
	}
	l.models = append(l.models, m)
	return m, nil
}

func (l *fakeLoader) loads() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.specs)
}

var errDevice = errors.New("device unavailable")

func newTestCache(l *fakeLoader, opts ...CacheOption) *Cache {
	opts = append([]CacheOption{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	return NewCache(l, opts...)
}
