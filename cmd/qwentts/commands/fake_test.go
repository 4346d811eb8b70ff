package commands

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/haivivi/qwentts/pkg/artifact"
	"github.com/haivivi/qwentts/pkg/cli"
	"github.com/haivivi/qwentts/pkg/qwentts"
	"github.com/haivivi/qwentts/pkg/voicelib"
)

const testDim = 8

// fakeModel answers every generation with a short tone at 24 kHz and
// records the last input of each mode.
type fakeModel struct {
	checkpoint string

	mu     sync.Mutex
	custom *qwentts.CustomVoiceInput
	clone  *qwentts.VoiceCloneInput
	design *qwentts.VoiceDesignInput
}

func (m *fakeModel) audio() *qwentts.Audio {
	samples := make([]float32, 2400)
	for i := range samples {
		samples[i] = float32(i%24) / 48
	}
	return &qwentts.Audio{Samples: samples, SampleRate: 24000}
}

func (m *fakeModel) GenerateCustomVoice(_ context.Context, in qwentts.CustomVoiceInput) (*qwentts.Audio, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.custom = &in
	return m.audio(), nil
}

func (m *fakeModel) GenerateVoiceClone(_ context.Context, in qwentts.VoiceCloneInput) (*qwentts.Audio, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clone = &in
	return m.audio(), nil
}

func (m *fakeModel) GenerateVoiceDesign(_ context.Context, in qwentts.VoiceDesignInput) (*qwentts.Audio, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.design = &in
	return m.audio(), nil
}

func (m *fakeModel) CreateVoiceClonePrompt(_ context.Context, opts qwentts.PromptOptions) ([]qwentts.PromptItem, error) {
	vec := make([]float32, testDim)
	for i := range vec {
		vec[i] = float32(i + 1)
	}
	return []qwentts.PromptItem{{SpeakerEmbedding: vec, XVectorOnly: opts.XVectorOnly}}, nil
}

func (m *fakeModel) EmbeddingDim() int { return testDim }

type fakeLoader struct {
	mu     sync.Mutex
	models map[string]*fakeModel
	loads  int
}

func (l *fakeLoader) Load(_ context.Context, spec qwentts.LoadSpec) (qwentts.Model, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loads++
	if l.models == nil {
		l.models = make(map[string]*fakeModel)
	}
	m := &fakeModel{checkpoint: spec.Checkpoint}
	l.models[spec.Checkpoint] = m
	return m, nil
}

func (l *fakeLoader) model(checkpoint string) *fakeModel {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.models[checkpoint]
}

func (l *fakeLoader) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loads
}

type testEnv struct {
	rt     *runtime
	loader *fakeLoader
	store  *artifact.Local
	dir    string
}

func newTestEnv(t *testing.T, ctx *cli.Context) *testEnv {
	t.Helper()
	if ctx == nil {
		ctx = &cli.Context{Name: "test"}
	}
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	loader := &fakeLoader{}
	cache := qwentts.NewCache(loader, qwentts.WithLogger(logger))
	paths := &cli.Paths{AppName: appName, HomeDir: dir}
	rt := newRuntimeWithCache(ctx, paths, cache, nil)
	rt.logger = logger

	store, err := artifact.NewLocal(paths.DataDir())
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	rt.useLibrary(voicelib.NewMemoryIndex(), store)
	t.Cleanup(func() { rt.Close() })

	return &testEnv{rt: rt, loader: loader, store: store, dir: dir}
}
