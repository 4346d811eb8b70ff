package commands

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"

	"github.com/haivivi/qwentts/pkg/audio/wav"
	"github.com/haivivi/qwentts/pkg/cli"
	"github.com/haivivi/qwentts/pkg/qwentts"
	"github.com/haivivi/qwentts/pkg/voicelib"
)

func TestGenerate_CustomVoiceDefaults(t *testing.T) {
	env := newTestEnv(t, nil)
	out := filepath.Join(env.dir, "out", "hello.wav")

	res, err := env.rt.generate(context.Background(), generateJob{
		Params: qwentts.Params{Text: "Hello"},
		Output: out,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if res.Mode != qwentts.ModeCustomVoice {
		t.Errorf("Mode = %s, want custom_voice", res.Mode)
	}
	if res.Checkpoint != "Qwen/Qwen3-TTS-12Hz-0.6B-CustomVoice" {
		t.Errorf("Checkpoint = %s", res.Checkpoint)
	}
	if res.SampleRate != 24000 || res.Samples != 2400 {
		t.Errorf("result = %+v, want 2400 samples at 24000", res)
	}
	if res.Seconds != 0.1 {
		t.Errorf("Seconds = %v, want 0.1", res.Seconds)
	}

	m := env.loader.model(res.Checkpoint)
	if m == nil || m.custom == nil {
		t.Fatal("custom voice model was not called")
	}
	if m.custom.Speaker != "Ryan" || m.custom.Language != "English" || m.custom.Text != "Hello" {
		t.Errorf("input = %+v, want Hello/English/Ryan", *m.custom)
	}

	samples, err := wav.ReadFile(out, 24000)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if len(samples) != 2400 {
		t.Errorf("output has %d samples, want 2400", len(samples))
	}
}

func TestGenerate_ContextDefaults(t *testing.T) {
	env := newTestEnv(t, &cli.Context{Defaults: &cli.Defaults{Model: "1.7B", Speaker: "Serena", Language: "Chinese"}})

	res, err := env.rt.generate(context.Background(), generateJob{
		Params: qwentts.Params{Text: "你好"},
		Output: filepath.Join(env.dir, "zh.wav"),
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if res.Checkpoint != "Qwen/Qwen3-TTS-12Hz-1.7B-CustomVoice" {
		t.Errorf("Checkpoint = %s, want the 1.7B custom voice checkpoint", res.Checkpoint)
	}
	if in := env.loader.model(res.Checkpoint).custom; in.Speaker != "Serena" || in.Language != "Chinese" {
		t.Errorf("input = %+v, want Serena/Chinese", *in)
	}
}

func TestGenerate_ResampledPCM(t *testing.T) {
	env := newTestEnv(t, nil)
	out := filepath.Join(env.dir, "hello.pcm")

	res, err := env.rt.generate(context.Background(), generateJob{
		Params:     qwentts.Params{Text: "Hello"},
		SampleRate: 16000,
		Output:     out,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if res.SampleRate != 16000 || res.Samples != 1600 {
		t.Errorf("result = %+v, want 1600 samples at 16000", res)
	}
	info, err := os.Stat(out)
	if err != nil {
		t.Fatalf("stat output: %v", err)
	}
	if info.Size() != 3200 {
		t.Errorf("pcm size = %d, want 3200 bytes", info.Size())
	}
}

func TestGenerate_PCMRejectsOddRate(t *testing.T) {
	env := newTestEnv(t, nil)

	_, err := env.rt.generate(context.Background(), generateJob{
		Params:     qwentts.Params{Text: "Hello"},
		SampleRate: 22050,
		Output:     filepath.Join(env.dir, "hello.pcm"),
	})
	if err == nil {
		t.Fatal("raw output at 22050 Hz should fail")
	}
}

func TestGenerate_ValidationBeforeLoad(t *testing.T) {
	tests := []struct {
		name   string
		params qwentts.Params
	}{
		{"clone without reference", qwentts.Params{Mode: qwentts.ModeVoiceClone, Text: "Hi"}},
		{"design without description", qwentts.Params{Mode: qwentts.ModeVoiceDesign, Text: "Hi"}},
		{"no text", qwentts.Params{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil)
			_, err := env.rt.generate(context.Background(), generateJob{
				Params: tt.params,
				Output: filepath.Join(env.dir, "x.wav"),
			})
			if !qwentts.IsValidation(err) {
				t.Fatalf("err = %v, want a validation error", err)
			}
			if n := env.loader.count(); n != 0 {
				t.Errorf("loader called %d times, want 0", n)
			}
		})
	}
}

func TestGenerate_UnknownModel(t *testing.T) {
	env := newTestEnv(t, nil)
	_, err := env.rt.generate(context.Background(), generateJob{
		Params: qwentts.Params{Text: "Hi", Model: "7B"},
		Output: filepath.Join(env.dir, "x.wav"),
	})
	if !errors.Is(err, qwentts.ErrUnknownModelSize) {
		t.Fatalf("err = %v, want ErrUnknownModelSize", err)
	}
}

func writeReference(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "ref.wav")
	samples := make([]float32, 1600)
	for i := range samples {
		samples[i] = 0.25
	}
	if err := wav.WriteFile(path, samples, 16000); err != nil {
		t.Fatalf("write reference: %v", err)
	}
	return path
}

func TestGenerate_SavedVoice(t *testing.T) {
	env := newTestEnv(t, nil)
	lib, err := env.rt.Library()
	if err != nil {
		t.Fatal(err)
	}
	v, err := lib.Save(context.Background(), voicelib.SaveRequest{
		Name:      "My Voice",
		RefText:   "A short sentence.",
		AudioPath: writeReference(t, env.dir),
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !v.HasEmbedding {
		t.Fatal("saved voice should carry an embedding")
	}

	res, err := env.rt.generate(context.Background(), generateJob{
		Params: qwentts.Params{Text: "Hello again"},
		Voice:  v.ID,
		Output: filepath.Join(env.dir, "again.wav"),
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if res.Mode != qwentts.ModeVoiceClone {
		t.Errorf("Mode = %s, want voice_clone", res.Mode)
	}

	in := env.loader.model(res.Checkpoint).clone
	if in == nil {
		t.Fatal("voice clone model was not called")
	}
	if len(in.SpeakerEmbedding) != testDim {
		t.Errorf("embedding has %d values, want %d", len(in.SpeakerEmbedding), testDim)
	}
	if in.RefAudio != "" {
		t.Errorf("RefAudio = %q, want empty when the embedding is used", in.RefAudio)
	}
}

func TestGenerate_SavedVoiceRequiresClone(t *testing.T) {
	env := newTestEnv(t, nil)
	_, err := env.rt.generate(context.Background(), generateJob{
		Params: qwentts.Params{Text: "Hi", Mode: qwentts.ModeVoiceDesign, VoiceDescription: "calm"},
		Voice:  "my_voice",
		Output: filepath.Join(env.dir, "x.wav"),
	})
	if err == nil {
		t.Fatal("--voice with voice_design should fail")
	}
}

func TestGenerate_SavedVoiceNotFound(t *testing.T) {
	env := newTestEnv(t, nil)
	_, err := env.rt.generate(context.Background(), generateJob{
		Params: qwentts.Params{Text: "Hi"},
		Voice:  "ghost",
		Output: filepath.Join(env.dir, "x.wav"),
	})
	if !errors.Is(err, voicelib.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if n := env.loader.count(); n != 0 {
		t.Errorf("loader called %d times, want 0", n)
	}
}

func TestGenerateFlags_Params(t *testing.T) {
	dir := t.TempDir()
	reqFile := filepath.Join(dir, "req.yaml")
	content := "text: From file\nmode: voice_clone\nref_audio: file.wav\nlanguage: German\n"
	if err := os.WriteFile(reqFile, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	var g generateFlags
	fs := pflag.NewFlagSet("generate", pflag.ContinueOnError)
	g.bind(fs)
	if err := fs.Parse([]string{"-f", reqFile, "--text", "From flag", "--ref-text", "Transcript"}); err != nil {
		t.Fatal(err)
	}

	p, err := g.params(fs)
	if err != nil {
		t.Fatalf("params: %v", err)
	}
	want := qwentts.Params{
		Text:     "From flag",
		Mode:     qwentts.ModeVoiceClone,
		Language: "German",
		RefAudio: "file.wav",
		RefText:  "Transcript",
	}
	if p != want {
		t.Errorf("params = %+v, want %+v", p, want)
	}
}

func TestGenerateFlags_BadMode(t *testing.T) {
	var g generateFlags
	fs := pflag.NewFlagSet("generate", pflag.ContinueOnError)
	g.bind(fs)
	if err := fs.Parse([]string{"--mode", "karaoke"}); err != nil {
		t.Fatal(err)
	}
	if _, err := g.params(fs); !errors.Is(err, qwentts.ErrUnknownMode) {
		t.Fatalf("err = %v, want ErrUnknownMode", err)
	}
}

func TestGenerateFlags_InvalidFile(t *testing.T) {
	reqFile := filepath.Join(t.TempDir(), "req.json")
	if err := os.WriteFile(reqFile, []byte(`{"text": "Hi", "mode": "karaoke"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	var g generateFlags
	fs := pflag.NewFlagSet("generate", pflag.ContinueOnError)
	g.bind(fs)
	if err := fs.Parse([]string{"-f", reqFile}); err != nil {
		t.Fatal(err)
	}
	if _, err := g.params(fs); !qwentts.IsValidation(err) {
		t.Fatalf("err = %v, want a validation error", err)
	}
}

func TestExtractEmbedding(t *testing.T) {
	env := newTestEnv(t, nil)
	out := filepath.Join(env.dir, "emb", "ref.npy")

	res, err := env.rt.extractEmbedding(context.Background(), writeReference(t, env.dir), out)
	if err != nil {
		t.Fatalf("extractEmbedding: %v", err)
	}
	if len(res.Shape) != 1 || res.Shape[0] != testDim {
		t.Errorf("Shape = %v, want [%d]", res.Shape, testDim)
	}
	emb, err := qwentts.ReadEmbeddingFile(out)
	if err != nil {
		t.Fatalf("ReadEmbeddingFile: %v", err)
	}
	if emb.Dim() != testDim {
		t.Errorf("Dim() = %d, want %d", emb.Dim(), testDim)
	}
	if env.loader.model(qwentts.EmbeddingCheckpoint) == nil {
		t.Error("embedding checkpoint was not loaded")
	}
}

func TestExtractEmbedding_MissingAudio(t *testing.T) {
	env := newTestEnv(t, nil)
	_, err := env.rt.extractEmbedding(context.Background(), filepath.Join(env.dir, "nope.wav"), filepath.Join(env.dir, "x.npy"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want os.ErrNotExist", err)
	}
	if n := env.loader.count(); n != 0 {
		t.Errorf("loader called %d times, want 0", n)
	}
}
