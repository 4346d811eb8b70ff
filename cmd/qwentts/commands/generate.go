package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/haivivi/qwentts/pkg/audio/pcm"
	"github.com/haivivi/qwentts/pkg/audio/resampler"
	"github.com/haivivi/qwentts/pkg/audio/wav"
	"github.com/haivivi/qwentts/pkg/cli"
	"github.com/haivivi/qwentts/pkg/qwentts"
)

type generateFlags struct {
	file             string
	text             string
	mode             string
	model            string
	speaker          string
	language         string
	instruct         string
	refAudio         string
	refText          string
	voiceDescription string
	speakerEmbedding string
	voice            string
	sampleRate       int
	output           string
}

var genFlags generateFlags

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Synthesize speech to an audio file",
	Long: `Synthesize speech with one of the three generation modes.

The output is a 16-bit mono WAV file, or raw 16-bit PCM when the output path
ends in .pcm (16, 24 or 48 kHz only).

Flags override the fields of a request file given with -f. Unset speaker,
language and model come from the context defaults, then Ryan, English and
0.6B.

Example request file (clone.yaml):
  mode: voice_clone
  text: This is my cloned voice.
  language: English
  ref_audio: ./reference.wav
  ref_text: The quick brown fox jumps over the lazy dog.

Examples:
  qwentts generate --text "Hello" --output hello.wav
  qwentts generate --mode voice_design --voice-description "A warm, low narrator" \
      --text "Once upon a time" --output story.wav
  qwentts generate --mode voice_clone --ref-audio ref.wav --text "Hi" --output hi.wav
  qwentts generate --voice my_voice --text "Hi" --output hi.wav --sample-rate 16000
  qwentts generate -f clone.yaml --output clone.wav`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := genFlags.params(cmd.Flags())
		if err != nil {
			return err
		}

		rt, err := currentRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()

		res, err := rt.generate(cmd.Context(), generateJob{
			Params:     p,
			Voice:      genFlags.voice,
			SampleRate: genFlags.sampleRate,
			Output:     genFlags.output,
		})
		if err != nil {
			return err
		}

		if jsonOutput() {
			return outputResult(res)
		}
		printVerbose("Mode: %s, checkpoint: %s", res.Mode, res.Checkpoint)
		printVerbose("Duration: %s at %s", cli.FormatDuration(res.Duration()), cli.FormatSampleRate(res.SampleRate))
		fmt.Printf("Saved to: %s\n", res.Output)
		return nil
	},
}

func init() {
	genFlags.bind(generateCmd.Flags())
	_ = generateCmd.MarkFlagRequired("output")
}

func (g *generateFlags) bind(f *pflag.FlagSet) {
	f.StringVarP(&g.file, "file", "f", "", "request file (YAML or JSON, - for stdin)")
	f.StringVar(&g.text, "text", "", "text to synthesize")
	f.StringVar(&g.mode, "mode", "", "generation mode: custom_voice, voice_clone or voice_design (default custom_voice)")
	f.StringVar(&g.model, "model", "", "model size: 0.6B or 1.7B (default 0.6B)")
	f.StringVar(&g.speaker, "speaker", "", "preset speaker for custom_voice (default Ryan)")
	f.StringVar(&g.language, "language", "", "language (default English)")
	f.StringVar(&g.instruct, "instruct", "", "style instruction for custom_voice")
	f.StringVar(&g.refAudio, "ref-audio", "", "reference recording for voice_clone")
	f.StringVar(&g.refText, "ref-text", "", "transcript of the reference recording")
	f.StringVar(&g.voiceDescription, "voice-description", "", "voice description for voice_design")
	f.StringVar(&g.speakerEmbedding, "speaker-embedding", "", "cached .npy speaker embedding for voice_clone")
	f.StringVar(&g.voice, "voice", "", "saved voice id (implies voice_clone)")
	f.IntVar(&g.sampleRate, "sample-rate", 0, "resample the output to this rate in Hz")
	f.StringVarP(&g.output, "output", "o", "", "output audio file (.wav or .pcm)")
}

// params merges the request file and the flags that were set.
func (g *generateFlags) params(flags *pflag.FlagSet) (qwentts.Params, error) {
	var p qwentts.Params
	if g.file != "" {
		var doc map[string]any
		if err := cli.LoadRequest(g.file, &doc); err != nil {
			return p, err
		}
		var err error
		if p, err = qwentts.ParamsFromDocument(doc); err != nil {
			return p, fmt.Errorf("%s: %w", g.file, err)
		}
	}

	set := func(name string, dst *string, v string) {
		if flags.Changed(name) {
			*dst = v
		}
	}
	set("text", &p.Text, g.text)
	set("model", &p.Model, g.model)
	set("speaker", &p.Speaker, g.speaker)
	set("language", &p.Language, g.language)
	set("instruct", &p.Instruct, g.instruct)
	set("ref-audio", &p.RefAudio, g.refAudio)
	set("ref-text", &p.RefText, g.refText)
	set("voice-description", &p.VoiceDescription, g.voiceDescription)
	set("speaker-embedding", &p.SpeakerEmbedding, g.speakerEmbedding)
	if flags.Changed("mode") {
		mode, err := qwentts.ParseMode(g.mode)
		if err != nil {
			return p, err
		}
		p.Mode = mode
	}
	return p, nil
}

// generateJob is one generate invocation.
type generateJob struct {
	Params qwentts.Params

	// Voice is a saved voice id. It selects voice clone when Params.Mode
	// is empty.
	Voice string

	// SampleRate resamples the output when positive.
	SampleRate int

	// Output is the destination file.
	Output string
}

// generateResult describes a written output file.
type generateResult struct {
	Output     string       `json:"output" yaml:"output"`
	Mode       qwentts.Mode `json:"mode" yaml:"mode"`
	Checkpoint string       `json:"checkpoint" yaml:"checkpoint"`
	SampleRate int          `json:"sample_rate" yaml:"sample_rate"`
	Samples    int          `json:"samples" yaml:"samples"`
	Seconds    float64      `json:"seconds" yaml:"seconds"`
}

func (r *generateResult) Duration() time.Duration {
	return time.Duration(r.Seconds * float64(time.Second))
}

func (r *runtime) generate(ctx context.Context, job generateJob) (*generateResult, error) {
	if job.Output == "" {
		return nil, fmt.Errorf("--output is required")
	}
	p := job.Params
	if job.Voice != "" {
		if p.Mode == "" {
			p.Mode = qwentts.ModeVoiceClone
		}
		if p.Mode != qwentts.ModeVoiceClone {
			return nil, fmt.Errorf("--voice requires mode %s, got %s", qwentts.ModeVoiceClone, p.Mode)
		}
	}
	r.ctx.Apply(&p)

	req, err := p.Request()
	if err != nil {
		return nil, err
	}
	size, err := p.Size()
	if err != nil {
		return nil, err
	}
	checkpoint, err := qwentts.ResolveCheckpoint(req.Mode(), size)
	if err != nil {
		return nil, err
	}

	if job.Voice != "" {
		lib, err := r.Library()
		if err != nil {
			return nil, err
		}
		release, err := lib.Apply(ctx, job.Voice, req.(*qwentts.VoiceCloneRequest))
		defer release()
		if err != nil {
			return nil, err
		}
	}

	r.logger.Info("generating", "mode", req.Mode(), "model", size, "chars", len([]rune(p.Text)))
	audio, err := r.dispatcher.Generate(ctx, size, req)
	if err != nil {
		return nil, err
	}

	samples, rate := audio.Samples, audio.SampleRate
	if job.SampleRate > 0 && job.SampleRate != rate {
		samples, err = resampler.Resample(samples, rate, job.SampleRate)
		if err != nil {
			return nil, err
		}
		rate = job.SampleRate
	}
	if err := writeAudio(job.Output, samples, rate); err != nil {
		return nil, err
	}

	return &generateResult{
		Output:     job.Output,
		Mode:       req.Mode(),
		Checkpoint: checkpoint,
		SampleRate: rate,
		Samples:    len(samples),
		Seconds:    (&qwentts.Audio{Samples: samples, SampleRate: rate}).Duration().Seconds(),
	}, nil
}

// writeAudio writes samples as WAV, or as raw little-endian 16-bit PCM when
// path ends in .pcm.
func writeAudio(path string, samples []float32, rate int) (err error) {
	if !strings.EqualFold(filepath.Ext(path), ".pcm") {
		return wav.WriteFile(path, samples, rate)
	}

	format, err := pcm.FormatForRate(rate)
	if err != nil {
		return fmt.Errorf("raw output: %w", err)
	}
	if err := cli.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	chunk := format.Float32Chunk(samples)
	if _, err := chunk.WriteTo(f); err != nil {
		return err
	}
	slog.Debug("wrote raw pcm", "format", format.String(), "duration", format.Duration(chunk.Len()), "path", path)
	return nil
}
