package commands

import (
	"bytes"
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haivivi/qwentts/pkg/cli"
	"github.com/haivivi/qwentts/pkg/qwentts"
)

var embFlags struct {
	audio  string
	output string
}

var extractEmbeddingCmd = &cobra.Command{
	Use:   "extract-embedding",
	Short: "Extract a speaker embedding from a reference recording",
	Long: `Extract the speaker embedding of a reference recording with the
0.6B base checkpoint and save it as a .npy array.

The saved file can be passed to 'generate --speaker-embedding' to clone the
voice without processing the recording again.

Examples:
  qwentts extract-embedding --audio ref.wav --output ref.npy`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := currentRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()

		res, err := rt.extractEmbedding(cmd.Context(), embFlags.audio, embFlags.output)
		if err != nil {
			return err
		}
		if jsonOutput() {
			return outputResult(res)
		}
		fmt.Printf("Speaker embedding saved to: %s\n", res.Output)
		fmt.Printf("Embedding shape: %s\n", cli.FormatShape(res.Shape))
		return nil
	},
}

func init() {
	extractEmbeddingCmd.Flags().StringVar(&embFlags.audio, "audio", "", "reference recording (required)")
	extractEmbeddingCmd.Flags().StringVarP(&embFlags.output, "output", "o", "", "output .npy file (required)")
	_ = extractEmbeddingCmd.MarkFlagRequired("audio")
	_ = extractEmbeddingCmd.MarkFlagRequired("output")
}

type embeddingResult struct {
	Audio  string `json:"audio" yaml:"audio"`
	Output string `json:"output" yaml:"output"`
	Shape  []int  `json:"shape" yaml:"shape"`
}

func (r *runtime) extractEmbedding(ctx context.Context, audio, output string) (*embeddingResult, error) {
	if audio == "" || output == "" {
		return nil, fmt.Errorf("--audio and --output are required")
	}
	r.logger.Info("extracting embedding", "audio", audio, "checkpoint", qwentts.EmbeddingCheckpoint)
	emb, err := r.extractor.Extract(ctx, audio)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := emb.Write(&buf); err != nil {
		return nil, err
	}
	if err := cli.OutputBytes(buf.Bytes(), output); err != nil {
		return nil, err
	}
	return &embeddingResult{Audio: audio, Output: output, Shape: emb.Shape}, nil
}
