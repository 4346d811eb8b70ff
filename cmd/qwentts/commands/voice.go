package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/haivivi/qwentts/pkg/cli"
	"github.com/haivivi/qwentts/pkg/voicelib"
)

var voiceCmd = &cobra.Command{
	Use:   "voice",
	Short: "Manage saved voices",
	Long: `Manage the library of saved voices.

A saved voice keeps a reference recording, its transcript and a cached
speaker embedding. Use it with 'generate --voice <id>'.

Voices live in the context's store (a local directory or an S3 bucket) with
their metadata in a local index.`,
}

var voiceSaveFlags struct {
	name    string
	audio   string
	refText string
}

var voiceSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save a reference recording as a voice",
	Long: `Save a reference recording as a reusable voice.

The voice id is derived from the name: lower case, with every character
outside a-z and 0-9 replaced by an underscore. Saving a name that maps to an
existing id replaces that voice.

Examples:
  qwentts voice save --name "My Voice" --audio ref.wav --ref-text "Hello there."`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, lib, err := openLibrary()
		if err != nil {
			return err
		}
		defer rt.Close()

		v, err := lib.Save(cmd.Context(), voicelib.SaveRequest{
			Name:      voiceSaveFlags.name,
			RefText:   voiceSaveFlags.refText,
			AudioPath: voiceSaveFlags.audio,
		})
		if err != nil {
			return err
		}
		if jsonOutput() {
			return outputResult(v)
		}
		cli.PrintSuccess("Voice %q saved as %s", v.Name, v.ID)
		if !v.HasEmbedding {
			cli.PrintWarning("No speaker embedding cached; generation will process the recording")
		}
		return nil
	},
}

var voiceListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List saved voices",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, lib, err := openLibrary()
		if err != nil {
			return err
		}
		defer rt.Close()

		voices, err := lib.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(voices) == 0 && !jsonOutput() {
			fmt.Println("No saved voices")
			return nil
		}
		return outputTable(voiceTable(nonNil(voices)))
	},
}

var voiceShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a saved voice",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, lib, err := openLibrary()
		if err != nil {
			return err
		}
		defer rt.Close()

		v, err := lib.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if jsonOutput() {
			return outputResult(v)
		}
		fmt.Print(voiceDetails(v))
		return nil
	},
}

var voiceDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a saved voice and its files",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, lib, err := openLibrary()
		if err != nil {
			return err
		}
		defer rt.Close()

		if err := lib.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		cli.PrintSuccess("Voice %s deleted", args[0])
		return nil
	},
}

var voiceRenameCmd = &cobra.Command{
	Use:   "rename <id> <name>",
	Short: "Change the display name of a saved voice",
	Long: `Change the display name of a saved voice. The id does not change.

Examples:
  qwentts voice rename my_voice "Narrator"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, lib, err := openLibrary()
		if err != nil {
			return err
		}
		defer rt.Close()

		v, err := lib.Rename(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		if jsonOutput() {
			return outputResult(v)
		}
		cli.PrintSuccess("Voice %s renamed to %q", v.ID, v.Name)
		return nil
	},
}

var voiceMatchFlags struct {
	audio string
	limit int
}

var voiceMatchCmd = &cobra.Command{
	Use:   "match",
	Short: "Find the saved voices closest to a recording",
	Long: `Extract the speaker embedding of a recording and rank the saved voices
by cosine similarity to it.

Examples:
  qwentts voice match --audio unknown.wav --limit 3`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, lib, err := openLibrary()
		if err != nil {
			return err
		}
		defer rt.Close()

		emb, err := rt.extractor.Extract(cmd.Context(), voiceMatchFlags.audio)
		if err != nil {
			return err
		}
		printVerbose("Query fingerprint: %s", voicelib.Fingerprint(emb.Vector))
		matches, err := lib.Match(cmd.Context(), emb.Vector, voiceMatchFlags.limit)
		if err != nil {
			return err
		}
		if len(matches) == 0 && !jsonOutput() {
			fmt.Println("No saved voices with a cached embedding")
			return nil
		}
		return outputTable(matchTable(matches))
	},
}

func init() {
	voiceSaveCmd.Flags().StringVar(&voiceSaveFlags.name, "name", "", "voice name (required)")
	voiceSaveCmd.Flags().StringVar(&voiceSaveFlags.audio, "audio", "", "reference recording (required)")
	voiceSaveCmd.Flags().StringVar(&voiceSaveFlags.refText, "ref-text", "", "transcript of the recording")
	_ = voiceSaveCmd.MarkFlagRequired("name")
	_ = voiceSaveCmd.MarkFlagRequired("audio")

	voiceMatchCmd.Flags().StringVar(&voiceMatchFlags.audio, "audio", "", "recording to match (required)")
	voiceMatchCmd.Flags().IntVar(&voiceMatchFlags.limit, "limit", 5, "maximum number of matches, 0 for all")
	_ = voiceMatchCmd.MarkFlagRequired("audio")

	voiceCmd.AddCommand(voiceSaveCmd)
	voiceCmd.AddCommand(voiceListCmd)
	voiceCmd.AddCommand(voiceShowCmd)
	voiceCmd.AddCommand(voiceDeleteCmd)
	voiceCmd.AddCommand(voiceRenameCmd)
	voiceCmd.AddCommand(voiceMatchCmd)
}

func openLibrary() (*runtime, *voicelib.Library, error) {
	rt, err := currentRuntime()
	if err != nil {
		return nil, nil, err
	}
	lib, err := rt.Library()
	if err != nil {
		rt.Close()
		return nil, nil, err
	}
	return rt, lib, nil
}

type voiceTable []*voicelib.Voice

func (voiceTable) Header() []string {
	return []string{"ID", "NAME", "EMBEDDING", "FINGERPRINT", "CREATED"}
}

func (t voiceTable) Rows() [][]string {
	rows := make([][]string, len(t))
	for i, v := range t {
		rows[i] = []string{v.ID, v.Name, embeddingLabel(v), orDash(v.Fingerprint), v.CreatedAt.Local().Format(time.DateTime)}
	}
	return rows
}

type matchTable []voicelib.Match

func (matchTable) Header() []string {
	return []string{"ID", "NAME", "SIMILARITY", "FINGERPRINT"}
}

func (t matchTable) Rows() [][]string {
	rows := make([][]string, len(t))
	for i, m := range t {
		rows[i] = []string{m.Voice.ID, m.Voice.Name, strconv.FormatFloat(m.Similarity, 'f', 3, 64), orDash(m.Voice.Fingerprint)}
	}
	return rows
}

func voiceDetails(v *voicelib.Voice) string {
	updated := ""
	if !v.UpdatedAt.IsZero() {
		updated = v.UpdatedAt.Local().Format(time.DateTime)
	}
	return cli.Details(cli.DefaultStyles, v.ID,
		cli.Field{Label: "Name", Value: v.Name},
		cli.Field{Label: "Ref text", Value: v.RefText},
		cli.Field{Label: "Embedding", Value: embeddingLabel(v)},
		cli.Field{Label: "Fingerprint", Value: v.Fingerprint},
		cli.Field{Label: "Audio", Value: v.AudioPath()},
		cli.Field{Label: "Created", Value: v.CreatedAt.Local().Format(time.DateTime)},
		cli.Field{Label: "Updated", Value: updated},
	)
}

func embeddingLabel(v *voicelib.Voice) string {
	if !v.HasEmbedding {
		return "-"
	}
	if v.EmbeddingDim > 0 {
		return cli.FormatShape([]int{v.EmbeddingDim})
	}
	return "yes"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
