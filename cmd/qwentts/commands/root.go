package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/haivivi/qwentts/pkg/cli"
)

const appName = "qwentts"

var (
	// Global flags
	cfgFile     string
	contextName string
	outputJSON  bool
	outputQuery string
	verbose     bool

	// Global configuration
	globalConfig *cli.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "qwentts",
	Short: "Qwen3-TTS CLI tool",
	Long: `qwentts - A command line interface for Qwen3-TTS.

Synthesizes speech with the Qwen3-TTS checkpoints served by a model server:
  - Custom voice: preset speakers with optional style instructions
  - Voice clone: the voice of a reference recording or saved voice
  - Voice design: a voice described in natural language

Configuration is stored in ~/.giztoy/qwentts/ and supports multiple contexts,
similar to kubectl's context management. Without a context the local server
at http://127.0.0.1:8765 is used.

Examples:
  # Generate speech with a preset speaker
  qwentts generate --text "Hello" --speaker Ryan --output hello.wav

  # Save a voice and reuse it
  qwentts voice save --name "My Voice" --audio ref.wav --ref-text "..."
  qwentts generate --voice my_voice --text "Hello again" --output again.wav

  # Run against a GPU box
  qwentts config add-context gpu --base-url http://gpu:8765 --device cuda
  qwentts -c gpu generate -f request.yaml --output out.wav
`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Command returns the root cobra command for mounting into a parent CLI.
func Command() *cobra.Command {
	return rootCmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// Interrupts cancel the running command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "", "", "config file (default is ~/.giztoy/qwentts/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&contextName, "context", "c", "", "context name to use")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output as JSON (for piping)")
	rootCmd.PersistentFlags().StringVar(&outputQuery, "query", "", "jq expression applied to the result (implies --json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(extractEmbeddingCmd)
	rootCmd.AddCommand(voiceCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(serveCmd)
}

func initConfig() {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	var err error
	globalConfig, err = cli.LoadConfigWithPath(appName, cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %s config: %v\n", appName, err)
	}
}

// getConfig returns the global configuration
func getConfig() (*cli.Config, error) {
	if globalConfig == nil {
		return nil, fmt.Errorf("configuration not initialized")
	}
	return globalConfig, nil
}

// getContext returns the context configuration to use
func getContext() (*cli.Context, error) {
	if globalConfig == nil {
		if contextName != "" {
			return nil, fmt.Errorf("configuration not initialized")
		}
		return &cli.Context{Name: "default"}, nil
	}
	return globalConfig.ResolveContext(contextName)
}

// outputResult prints result as YAML, or JSON with --json or --query.
func outputResult(result any) error {
	format := cli.FormatYAML
	if jsonOutput() {
		format = cli.FormatJSON
	}
	return cli.Output(result, cli.OutputOptions{Format: format, Query: outputQuery})
}

// outputTable prints a table, or JSON with --json or --query.
func outputTable(result cli.Table) error {
	format := cli.FormatTable
	if jsonOutput() {
		format = cli.FormatJSON
	}
	return cli.Output(result, cli.OutputOptions{Format: format, Query: outputQuery})
}

func jsonOutput() bool {
	return outputJSON || outputQuery != ""
}
