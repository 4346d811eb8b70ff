package commands

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/haivivi/qwentts/pkg/artifact"
	"github.com/haivivi/qwentts/pkg/cli"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI configuration",
	Long: `Manage CLI configuration and contexts.

Contexts allow you to manage multiple model servers and stores,
similar to kubectl's context management.

Configuration is stored in ~/.giztoy/qwentts/config.yaml`,
}

var configAddContextCmd = &cobra.Command{
	Use:   "add-context <name>",
	Short: "Add a new context",
	Long: `Add a new context with the specified name, replacing any context
with the same name.

Example:
  qwentts config add-context local
  qwentts config add-context gpu --base-url http://gpu:8765 --device cuda --fallback-device cpu
  qwentts config add-context shared --s3-bucket voices --s3-region us-east-1`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		ctx, err := contextFromFlags(cmd)
		if err != nil {
			return err
		}
		if err := cfg.AddContext(args[0], ctx); err != nil {
			return err
		}

		cli.PrintSuccess("Context %q added successfully", args[0])
		return nil
	},
}

func contextFromFlags(cmd *cobra.Command) (*cli.Context, error) {
	f := cmd.Flags()
	str := func(name string) string {
		v, _ := f.GetString(name)
		return v
	}
	num := func(name string) int {
		v, _ := f.GetInt(name)
		return v
	}

	ctx := &cli.Context{
		BaseURL:    str("base-url"),
		APIKey:     str("api-key"),
		Timeout:    num("timeout"),
		MaxRetries: num("max-retries"),
		Precision:  str("precision"),
		MaxModels:  num("max-models"),
		IndexDir:   str("index-dir"),
	}
	if primary, fallback := str("device"), str("fallback-device"); primary != "" || fallback != "" {
		ctx.Device = &cli.DeviceConfig{Primary: primary, Fallback: fallback}
	}
	if model, speaker, language := str("default-model"), str("default-speaker"), str("default-language"); model != "" || speaker != "" || language != "" {
		ctx.Defaults = &cli.Defaults{Model: model, Speaker: speaker, Language: language}
	}
	if dir, bucket := str("store-dir"), str("s3-bucket"); dir != "" || bucket != "" {
		ctx.Store = &cli.StoreConfig{Dir: dir}
		if bucket != "" {
			pathStyle, _ := f.GetBool("s3-path-style")
			ctx.Store.S3 = &artifact.S3Config{
				Bucket:       bucket,
				Prefix:       str("s3-prefix"),
				Region:       str("s3-region"),
				Endpoint:     str("s3-endpoint"),
				UsePathStyle: pathStyle,
			}
		}
	}
	return ctx, ctx.Validate()
}

var configDeleteContextCmd = &cobra.Command{
	Use:   "delete-context <name>",
	Short: "Delete a context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		if err := cfg.DeleteContext(args[0]); err != nil {
			return err
		}

		cli.PrintSuccess("Context %q deleted", args[0])
		return nil
	},
}

var configUseContextCmd = &cobra.Command{
	Use:   "use-context <name>",
	Short: "Set the current context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		if err := cfg.UseContext(args[0]); err != nil {
			return err
		}

		cli.PrintSuccess("Switched to context %q", args[0])
		return nil
	},
}

var configGetContextCmd = &cobra.Command{
	Use:   "get-context",
	Short: "Display the current context",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}

		if cfg.CurrentContext == "" {
			fmt.Println("No current context set")
			return nil
		}

		fmt.Println(cfg.CurrentContext)
		return nil
	},
}

var configListContextsCmd = &cobra.Command{
	Use:     "list-contexts",
	Aliases: []string{"get-contexts"},
	Short:   "List all contexts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}

		if len(cfg.Contexts) == 0 {
			fmt.Println("No contexts configured")
			return nil
		}

		names := cfg.ListContexts()
		sort.Strings(names)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "CURRENT\tNAME\tBASE_URL\tDEVICE\tSTORE")
		for _, name := range names {
			ctx := cfg.Contexts[name]
			current := ""
			if name == cfg.CurrentContext {
				current = "*"
			}
			baseURL := ctx.BaseURL
			if baseURL == "" {
				baseURL = "(default)"
			}
			device := "(default)"
			if plan, err := ctx.DevicePlan(); err == nil && ctx.Device != nil {
				device = plan.String()
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", current, name, baseURL, device, storeLabel(ctx))
		}

		return w.Flush()
	},
}

var configViewCmd = &cobra.Command{
	Use:   "view",
	Short: "View the current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}

		fmt.Printf("Config file: %s\n", cfg.Path())
		fmt.Printf("Current context: %s\n", cfg.CurrentContext)
		fmt.Printf("Contexts: %d\n", len(cfg.Contexts))

		names := cfg.ListContexts()
		sort.Strings(names)
		for _, name := range names {
			ctx := cfg.Contexts[name]
			plan, _ := ctx.DevicePlan()
			precision, _ := ctx.ParsePrecision()
			fields := []cli.Field{
				{Label: "Base URL", Value: ctx.BaseURL},
				{Label: "API Key", Value: cli.MaskAPIKey(ctx.APIKey)},
				{Label: "Device", Value: plan.String()},
				{Label: "Precision", Value: string(precision)},
				{Label: "Store", Value: storeLabel(ctx)},
				{Label: "Index", Value: ctx.IndexDir},
			}
			if ctx.Timeout > 0 {
				fields = append(fields, cli.Field{Label: "Timeout", Value: strconv.Itoa(ctx.Timeout) + "s"})
			}
			if ctx.MaxModels > 0 {
				fields = append(fields, cli.Field{Label: "Max models", Value: strconv.Itoa(ctx.MaxModels)})
			}
			if d := ctx.Defaults; d != nil {
				fields = append(fields,
					cli.Field{Label: "Default model", Value: d.Model},
					cli.Field{Label: "Default speaker", Value: d.Speaker},
					cli.Field{Label: "Default language", Value: d.Language},
				)
			}
			fmt.Println()
			fmt.Print(cli.Details(cli.DefaultStyles, name, fields...))
		}

		return nil
	},
}

func storeLabel(ctx *cli.Context) string {
	switch {
	case ctx.Store == nil:
		return "(default)"
	case ctx.Store.S3 != nil:
		if ctx.Store.S3.Prefix != "" {
			return "s3://" + ctx.Store.S3.Bucket + "/" + ctx.Store.S3.Prefix
		}
		return "s3://" + ctx.Store.S3.Bucket
	case ctx.Store.Dir != "":
		return ctx.Store.Dir
	}
	return "(default)"
}

func init() {
	f := configAddContextCmd.Flags()
	f.String("base-url", "", "model server URL (default http://127.0.0.1:8765)")
	f.String("api-key", "", "bearer token for the model server")
	f.Int("timeout", 0, "request timeout in seconds")
	f.Int("max-retries", 0, "maximum retries")
	f.String("device", "", "load device: auto, cuda, cuda:N, mps or cpu (default mps)")
	f.String("fallback-device", "", "device tried when the load device fails (default cpu)")
	f.String("precision", "", "weight dtype: float32, float16 or bfloat16")
	f.Int("max-models", 0, "maximum resident models, 0 for no limit")
	f.String("default-model", "", "default model size")
	f.String("default-speaker", "", "default preset speaker")
	f.String("default-language", "", "default language")
	f.String("store-dir", "", "local directory for saved voices and served audio")
	f.String("index-dir", "", "voice index directory")
	f.String("s3-bucket", "", "S3 bucket for saved voices and served audio")
	f.String("s3-prefix", "", "key prefix inside the bucket")
	f.String("s3-region", "", "bucket region")
	f.String("s3-endpoint", "", "S3 compatible endpoint URL")
	f.Bool("s3-path-style", false, "use path style bucket addressing")

	configCmd.AddCommand(configAddContextCmd)
	configCmd.AddCommand(configDeleteContextCmd)
	configCmd.AddCommand(configUseContextCmd)
	configCmd.AddCommand(configGetContextCmd)
	configCmd.AddCommand(configListContextsCmd)
	configCmd.AddCommand(configViewCmd)
}
