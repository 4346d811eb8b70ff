package commands

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/haivivi/qwentts/pkg/artifact"
	"github.com/haivivi/qwentts/pkg/cli"
	"github.com/haivivi/qwentts/pkg/qwenserve"
	"github.com/haivivi/qwentts/pkg/qwentts"
	"github.com/haivivi/qwentts/pkg/voicelib"
)

// createClient creates a model server client from context configuration
func createClient(ctx *cli.Context) *qwenserve.Client {
	var opts []qwenserve.Option

	if ctx.APIKey != "" {
		opts = append(opts, qwenserve.WithAPIKey(ctx.APIKey))
	}
	if ctx.Timeout > 0 {
		opts = append(opts, qwenserve.WithTimeout(ctx.RequestTimeout()))
	}
	if ctx.MaxRetries > 0 {
		opts = append(opts, qwenserve.WithRetry(ctx.MaxRetries))
	}

	return qwenserve.NewClient(ctx.BaseURL, opts...)
}

// runtime holds the objects a command works with. The voice library is
// opened on first use.
type runtime struct {
	ctx        *cli.Context
	paths      *cli.Paths
	client     *qwenserve.Client
	cache      *qwentts.Cache
	dispatcher *qwentts.Dispatcher
	extractor  *qwentts.Extractor
	logger     *slog.Logger

	index   voicelib.Index
	library *voicelib.Library
}

// newRuntime builds a model cache over the context's server.
func newRuntime(ctx *cli.Context) (*runtime, error) {
	plan, err := ctx.DevicePlan()
	if err != nil {
		return nil, err
	}
	precision, err := ctx.ParsePrecision()
	if err != nil {
		return nil, err
	}
	paths, err := cli.NewPaths(appName)
	if err != nil {
		return nil, err
	}

	client := createClient(ctx)
	slog.Debug("using model server", "context", ctx.Name, "url", client.BaseURL(), "device", plan.String())
	cache := qwentts.NewCache(client,
		qwentts.WithDevicePlan(plan),
		qwentts.WithPrecision(precision),
		qwentts.WithMaxModels(ctx.MaxModels),
		qwentts.WithLogger(slog.Default()),
	)
	return newRuntimeWithCache(ctx, paths, cache, client), nil
}

func newRuntimeWithCache(ctx *cli.Context, paths *cli.Paths, cache *qwentts.Cache, client *qwenserve.Client) *runtime {
	return &runtime{
		ctx:        ctx,
		paths:      paths,
		client:     client,
		cache:      cache,
		dispatcher: qwentts.NewDispatcher(cache),
		extractor:  qwentts.NewExtractor(cache),
		logger:     slog.Default(),
	}
}

// currentRuntime resolves the selected context and builds a runtime for it.
func currentRuntime() (*runtime, error) {
	ctx, err := getContext()
	if err != nil {
		return nil, err
	}
	return newRuntime(ctx)
}

// Library opens the saved voice library of the context.
func (r *runtime) Library() (*voicelib.Library, error) {
	if r.library != nil {
		return r.library, nil
	}
	store, err := openStore(r.ctx, r.paths)
	if err != nil {
		return nil, err
	}
	dir := r.paths.VoiceIndexDir(r.ctx)
	index, err := voicelib.OpenBadger(voicelib.BadgerOptions{Dir: dir, Logger: r.logger})
	if err != nil {
		return nil, fmt.Errorf("open voice index %s: %w", dir, err)
	}
	r.useLibrary(index, store)
	return r.library, nil
}

func (r *runtime) useLibrary(index voicelib.Index, store artifact.Store) {
	r.index = index
	r.library = voicelib.New(index, store,
		voicelib.WithEmbedder(r.extractor),
		voicelib.WithLogger(r.logger),
	)
}

// Close unloads every model and closes the voice index.
func (r *runtime) Close() error {
	var errs []error
	if err := r.cache.Close(); err != nil {
		errs = append(errs, err)
	}
	if r.index != nil {
		if err := r.index.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// openStore opens the artifact store configured for ctx: an S3 bucket when
// one is set, otherwise a local directory.
func openStore(ctx *cli.Context, paths *cli.Paths) (artifact.Store, error) {
	if ctx.Store != nil && ctx.Store.S3 != nil {
		cfg := *ctx.Store.S3
		slog.Debug("using S3 store", "bucket", cfg.Bucket, "prefix", cfg.Prefix)
		return artifact.NewS3(artifact.NewS3Client(cfg), cfg.Bucket, cfg.Prefix), nil
	}
	dir := paths.StoreDir(ctx)
	store, err := artifact.NewLocal(dir)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", dir, err)
	}
	return store, nil
}

// printVerbose prints verbose output if enabled
func printVerbose(format string, args ...any) {
	cli.PrintVerbose(verbose, format, args...)
}
