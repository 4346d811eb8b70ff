package qwenserve

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/haivivi/qwentts/pkg/qwentts"
)

const (
	// DefaultBaseURL is where a locally started model server listens.
	DefaultBaseURL = "http://127.0.0.1:8765"

	// DefaultTimeout bounds a single request. Generation and loads on CPU
	// are slow, so this is generous.
	DefaultTimeout = 10 * time.Minute

	// DefaultMaxRetries is the default maximum number of retries.
	DefaultMaxRetries = 2

	// DefaultBackoff is the delay before the first retry. It doubles on
	// every further attempt.
	DefaultBackoff = time.Second
)

// Client talks to a model server.
type Client struct {
	config *clientConfig
	http   *httpClient
}

type clientConfig struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	maxRetries int
	backoff    time.Duration
	logger     *slog.Logger
}

// Option is a function that configures the client.
type Option func(*clientConfig)

// WithAPIKey sets the bearer token sent with every request.
func WithAPIKey(key string) Option {
	return func(c *clientConfig) {
		c.apiKey = key
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) {
		c.httpClient = client
	}
}

// WithTimeout sets the request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *clientConfig) {
		c.timeout = timeout
	}
}

// WithRetry sets the maximum number of retries for transient errors.
func WithRetry(maxRetries int) Option {
	return func(c *clientConfig) {
		c.maxRetries = maxRetries
	}
}

// WithBackoff sets the delay before the first retry.
func WithBackoff(d time.Duration) Option {
	return func(c *clientConfig) {
		c.backoff = d
	}
}

// WithLogger sets the logger used for retries.
func WithLogger(l *slog.Logger) Option {
	return func(c *clientConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a client for the server at baseURL. An empty baseURL
// means DefaultBaseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	cfg := &clientConfig{
		baseURL:    baseURL,
		timeout:    DefaultTimeout,
		maxRetries: DefaultMaxRetries,
		backoff:    DefaultBackoff,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.httpClient == nil {
		cfg.httpClient = &http.Client{
			Timeout: cfg.timeout,
		}
	}
	return &Client{
		config: cfg,
		http:   newHTTPClient(cfg),
	}
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.config.baseURL
}

// Load asks the server to load a checkpoint and returns a handle to it.
func (c *Client) Load(ctx context.Context, spec qwentts.LoadSpec) (qwentts.Model, error) {
	req := &loadRequest{
		Checkpoint: spec.Checkpoint,
		DeviceMap:  string(spec.Device),
		DType:      string(spec.Precision),
	}
	var resp loadResponse
	if err := c.http.request(ctx, http.MethodPost, "/v1/models", req, &resp); err != nil {
		return nil, err
	}
	device := qwentts.Device(resp.Device)
	if device == "" {
		device = spec.Device
	}
	return &RemoteModel{
		client:     c,
		id:         resp.ModelID,
		checkpoint: spec.Checkpoint,
		device:     device,
		sampleRate: resp.SampleRate,
		dim:        resp.EmbeddingDim,
	}, nil
}

// Health reports server status and the devices it can place models on.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.http.request(ctx, http.MethodGet, "/v1/health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

var _ qwentts.Loader = (*Client)(nil)
