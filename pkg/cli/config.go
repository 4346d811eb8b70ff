package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/haivivi/qwentts/pkg/artifact"
	"github.com/haivivi/qwentts/pkg/qwentts"
)

const (
	// DefaultBaseDir is the base configuration directory name
	DefaultBaseDir = ".giztoy"
	// DefaultConfigFile is the default configuration filename
	DefaultConfigFile = "config.yaml"
)

// Config represents the main configuration structure for a CLI app
type Config struct {
	// AppName is the application name, e.g. "qwentts"
	AppName string `yaml:"-"`

	// CurrentContext is the name of the currently active context
	CurrentContext string `yaml:"current_context,omitempty"`

	// Contexts is a map of context name to context configuration
	Contexts map[string]*Context `yaml:"contexts,omitempty"`

	// configPath is the path to the config file
	configPath string
}

// Context is one named model server configuration.
type Context struct {
	// Name is the context name
	Name string `yaml:"name"`

	// BaseURL is the model server URL (optional, uses default if empty)
	BaseURL string `yaml:"base_url,omitempty"`

	// APIKey is sent as a bearer token when set
	APIKey string `yaml:"api_key,omitempty"`

	// Timeout is the request timeout in seconds (optional)
	Timeout int `yaml:"timeout,omitempty"`

	// MaxRetries is the maximum number of retries (optional)
	MaxRetries int `yaml:"max_retries,omitempty"`

	// Device is the load device and its fallback
	Device *DeviceConfig `yaml:"device,omitempty"`

	// Precision is the weight dtype: float32, float16 or bfloat16
	Precision string `yaml:"precision,omitempty"`

	// MaxModels bounds the resident model handles; zero keeps all
	MaxModels int `yaml:"max_models,omitempty"`

	// Defaults fill generation parameters the caller leaves empty
	Defaults *Defaults `yaml:"defaults,omitempty"`

	// Store is where saved voices and served audio live
	Store *StoreConfig `yaml:"store,omitempty"`

	// IndexDir holds the saved voice index (default ~/.giztoy/<app>/data/index)
	IndexDir string `yaml:"index_dir,omitempty"`
}

// DeviceConfig names the primary device and the device tried when it fails.
type DeviceConfig struct {
	Primary  string `yaml:"primary,omitempty"`
	Fallback string `yaml:"fallback,omitempty"`
}

// Defaults are per-context generation defaults.
type Defaults struct {
	Model    string `yaml:"model,omitempty"`
	Speaker  string `yaml:"speaker,omitempty"`
	Language string `yaml:"language,omitempty"`
}

// StoreConfig selects the artifact store. When S3 is set it takes
// precedence over Dir.
type StoreConfig struct {
	// Dir is a local directory (default ~/.giztoy/<app>/data)
	Dir string `yaml:"dir,omitempty"`

	// S3 is an S3 compatible bucket
	S3 *artifact.S3Config `yaml:"s3,omitempty"`
}

// LoadConfig loads or creates configuration for the specified app
func LoadConfig(appName string) (*Config, error) {
	return LoadConfigWithPath(appName, "")
}

// LoadConfigWithPath loads configuration from a custom path
func LoadConfigWithPath(appName, customPath string) (*Config, error) {
	var configPath string

	if customPath != "" {
		configPath = customPath
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configPath = filepath.Join(home, DefaultBaseDir, appName, DefaultConfigFile)
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	cfg := &Config{
		AppName:    appName,
		Contexts:   make(map[string]*Context),
		configPath: configPath,
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, cfg.Save()
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Contexts == nil {
		cfg.Contexts = make(map[string]*Context)
	}
	for name, ctx := range cfg.Contexts {
		if ctx == nil {
			return nil, fmt.Errorf("context %q is empty", name)
		}
		ctx.Name = name
	}

	cfg.AppName = appName
	cfg.configPath = configPath

	return cfg, nil
}

// Save saves the configuration to disk
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(c.configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Path returns the config file path
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the config directory path
func (c *Config) Dir() string {
	return filepath.Dir(c.configPath)
}

// AddContext validates ctx and stores it under name, replacing any context
// with the same name.
func (c *Config) AddContext(name string, ctx *Context) error {
	if name == "" {
		return fmt.Errorf("context name is required")
	}
	if err := ctx.Validate(); err != nil {
		return fmt.Errorf("context %q: %w", name, err)
	}
	ctx.Name = name
	c.Contexts[name] = ctx
	return c.Save()
}

// DeleteContext removes a context
func (c *Config) DeleteContext(name string) error {
	if _, ok := c.Contexts[name]; !ok {
		return fmt.Errorf("context %q not found", name)
	}
	delete(c.Contexts, name)
	if c.CurrentContext == name {
		c.CurrentContext = ""
	}
	return c.Save()
}

// UseContext sets the current context
func (c *Config) UseContext(name string) error {
	if _, ok := c.Contexts[name]; !ok {
		return fmt.Errorf("context %q not found", name)
	}
	c.CurrentContext = name
	return c.Save()
}

// GetContext returns a specific context
func (c *Config) GetContext(name string) (*Context, error) {
	ctx, ok := c.Contexts[name]
	if !ok {
		return nil, fmt.Errorf("context %q not found", name)
	}
	return ctx, nil
}

// GetCurrentContext returns the current context
func (c *Config) GetCurrentContext() (*Context, error) {
	if c.CurrentContext == "" {
		return nil, fmt.Errorf("no current context set")
	}
	return c.GetContext(c.CurrentContext)
}

// ResolveContext returns the context by name, or the current context if
// name is empty. With neither a name nor a current context it returns an
// empty context, which talks to the default local server.
func (c *Config) ResolveContext(name string) (*Context, error) {
	if name != "" {
		return c.GetContext(name)
	}
	if c.CurrentContext == "" {
		return &Context{Name: "default"}, nil
	}
	return c.GetCurrentContext()
}

// ListContexts returns all context names
func (c *Config) ListContexts() []string {
	names := make([]string, 0, len(c.Contexts))
	for name := range c.Contexts {
		names = append(names, name)
	}
	return names
}

// Validate checks the enumerated fields of the context.
func (ctx *Context) Validate() error {
	if _, err := ctx.DevicePlan(); err != nil {
		return err
	}
	if _, err := ctx.ParsePrecision(); err != nil {
		return err
	}
	if ctx.Defaults != nil && ctx.Defaults.Model != "" {
		if _, err := qwentts.ParseModelSize(ctx.Defaults.Model); err != nil {
			return err
		}
	}
	if ctx.Timeout < 0 || ctx.MaxRetries < 0 || ctx.MaxModels < 0 {
		return fmt.Errorf("timeout, max_retries and max_models must not be negative")
	}
	if ctx.Store != nil && ctx.Store.S3 != nil && ctx.Store.S3.Bucket == "" {
		return fmt.Errorf("store.s3.bucket is required")
	}
	return nil
}

// DevicePlan returns the configured device plan, or the default plan when
// no device is configured.
func (ctx *Context) DevicePlan() (qwentts.DevicePlan, error) {
	if ctx.Device == nil || (ctx.Device.Primary == "" && ctx.Device.Fallback == "") {
		return qwentts.DefaultDevicePlan, nil
	}
	var plan qwentts.DevicePlan
	if ctx.Device.Primary != "" {
		d, err := qwentts.ParseDevice(ctx.Device.Primary)
		if err != nil {
			return plan, err
		}
		plan.Primary = d
	}
	if ctx.Device.Fallback != "" {
		d, err := qwentts.ParseDevice(ctx.Device.Fallback)
		if err != nil {
			return plan, err
		}
		plan.Fallback = d
	}
	return plan, nil
}

// ParsePrecision returns the configured weight dtype, float32 when unset.
func (ctx *Context) ParsePrecision() (qwentts.Precision, error) {
	switch p := qwentts.Precision(strings.ToLower(ctx.Precision)); p {
	case "":
		return qwentts.PrecisionFloat32, nil
	case qwentts.PrecisionFloat32, qwentts.PrecisionFloat16, qwentts.PrecisionBFloat16:
		return p, nil
	}
	return "", fmt.Errorf("unknown precision %q", ctx.Precision)
}

// RequestTimeout returns Timeout as a duration, zero when unset.
func (ctx *Context) RequestTimeout() time.Duration {
	return time.Duration(ctx.Timeout) * time.Second
}

// Apply fills the empty fields of p from the context defaults and the
// built-in defaults, in that order.
func (ctx *Context) Apply(p *qwentts.Params) {
	d := Defaults{}
	if ctx.Defaults != nil {
		d = *ctx.Defaults
	}
	if p.Model == "" {
		p.Model = d.Model
	}
	if p.Speaker == "" {
		p.Speaker = firstNonEmpty(d.Speaker, qwentts.DefaultSpeaker)
	}
	if p.Language == "" {
		p.Language = firstNonEmpty(d.Language, qwentts.DefaultLanguage)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// MaskAPIKey masks the API key for display
func MaskAPIKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}
