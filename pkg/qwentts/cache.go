package qwentts

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
)

// LoadKey identifies a cached handle. Two model keys that resolve to the same
// checkpoint share one handle.
type LoadKey struct {
	Checkpoint string
	Precision  Precision
}

type cacheEntry struct {
	model    Model
	device   Device
	fallback bool
	lastUsed uint64
}

// Cache holds loaded model handles keyed by checkpoint and precision. Handles
// are loaded lazily on first use and kept until Close. When a bound is set
// with WithMaxModels the least recently used handle is evicted to make room.
//
// A Cache is safe for concurrent use. Loads happen under the cache lock, so
// concurrent callers asking for the same checkpoint trigger a single load.
type Cache struct {
	loader    Loader
	plan      DevicePlan
	precision Precision
	maxModels int
	logger    *slog.Logger

	mu      sync.Mutex
	entries map[LoadKey]*cacheEntry
	clock   uint64
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithDevicePlan sets the devices checkpoints are loaded on.
func WithDevicePlan(plan DevicePlan) CacheOption {
	return func(c *Cache) {
		c.plan = plan
	}
}

// WithPrecision sets the weight dtype. Default is float32.
func WithPrecision(p Precision) CacheOption {
	return func(c *Cache) {
		if p != "" {
			c.precision = p
		}
	}
}

// WithMaxModels bounds the number of resident handles. Zero, the default,
// never evicts.
func WithMaxModels(n int) CacheOption {
	return func(c *Cache) {
		c.maxModels = n
	}
}

// WithLogger sets the logger used for load and eviction events.
func WithLogger(l *slog.Logger) CacheOption {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewCache creates an empty cache backed by loader.
func NewCache(loader Loader, opts ...CacheOption) *Cache {
	c := &Cache{
		loader:    loader,
		plan:      DefaultDevicePlan,
		precision: PrecisionFloat32,
		logger:    slog.Default(),
		entries:   make(map[LoadKey]*cacheEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the handle for a mode and size, loading it on first use.
func (c *Cache) Get(ctx context.Context, key ModelKey) (Model, error) {
	checkpoint, err := key.Checkpoint()
	if err != nil {
		return nil, err
	}
	return c.GetCheckpoint(ctx, checkpoint)
}

// GetCheckpoint returns the handle for a checkpoint, loading it on first use.
func (c *Cache) GetCheckpoint(ctx context.Context, checkpoint string) (Model, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := c.loadKey(checkpoint)
	if e, ok := c.entries[key]; ok {
		c.touch(e)
		return e.model, nil
	}

	c.logger.Info("loading model", "checkpoint", checkpoint, "device", c.plan.String(), "dtype", c.precision)
	res, err := LoadWithFallback(ctx, c.loader, LoadSpec{Checkpoint: checkpoint, Precision: c.precision}, c.plan)
	if err != nil {
		return nil, err
	}
	if res.Fallback {
		c.logger.Warn("primary device failed, using fallback",
			"checkpoint", checkpoint, "device", res.Device, "error", res.PrimaryErr)
	}

	c.evictLocked()
	e := &cacheEntry{model: res.Model, device: res.Device, fallback: res.Fallback}
	c.touch(e)
	c.entries[key] = e
	return e.model, nil
}

// Device returns the device the checkpoint's handle is bound to, and false if
// the checkpoint is not loaded.
func (c *Cache) Device(checkpoint string) (Device, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[c.loadKey(checkpoint)]
	if !ok {
		return "", false
	}
	return e.device, true
}

// Len returns the number of resident handles.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Close closes every resident handle that implements io.Closer and empties
// the cache.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var errs []error
	for key, e := range c.entries {
		if err := closeModel(e.model); err != nil {
			errs = append(errs, err)
		}
		delete(c.entries, key)
	}
	return errors.Join(errs...)
}

// reloadOnFallback replaces the handle for checkpoint with one loaded on the
// fallback device, provided failed is still the resident handle and was
// loaded on the primary device. It returns the handle to retry with and
// whether a retry makes sense.
func (c *Cache) reloadOnFallback(ctx context.Context, checkpoint string, failed Model) (Model, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := c.loadKey(checkpoint)
	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if e.model != failed {
		// Someone else already swapped it.
		c.touch(e)
		return e.model, true, nil
	}
	if e.fallback || !c.plan.HasFallback() {
		return nil, false, nil
	}

	c.logger.Warn("generation failed on primary device, reloading on fallback",
		"checkpoint", checkpoint, "device", c.plan.Fallback)
	m, err := c.loader.Load(ctx, LoadSpec{Checkpoint: checkpoint, Device: c.plan.Fallback, Precision: c.precision})
	if err != nil {
		return nil, false, &LoadError{Checkpoint: checkpoint, Device: c.plan.Fallback, Err: err}
	}
	if err := closeModel(e.model); err != nil {
		c.logger.Warn("close model", "checkpoint", checkpoint, "error", err)
	}
	e.model = m
	e.device = c.plan.Fallback
	e.fallback = true
	c.touch(e)
	return m, true, nil
}

func (c *Cache) loadKey(checkpoint string) LoadKey {
	return LoadKey{Checkpoint: checkpoint, Precision: c.precision}
}

func (c *Cache) touch(e *cacheEntry) {
	c.clock++
	e.lastUsed = c.clock
}

// evictLocked makes room for one more entry when the cache is bounded.
func (c *Cache) evictLocked() {
	if c.maxModels <= 0 {
		return
	}
	for len(c.entries) >= c.maxModels {
		var (
			oldest   LoadKey
			oldestAt uint64
			found    bool
		)
		for k, e := range c.entries {
			if !found || e.lastUsed < oldestAt {
				oldest, oldestAt, found = k, e.lastUsed, true
			}
		}
		if !found {
			return
		}
		c.logger.Info("evicting model", "checkpoint", oldest.Checkpoint)
		if err := closeModel(c.entries[oldest].model); err != nil {
			c.logger.Warn("close model", "checkpoint", oldest.Checkpoint, "error", err)
		}
		delete(c.entries, oldest)
	}
}

func closeModel(m Model) error {
	if cl, ok := m.(io.Closer); ok {
		return cl.Close()
	}
	return nil
}
