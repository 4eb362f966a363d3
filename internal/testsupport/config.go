package testsupport

import (
	"path/filepath"
	"testing"

	"reelforge/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It uses the file store backend, no vendor keys, and no propagation delay.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Store.Backend = "file"
	cfgVal.Store.FilePath = filepath.Join(base, "data", "jobs.json")
	cfgVal.Store.SQLitePath = filepath.Join(base, "data", "reelforge.db")
	cfgVal.Storage.PropagationDelaySeconds = 0

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithStoreBackend selects the job store backend on the test config.
func WithStoreBackend(backend string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Store.Backend = backend
	}
}

// WithRedisURL points the redis backend at url and selects it.
func WithRedisURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Store.Backend = "redis"
		b.cfg.Store.RedisURL = url
	}
}

// WithStorage fills in Cloudinary credentials.
func WithStorage(cloud, key, secret string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Storage.CloudName = cloud
		b.cfg.Storage.APIKey = key
		b.cfg.Storage.APISecret = secret
	}
}
