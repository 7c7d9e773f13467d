package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"BACKEND_URL", "START_NODE", "HTTP_TIMEOUT", "SEGMENT_CONCURRENCY", "CACHE_DRIVER"} {
		t.Setenv(k, "")
	}

	cfg := FromEnv()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "http://localhost:8000", cfg.BackendURL)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 4, cfg.SegmentConcurrency)
	assert.Equal(t, CacheNone, cfg.CacheDriver)
	assert.Equal(t, 0, cfg.Start().X)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("START_NODE", "(3, 4)")
	t.Setenv("HTTP_TIMEOUT", "30")
	t.Setenv("CACHE_TTL", "1h")
	t.Setenv("SEGMENT_CONCURRENCY", "many")

	cfg := FromEnv()
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.Equal(t, 4, cfg.SegmentConcurrency)
	assert.Equal(t, 3, cfg.Start().X)
	assert.Equal(t, 4, cfg.Start().Y)
}

func TestValidate(t *testing.T) {
	base := FromEnv()
	base.BackendURL = "http://localhost:8000"
	base.StartNode = "0,0"
	base.CacheDriver = CacheNone
	require.NoError(t, base.Validate())

	cases := map[string]func(c *Config){
		"bad start node":     func(c *Config) { c.StartNode = "north" },
		"bad url":            func(c *Config) { c.BackendURL = "not a url" },
		"unknown driver":     func(c *Config) { c.CacheDriver = "memcached" },
		"redis without addr": func(c *Config) { c.CacheDriver = CacheRedis; c.RedisAddr = "" },
		"postgres without dsn": func(c *Config) {
			c.CacheDriver = CachePostgres
			c.DatabaseURL = ""
		},
		"zero concurrency": func(c *Config) { c.SegmentConcurrency = 0 },
		"zero scale":       func(c *Config) { c.Render.SVG.ScaleX = 0 },
	}

	for name, mutate := range cases {
		c := base
		mutate(&c)
		assert.Error(t, c.Validate(), name)
	}
}

func TestLoadRender(t *testing.T) {
	path := filepath.Join(t.TempDir(), "render.toml")
	require.NoError(t, os.WriteFile(path, []byte("[svg]\nscale_x = 80.0\nedge_offset = 6.0\n"), 0o644))

	rc, err := LoadRender(path)
	require.NoError(t, err)
	assert.Equal(t, 80.0, rc.SVG.ScaleX)
	assert.Equal(t, 6.0, rc.SVG.EdgeOffset)
	// keys absent from the file keep their defaults
	assert.Equal(t, DefaultRender().SVG.ScaleY, rc.SVG.ScaleY)
	assert.Equal(t, DefaultRender().Terminal, rc.Terminal)

	_, err = LoadRender(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
