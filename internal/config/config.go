package config

import (
	"delivery-map-client/internal/domain"
	"delivery-map-client/internal/render"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	CacheNone     = "none"
	CachePostgres = "postgres"
	CacheSqlite   = "sqlite"
	CacheRedis    = "redis"
)

// Config is the client configuration, read from the environment (and .env).
type Config struct {
	BackendURL         string        `validate:"required,url"`
	StartNode          string        `validate:"required,node"`
	HTTPTimeout        time.Duration `validate:"gt=0"`
	SegmentConcurrency int           `validate:"min=1,max=64"`

	CacheDriver string        `validate:"oneof=none postgres sqlite redis"`
	DatabaseURL string        `validate:"required_if=CacheDriver postgres"`
	CachePath   string        `validate:"required_if=CacheDriver sqlite"`
	RedisAddr   string        `validate:"required_if=CacheDriver redis"`
	CacheTTL    time.Duration `validate:"gte=0"`

	LogFile      string
	RenderConfig string

	Render RenderConfig `validate:"-"`
}

// RenderConfig holds per-surface mapper settings, loaded from an optional TOML file:
//
//	[terminal]
//	scale_x = 8.0
//	scale_y = 4.0
//
//	[svg]
//	scale_x = 50.0
//	edge_offset = 4.0
type RenderConfig struct {
	Terminal MapperConfig `toml:"terminal"`
	SVG      MapperConfig `toml:"svg"`
}

type MapperConfig struct {
	ScaleX     float64 `toml:"scale_x" validate:"ne=0"`
	ScaleY     float64 `toml:"scale_y" validate:"ne=0"`
	OffsetX    float64 `toml:"offset_x"`
	OffsetY    float64 `toml:"offset_y"`
	EdgeOffset float64 `toml:"edge_offset" validate:"gte=0"`
}

func (m MapperConfig) Mapper() render.Mapper {
	return render.Mapper{ScaleX: m.ScaleX, ScaleY: m.ScaleY, OffsetX: m.OffsetX, OffsetY: m.OffsetY}
}

func DefaultRender() RenderConfig {
	t, s := render.DefaultTerminalMapper, render.DefaultSVGMapper
	return RenderConfig{
		Terminal: MapperConfig{ScaleX: t.ScaleX, ScaleY: t.ScaleY, OffsetX: t.OffsetX, OffsetY: t.OffsetY, EdgeOffset: 1},
		SVG:      MapperConfig{ScaleX: s.ScaleX, ScaleY: s.ScaleY, OffsetX: s.OffsetX, OffsetY: s.OffsetY, EdgeOffset: 4},
	}
}

var validate *validator.Validate

func init() {
	validate = validator.New()

	_ = validate.RegisterValidation("node", validateNode)
}

// validateNode accepts the "x,y" start node form.
func validateNode(fl validator.FieldLevel) bool {
	_, err := domain.ParseNode(fl.Field().String())
	return err == nil
}

// Load reads .env (if present) and the environment, then the optional render file.
func Load() (Config, error) {
	// A missing .env is normal; real environment variables still apply.
	_ = godotenv.Load()

	cfg := FromEnv()

	if cfg.RenderConfig != "" {
		rc, err := LoadRender(cfg.RenderConfig)
		if err != nil {
			return Config{}, err
		}
		cfg.Render = rc
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// FromEnv reads every key with its default; it does not validate.
func FromEnv() Config {
	return Config{
		BackendURL:         Get("BACKEND_URL", "http://localhost:8000"),
		StartNode:          Get("START_NODE", "0,0"),
		HTTPTimeout:        GetDuration("HTTP_TIMEOUT", 10*time.Second),
		SegmentConcurrency: GetInt("SEGMENT_CONCURRENCY", 4),
		CacheDriver:        Get("CACHE_DRIVER", CacheNone),
		DatabaseURL:        Get("DATABASE_URL", ""),
		CachePath:          Get("CACHE_PATH", "data/segments.db"),
		RedisAddr:          Get("REDIS_ADDR", ""),
		CacheTTL:           GetDuration("CACHE_TTL", 10*time.Minute),
		LogFile:            Get("LOG_FILE", "client.log"),
		RenderConfig:       Get("RENDER_CONFIG", ""),
		Render:             DefaultRender(),
	}
}

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := validate.Struct(c.Render.Terminal); err != nil {
		return fmt.Errorf("invalid config: render terminal: %w", err)
	}
	if err := validate.Struct(c.Render.SVG); err != nil {
		return fmt.Errorf("invalid config: render svg: %w", err)
	}
	return nil
}

// Start parses StartNode. Call after Validate.
func (c Config) Start() domain.Node {
	n, _ := domain.ParseNode(c.StartNode)
	return n
}

// LoadRender overlays the TOML file at path onto DefaultRender.
func LoadRender(path string) (RenderConfig, error) {
	rc := DefaultRender()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return RenderConfig{}, fmt.Errorf("render config %q: not found", path)
		}
		return RenderConfig{}, fmt.Errorf("render config %q: %w", path, err)
	}

	if err := toml.Unmarshal(data, &rc); err != nil {
		return RenderConfig{}, fmt.Errorf("render config %q: %w", path, err)
	}

	return rc, nil
}
