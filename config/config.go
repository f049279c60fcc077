// Package config loads cacheman settings with viper and builds the engine
// and logger they describe.
//
// Sources, lowest to highest priority: built-in defaults, an optional
// YAML/TOML/JSON file, CACHEMAN_* environment variables (dots become
// underscores, e.g. CACHEMAN_ENGINE_KIND), and any flags bound to the viper
// instance by the caller.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	cacheman "github.com/appleboy/cacheman-promise"
	"github.com/appleboy/cacheman-promise/codec"
	"github.com/appleboy/cacheman-promise/engine"
)

const EnvPrefix = "CACHEMAN"

// Engine kinds.
const (
	KindRistretto = "ristretto"
	KindBigCache  = "bigcache"
	KindRedis     = "redis"
	KindBolt      = "bolt"
)

type Config struct {
	Namespace         string        `mapstructure:"namespace"`
	Prefix            string        `mapstructure:"prefix"`
	Delimiter         string        `mapstructure:"delimiter"`
	DefaultTTL        time.Duration `mapstructure:"default_ttl"`
	BackgroundWrites  bool          `mapstructure:"background_writes"`
	BackgroundTimeout time.Duration `mapstructure:"background_timeout"`
	MaxConcurrency    int           `mapstructure:"max_concurrency"`

	Engine EngineConfig `mapstructure:"engine"`
	Log    LogConfig    `mapstructure:"log"`
	Serve  ServeConfig  `mapstructure:"serve"`
}

type EngineConfig struct {
	Kind      string          `mapstructure:"kind"`
	Ristretto RistrettoConfig `mapstructure:"ristretto"`
	BigCache  BigCacheConfig  `mapstructure:"bigcache"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Bolt      BoltConfig      `mapstructure:"bolt"`
}

type RistrettoConfig struct {
	NumCounters int64 `mapstructure:"num_counters"`
	MaxCost     int64 `mapstructure:"max_cost"`
	BufferItems int64 `mapstructure:"buffer_items"`
	Metrics     bool  `mapstructure:"metrics"`
}

type BigCacheConfig struct {
	LifeWindow         time.Duration `mapstructure:"life_window"`
	CleanWindow        time.Duration `mapstructure:"clean_window"`
	Shards             int           `mapstructure:"shards"`
	HardMaxCacheSizeMB int           `mapstructure:"hard_max_cache_size_mb"`
}

type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	ScanCount int64  `mapstructure:"scan_count"`
}

type BoltConfig struct {
	Path        string        `mapstructure:"path"`
	Bucket      string        `mapstructure:"bucket"`
	OpenTimeout time.Duration `mapstructure:"open_timeout"`
}

type LogConfig struct {
	Level   string `mapstructure:"level"`   // debug|info|warn|error
	Format  string `mapstructure:"format"`  // json|console
	Backend string `mapstructure:"backend"` // zap|logrus|slog
}

type ServeConfig struct {
	Addr string `mapstructure:"addr"`
}

// New returns a viper instance with defaults and environment binding set up.
// Callers may bind flags to it before passing it to Load.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("namespace", "cache")
	v.SetDefault("prefix", "cacheman")
	v.SetDefault("delimiter", ":")
	v.SetDefault("default_ttl", 60*time.Second)
	v.SetDefault("background_writes", false)
	v.SetDefault("background_timeout", 5*time.Second)
	v.SetDefault("max_concurrency", 0)

	v.SetDefault("engine.kind", KindRistretto)
	v.SetDefault("engine.ristretto.num_counters", int64(1e6))
	v.SetDefault("engine.ristretto.max_cost", int64(64<<20))
	v.SetDefault("engine.ristretto.buffer_items", int64(64))
	v.SetDefault("engine.ristretto.metrics", false)
	v.SetDefault("engine.bigcache.life_window", 10*time.Minute)
	v.SetDefault("engine.bigcache.clean_window", 0)
	v.SetDefault("engine.bigcache.shards", 1024)
	v.SetDefault("engine.bigcache.hard_max_cache_size_mb", 0)
	v.SetDefault("engine.redis.addr", "127.0.0.1:6379")
	v.SetDefault("engine.redis.username", "")
	v.SetDefault("engine.redis.password", "")
	v.SetDefault("engine.redis.db", 0)
	v.SetDefault("engine.redis.scan_count", 500)
	v.SetDefault("engine.bolt.path", "cacheman.db")
	v.SetDefault("engine.bolt.bucket", "cacheman")
	v.SetDefault("engine.bolt.open_timeout", time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.backend", "zap")

	v.SetDefault("serve.addr", ":6380")
}

// Load reads path (if non-empty) into v and decodes the result. A nil v
// means New().
func Load(v *viper.Viper, path string) (*Config, error) {
	if v == nil {
		v = New()
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("cacheman: read config %q: %w", path, err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("cacheman: decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Engine.Kind {
	case KindRistretto:
		r := c.Engine.Ristretto
		if r.NumCounters <= 0 || r.MaxCost <= 0 || r.BufferItems <= 0 {
			return fmt.Errorf("cacheman: engine.ristretto sizes must be positive")
		}
	case KindBigCache:
		if c.Engine.BigCache.Shards <= 0 || c.Engine.BigCache.Shards&(c.Engine.BigCache.Shards-1) != 0 {
			return fmt.Errorf("cacheman: engine.bigcache.shards must be a power of two, got %d", c.Engine.BigCache.Shards)
		}
	case KindRedis:
		if c.Engine.Redis.Addr == "" {
			return fmt.Errorf("cacheman: engine.redis.addr is required")
		}
	case KindBolt:
		if c.Engine.Bolt.Path == "" {
			return fmt.Errorf("cacheman: engine.bolt.path is required")
		}
	default:
		return fmt.Errorf("cacheman: unknown engine kind %q", c.Engine.Kind)
	}
	if c.Namespace == "" {
		return fmt.Errorf("cacheman: namespace is required")
	}
	if c.MaxConcurrency < 0 {
		return fmt.Errorf("cacheman: max_concurrency must be >= 0")
	}
	if c.BackgroundTimeout < 0 {
		return fmt.Errorf("cacheman: background_timeout must be >= 0")
	}
	return nil
}

// CacheOptions maps the facade settings onto cacheman.Options.
func CacheOptions[V any](c *Config, eng engine.Engine, cd codec.Codec[V], log cacheman.Logger) cacheman.Options[V] {
	return cacheman.Options[V]{
		Engine:            eng,
		Codec:             cd,
		Namespace:         c.Namespace,
		Prefix:            c.Prefix,
		Delimiter:         c.Delimiter,
		DefaultTTL:        c.DefaultTTL,
		Logger:            log,
		BackgroundWrites:  c.BackgroundWrites,
		BackgroundTimeout: c.BackgroundTimeout,
		MaxConcurrency:    c.MaxConcurrency,
	}
}
