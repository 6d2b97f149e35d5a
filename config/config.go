// Package config loads the application configuration from an optional YAML
// file and environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-flavor-inventory/cache"
	"github.com/goliatone/go-flavor-inventory/internal/storage"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file values.
const (
	EnvDBDriver      = "INVENTORY_DB_DRIVER"
	EnvDBDSN         = "INVENTORY_DB_DSN"
	EnvHTTPAddr      = "INVENTORY_HTTP_ADDR"
	EnvMetricsAddr   = "INVENTORY_METRICS_ADDR"
	EnvCacheBackend  = "INVENTORY_CACHE_BACKEND"
	EnvRedisAddr     = "INVENTORY_REDIS_ADDR"
	EnvRedisPassword = "INVENTORY_REDIS_PASSWORD"
	EnvRedisDB       = "INVENTORY_REDIS_DB"
)

// Config is the complete application configuration.
type Config struct {
	Database Database `yaml:"database"`
	HTTP     HTTP     `yaml:"http"`
	Metrics  Metrics  `yaml:"metrics"`
	Cache    Cache    `yaml:"cache"`
}

// Database selects the driver and connection string.
type Database struct {
	Driver       string `yaml:"driver"`
	DSN          string `yaml:"dsn"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

// HTTP configures the API listener.
type HTTP struct {
	Addr           string `yaml:"addr"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
}

// Metrics configures the Prometheus endpoint. An empty Addr serves it from
// the API listener.
type Metrics struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Path    string `yaml:"path"`
}

// Cache configures the listing caches. Each listing gets its own TTL.
type Cache struct {
	Backend            string        `yaml:"backend"`
	Capacity           int           `yaml:"capacity"`
	NumShards          int           `yaml:"num_shards"`
	EvictionPercentage int           `yaml:"eviction_percentage"`
	StoreTTL           time.Duration `yaml:"store_ttl"`
	EmployeeTTL        time.Duration `yaml:"employee_ttl"`
	Redis              Redis         `yaml:"redis"`
}

// Redis configures the redis cache backend.
type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// DefaultConfig returns a configuration that runs against a local sqlite file
// with in-memory caches.
func DefaultConfig() Config {
	return Config{
		Database: Database{
			Driver:       storage.DriverSQLite,
			DSN:          "file:inventory.db?_foreign_keys=on",
			MaxOpenConns: 1,
		},
		HTTP: HTTP{
			Addr:           ":8080",
			MaxUploadBytes: 10 << 20,
		},
		Metrics: Metrics{
			Enabled: true,
			Addr:    ":9090",
			Path:    "/metrics",
		},
		Cache: Cache{
			Backend:            string(cache.BackendMemory),
			Capacity:           10000,
			NumShards:          64,
			EvictionPercentage: 10,
			StoreTTL:           150 * time.Minute,
			EmployeeTTL:        10 * time.Minute,
			Redis: Redis{
				Prefix: "inventory",
			},
		},
	}
}

// Load reads path over the defaults, then applies environment overrides. A
// missing file or .env is not an error.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	setString(&c.Database.Driver, EnvDBDriver)
	setString(&c.Database.DSN, EnvDBDSN)
	setString(&c.HTTP.Addr, EnvHTTPAddr)
	setString(&c.Metrics.Addr, EnvMetricsAddr)
	setString(&c.Cache.Backend, EnvCacheBackend)
	setString(&c.Cache.Redis.Addr, EnvRedisAddr)
	setString(&c.Cache.Redis.Password, EnvRedisPassword)

	if v, ok := os.LookupEnv(EnvRedisDB); ok && v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %q is not an integer", EnvRedisDB, v)
		}
		c.Cache.Redis.DB = db
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

// Validate checks every section.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Database),
		validation.Field(&c.HTTP),
		validation.Field(&c.Metrics),
		validation.Field(&c.Cache),
	)
}

func (d Database) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Driver, validation.Required, validation.In(storage.DriverSQLite, storage.DriverPostgres, storage.DriverMySQL)),
		validation.Field(&d.DSN, validation.Required),
		validation.Field(&d.MaxOpenConns, validation.Min(0)),
	)
}

func (h HTTP) Validate() error {
	return validation.ValidateStruct(&h,
		validation.Field(&h.Addr, validation.Required),
		validation.Field(&h.MaxUploadBytes, validation.Required, validation.Min(int64(1))),
	)
}

func (m Metrics) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Path, validation.When(m.Enabled, validation.Required)),
	)
}

func (c Cache) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Backend, validation.Required, validation.In(string(cache.BackendMemory), string(cache.BackendRedis))),
		validation.Field(&c.Capacity, validation.Required, validation.Min(1)),
		validation.Field(&c.NumShards, validation.Required, validation.Min(1)),
		validation.Field(&c.EvictionPercentage, validation.Required, validation.Min(1), validation.Max(100)),
		validation.Field(&c.StoreTTL, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.EmployeeTTL, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.Redis, validation.When(c.Backend == string(cache.BackendRedis), validation.By(redisRequired))),
	)
}

func redisRequired(value any) error {
	r, _ := value.(Redis)
	return validation.ValidateStruct(&r,
		validation.Field(&r.Addr, validation.Required),
		validation.Field(&r.DB, validation.Min(0)),
	)
}

// Storage returns the storage connection options.
func (d Database) Storage() storage.Options {
	return storage.Options{Driver: d.Driver, DSN: d.DSN, MaxOpenConns: d.MaxOpenConns}
}

// ForTTL returns the cache configuration of a listing cached for ttl.
func (c Cache) ForTTL(ttl time.Duration) cache.Config {
	cfg := cache.DefaultConfig().WithTTL(ttl)
	cfg.Backend = cache.Backend(c.Backend)
	cfg.Capacity = c.Capacity
	cfg.NumShards = c.NumShards
	cfg.EvictionPercentage = c.EvictionPercentage
	if cfg.Backend == cache.BackendRedis {
		cfg.Redis = &cache.RedisConfig{
			Addr:     c.Redis.Addr,
			Password: c.Redis.Password,
			DB:       c.Redis.DB,
			Prefix:   c.Redis.Prefix,
		}
	}
	return cfg
}
