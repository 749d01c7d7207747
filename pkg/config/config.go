package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/feiralocal-backend/pkg/enums"
	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = "FEIRALOCAL"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv          = "FEIRALOCAL_APP_ENV"
	EnvPort            = "FEIRALOCAL_APP_PORT"
	EnvLogLevel        = "FEIRALOCAL_LOG_LEVEL"
	EnvStorageBackend  = "FEIRALOCAL_STORAGE_BACKEND"
	EnvAutoMigrate     = "FEIRALOCAL_AUTO_MIGRATE"
	EnvDBDSN           = "FEIRALOCAL_DB_DSN"
	EnvDBDriver        = "FEIRALOCAL_DB_DRIVER"
	EnvRedisURL        = "FEIRALOCAL_REDIS_URL"
	EnvRedisAddr       = "FEIRALOCAL_REDIS_ADDR"
	EnvFilterCacheSize = "FEIRALOCAL_FILTER_CACHE_SIZE"
	EnvSearchDebounce  = "FEIRALOCAL_SEARCH_DEBOUNCE"
	EnvRenderTick      = "FEIRALOCAL_RENDER_TICK"
	EnvNotifyBaseURL   = "FEIRALOCAL_NOTIFY_BASE_URL"
	EnvDemoOrders      = "FEIRALOCAL_DEMO_ORDERS"
	EnvRandomSeed      = "FEIRALOCAL_RANDOM_SEED"
)

type Config struct {
	App     AppConfig
	Storage StorageConfig
	DB      DBConfig
	Redis   RedisConfig
	Catalog CatalogConfig
	Notify  NotifyConfig
	Demo    DemoConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	backend, err := enums.ParseStorageBackend(c.Storage.Backend)
	if err != nil {
		return fmt.Errorf("%s: %w", EnvStorageBackend, err)
	}
	c.Storage.Backend = backend.String()

	switch {
	case backend == enums.StorageBackendRedis:
		if c.Redis.URL == "" && c.Redis.Address == "" {
			return fmt.Errorf("either %s or %s is required for the redis backend", EnvRedisURL, EnvRedisAddr)
		}
	case backend.IsSQL():
		c.DB.Driver = backend.String()
		if c.DB.DSN == "" && backend == enums.StorageBackendSQLite {
			c.DB.DSN = defaultSQLiteDSN
		}
		if c.DB.DSN == "" {
			return fmt.Errorf("%s is required for the %s backend", EnvDBDSN, backend)
		}
	}

	if c.Catalog.FilterCacheSize <= 0 {
		return fmt.Errorf("%s must be positive", EnvFilterCacheSize)
	}
	if c.Catalog.SearchDebounce < 0 || c.Catalog.RenderTick <= 0 {
		return fmt.Errorf("%s and %s must be positive durations", EnvSearchDebounce, EnvRenderTick)
	}
	return nil
}

type AppConfig struct {
	Env          string `envconfig:"FEIRALOCAL_APP_ENV" required:"true"`
	Port         string `envconfig:"FEIRALOCAL_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"FEIRALOCAL_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FEIRALOCAL_LOG_WARN_STACK" default:"false"`

	CORSOrigins []string `envconfig:"FEIRALOCAL_CORS_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// StorageConfig selects the persistence gateway backend.
type StorageConfig struct {
	Backend     string        `envconfig:"FEIRALOCAL_STORAGE_BACKEND" default:"memory"`
	AutoMigrate bool          `envconfig:"FEIRALOCAL_AUTO_MIGRATE" default:"false"`
	Timeout     time.Duration `envconfig:"FEIRALOCAL_STORAGE_TIMEOUT" default:"3s"`
	// Session scopes redis keys so several demo tabs can keep separate state.
	Session string `envconfig:"FEIRALOCAL_STORAGE_SESSION"`
}

const defaultSQLiteDSN = "file:feiralocal.db?cache=shared"

type DBConfig struct {
	DSN    string `envconfig:"FEIRALOCAL_DB_DSN"`
	Driver string `envconfig:"FEIRALOCAL_DB_DRIVER" default:"postgres"`

	MaxOpenConns    int           `envconfig:"FEIRALOCAL_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"FEIRALOCAL_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"FEIRALOCAL_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FEIRALOCAL_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FEIRALOCAL_REDIS_URL"`
	Address      string        `envconfig:"FEIRALOCAL_REDIS_ADDR"`
	Password     string        `envconfig:"FEIRALOCAL_REDIS_PASSWORD"`
	DB           int           `envconfig:"FEIRALOCAL_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FEIRALOCAL_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FEIRALOCAL_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FEIRALOCAL_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FEIRALOCAL_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"FEIRALOCAL_REDIS_WRITE_TIMEOUT" default:"3s"`
}

// CatalogConfig tunes filtering and the refresh scheduler.
type CatalogConfig struct {
	FilterCacheSize int           `envconfig:"FEIRALOCAL_FILTER_CACHE_SIZE" default:"30"`
	SearchDebounce  time.Duration `envconfig:"FEIRALOCAL_SEARCH_DEBOUNCE" default:"180ms"`
	RenderTick      time.Duration `envconfig:"FEIRALOCAL_RENDER_TICK" default:"16ms"`
}

type NotifyConfig struct {
	BaseURL string `envconfig:"FEIRALOCAL_NOTIFY_BASE_URL" default:"https://wa.me"`
}

// DemoConfig drives the admin seed button and the random source.
// RandomSeed 0 means seed from the clock.
type DemoConfig struct {
	SeedOrders int    `envconfig:"FEIRALOCAL_DEMO_ORDERS" default:"6"`
	RandomSeed uint64 `envconfig:"FEIRALOCAL_RANDOM_SEED" default:"0"`
}
