package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = ""

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// KV backend selectors.
const (
	KVBackendRedis  = "redis"
	KVBackendSQLite = "sqlite"
	KVBackendMemory = "memory"
)

type Config struct {
	App      AppConfig
	KV       KVConfig
	Redis    RedisConfig
	SQLite   SQLiteConfig
	Cart     CartConfig
	Checkout CheckoutConfig
	Session  SessionConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.KV.validate(); err != nil {
		return nil, err
	}
	if cfg.KV.Backend == KVBackendRedis && cfg.Redis.URL == "" && cfg.Redis.Address == "" {
		return nil, fmt.Errorf("redis url or address is required for the redis kv backend")
	}
	if err := cfg.Checkout.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"AQUAPEAK_APP_ENV" required:"true"`
	Port         string `envconfig:"AQUAPEAK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"AQUAPEAK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"AQUAPEAK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type KVConfig struct {
	Backend string `envconfig:"AQUAPEAK_KV_BACKEND" default:"redis"`
}

func (k *KVConfig) validate() error {
	backend := strings.ToLower(strings.TrimSpace(k.Backend))
	switch backend {
	case KVBackendRedis, KVBackendSQLite, KVBackendMemory:
		k.Backend = backend
		return nil
	}
	return fmt.Errorf("unknown kv backend %q", k.Backend)
}

type RedisConfig struct {
	URL          string        `envconfig:"AQUAPEAK_REDIS_URL"`
	Address      string        `envconfig:"AQUAPEAK_REDIS_ADDR"`
	Password     string        `envconfig:"AQUAPEAK_REDIS_PASSWORD"`
	DB           int           `envconfig:"AQUAPEAK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"AQUAPEAK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"AQUAPEAK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"AQUAPEAK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"AQUAPEAK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"AQUAPEAK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type SQLiteConfig struct {
	Path string `envconfig:"AQUAPEAK_SQLITE_PATH" default:"aquapeak-cart.db"`
}

type CartConfig struct {
	ItemsKey     string        `envconfig:"AQUAPEAK_CART_ITEMS_KEY" default:"cartItems"`
	RecentKey    string        `envconfig:"AQUAPEAK_CART_RECENT_KEY" default:"recentItems"`
	RecentLimit  int           `envconfig:"AQUAPEAK_CART_RECENT_LIMIT" default:"3"`
	StoreIdleTTL time.Duration `envconfig:"AQUAPEAK_CART_STORE_IDLE_TTL" default:"30m"`
}

type CheckoutConfig struct {
	OrderEndpoint  string        `envconfig:"AQUAPEAK_CHECKOUT_ORDER_ENDPOINT" required:"true"`
	RequestTimeout time.Duration `envconfig:"AQUAPEAK_CHECKOUT_REQUEST_TIMEOUT" default:"10s"`
	MaxRetries     int           `envconfig:"AQUAPEAK_CHECKOUT_MAX_RETRIES" default:"3"`
	RetryBase      time.Duration `envconfig:"AQUAPEAK_CHECKOUT_RETRY_BASE" default:"200ms"`
}

func (c *CheckoutConfig) validate() error {
	parsed, err := url.Parse(c.OrderEndpoint)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("checkout order endpoint must be an absolute url")
	}
	return nil
}

type SessionConfig struct {
	Secret            string `envconfig:"AQUAPEAK_SESSION_SECRET" required:"true"`
	Issuer            string `envconfig:"AQUAPEAK_SESSION_ISSUER" default:"aquapeak"`
	ExpirationMinutes int    `envconfig:"AQUAPEAK_SESSION_EXPIRATION_MINUTES" default:"10080"`
}

// TTL returns the session token lifetime.
func (s SessionConfig) TTL() time.Duration {
	if s.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(s.ExpirationMinutes) * time.Minute
}
