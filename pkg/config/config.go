package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is empty because every tag below carries its full FOODAPP_ name.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv          = "FOODAPP_APP_ENV"
	EnvPort            = "FOODAPP_APP_PORT"
	EnvLogLevel        = "FOODAPP_LOG_LEVEL"
	EnvLogFormat       = "FOODAPP_LOG_FORMAT"
	EnvBackendURL      = "FOODAPP_BACKEND_BASE_URL"
	EnvBackendTimeout  = "FOODAPP_BACKEND_TIMEOUT"
	EnvStoreDriver     = "FOODAPP_STORE_DRIVER"
	EnvDBDSN           = "FOODAPP_DB_DSN"
	EnvRedisURL        = "FOODAPP_REDIS_URL"
	EnvVisitorSecret   = "FOODAPP_VISITOR_SECRET"
	EnvVisitorTTL      = "FOODAPP_VISITOR_TTL"
	EnvCookieSecure    = "FOODAPP_VISITOR_COOKIE_SECURE"
	EnvDeferredMethods = "FOODAPP_CHECKOUT_DEFERRED_METHODS"
	EnvCORSOrigins     = "FOODAPP_CORS_ALLOWED_ORIGINS"
)

const (
	StoreDriverSQLite   = "sqlite"
	StoreDriverPostgres = "postgres"
	StoreDriverRedis    = "redis"
	StoreDriverMemory   = "memory"
)

type Config struct {
	App           AppConfig
	Backend       BackendConfig
	Store         StoreConfig
	DB            DBConfig
	Redis         RedisConfig
	Visitor       VisitorConfig
	AuthRateLimit AuthRateLimitConfig
	Checkout      CheckoutConfig
	Guard         GuardConfig
	Registry      RegistryConfig
	CORS          CORSConfig
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

type AppConfig struct {
	Env          string `envconfig:"FOODAPP_APP_ENV" required:"true"`
	Port         string `envconfig:"FOODAPP_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"FOODAPP_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FOODAPP_LOG_WARN_STACK" default:"false"`
	LogFormat    string `envconfig:"FOODAPP_LOG_FORMAT" default:"json"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// BackendConfig points at the food-ordering HTTP API the storefront fronts.
type BackendConfig struct {
	BaseURL string        `envconfig:"FOODAPP_BACKEND_BASE_URL" required:"true"`
	Timeout time.Duration `envconfig:"FOODAPP_BACKEND_TIMEOUT" default:"10s"`

	BreakerMaxRequests      uint32        `envconfig:"FOODAPP_BACKEND_BREAKER_MAX_REQUESTS" default:"1"`
	BreakerInterval         time.Duration `envconfig:"FOODAPP_BACKEND_BREAKER_INTERVAL" default:"60s"`
	BreakerTimeout          time.Duration `envconfig:"FOODAPP_BACKEND_BREAKER_TIMEOUT" default:"30s"`
	BreakerFailureThreshold uint32        `envconfig:"FOODAPP_BACKEND_BREAKER_FAILURE_THRESHOLD" default:"5"`
}

type StoreConfig struct {
	Driver    string `envconfig:"FOODAPP_STORE_DRIVER" default:"sqlite"`
	Namespace string `envconfig:"FOODAPP_STORE_NAMESPACE" default:"foodapp"`
}

type DBConfig struct {
	DSN             string        `envconfig:"FOODAPP_DB_DSN" default:"file:foodapp.db?cache=shared"`
	MaxOpenConns    int           `envconfig:"FOODAPP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FOODAPP_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FOODAPP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FOODAPP_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// RedisConfig is optional unless the store driver is redis. When URL is set
// the login and register rate limits are enforced through it as well.
type RedisConfig struct {
	URL          string        `envconfig:"FOODAPP_REDIS_URL"`
	Address      string        `envconfig:"FOODAPP_REDIS_ADDR"`
	Password     string        `envconfig:"FOODAPP_REDIS_PASSWORD"`
	DB           int           `envconfig:"FOODAPP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FOODAPP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FOODAPP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FOODAPP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FOODAPP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FOODAPP_REDIS_WRITE_TIMEOUT" default:"5s"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type VisitorConfig struct {
	Secret       string        `envconfig:"FOODAPP_VISITOR_SECRET" required:"true"`
	Issuer       string        `envconfig:"FOODAPP_VISITOR_ISSUER" default:"foodapp-storefront"`
	TTL          time.Duration `envconfig:"FOODAPP_VISITOR_TTL" default:"720h"`
	CookieName   string        `envconfig:"FOODAPP_VISITOR_COOKIE_NAME" default:"foodapp_visitor"`
	CookieSecure bool          `envconfig:"FOODAPP_VISITOR_COOKIE_SECURE" default:"false"`
}

type AuthRateLimitConfig struct {
	LoginWindow           time.Duration `envconfig:"FOODAPP_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginIdentifierLimit  int           `envconfig:"FOODAPP_AUTH_RATE_LIMIT_LOGIN_IDENTIFIER_LIMIT" default:"5"`
	LoginIPLimit          int           `envconfig:"FOODAPP_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow        time.Duration `envconfig:"FOODAPP_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterIdentifierLim int           `envconfig:"FOODAPP_AUTH_RATE_LIMIT_REGISTER_IDENTIFIER_LIMIT" default:"3"`
	RegisterIPLimit       int           `envconfig:"FOODAPP_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

// CheckoutConfig controls the payment status label sent with an order.
// Methods listed in DeferredMethods are labelled DeferredStatus, every other
// supported method SettledStatus.
type CheckoutConfig struct {
	DeferredMethods []string `envconfig:"FOODAPP_CHECKOUT_DEFERRED_METHODS" default:"credit-card"`
	DeferredStatus  string   `envconfig:"FOODAPP_CHECKOUT_DEFERRED_STATUS" default:"PENDING"`
	SettledStatus   string   `envconfig:"FOODAPP_CHECKOUT_SETTLED_STATUS" default:"COMPLETED"`
}

type GuardConfig struct {
	ReadyWait  time.Duration `envconfig:"FOODAPP_GUARD_READY_WAIT" default:"2s"`
	RetryAfter time.Duration `envconfig:"FOODAPP_GUARD_RETRY_AFTER" default:"1s"`
}

type RegistryConfig struct {
	IdleTTL        time.Duration `envconfig:"FOODAPP_REGISTRY_IDLE_TTL" default:"30m"`
	SweepInterval  time.Duration `envconfig:"FOODAPP_REGISTRY_SWEEP_INTERVAL" default:"5m"`
	RestoreTimeout time.Duration `envconfig:"FOODAPP_REGISTRY_RESTORE_TIMEOUT" default:"15s"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"FOODAPP_CORS_ALLOWED_ORIGINS" default:"http://localhost:5173"`
}

func (c *Config) validate() error {
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	switch c.Store.Driver {
	case StoreDriverSQLite, StoreDriverPostgres, StoreDriverMemory:
	case StoreDriverRedis:
		if !c.Redis.Enabled() {
			return fmt.Errorf("%s is required when %s=%s", EnvRedisURL, EnvStoreDriver, StoreDriverRedis)
		}
	default:
		return fmt.Errorf("unsupported %s %q", EnvStoreDriver, c.Store.Driver)
	}

	if c.Store.Driver == StoreDriverPostgres && !strings.HasPrefix(c.DB.DSN, "postgres") {
		return fmt.Errorf("%s must be a postgres url when %s=%s", EnvDBDSN, EnvStoreDriver, StoreDriverPostgres)
	}

	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("%s must be positive", EnvBackendTimeout)
	}
	if c.Visitor.TTL <= 0 {
		return fmt.Errorf("%s must be positive", EnvVisitorTTL)
	}

	if c.App.IsProd() {
		if c.Store.Driver == StoreDriverMemory {
			return fmt.Errorf("%s=%s loses client state on restart and is not allowed in %s", EnvStoreDriver, StoreDriverMemory, AppEnvProd)
		}
		if !c.Visitor.CookieSecure {
			return fmt.Errorf("%s must be true in %s", EnvCookieSecure, AppEnvProd)
		}
	}

	for i, method := range c.Checkout.DeferredMethods {
		c.Checkout.DeferredMethods[i] = strings.ToLower(strings.TrimSpace(method))
	}
	return nil
}
