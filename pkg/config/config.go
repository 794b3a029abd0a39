package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	Store    StoreConfig
	DB       DBConfig
	Redis    RedisConfig
	Pricing  PricingConfig
	Orders   OrdersConfig
	Catalog  CatalogConfig
	Payment  PaymentConfig
	CORS     CORSConfig
	JWT      JWTConfig
	Mock     MockBackendConfig
	Features FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Store.validate(); err != nil {
		return nil, err
	}
	if cfg.Store.Backend == StoreBackendSQL {
		if err := cfg.DB.ensureDSN(); err != nil {
			return nil, err
		}
	}
	if cfg.Store.Backend == StoreBackendRedis && strings.TrimSpace(cfg.Redis.URL) == "" && strings.TrimSpace(cfg.Redis.Address) == "" {
		return nil, fmt.Errorf("%s or %s is required for the redis store backend", EnvRedisURL, EnvRedisAddr)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"YULISHOP_APP_ENV" required:"true"`
	Port         string `envconfig:"YULISHOP_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"YULISHOP_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"YULISHOP_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

// StoreConfig selects where the client-side persistent slots live.
type StoreConfig struct {
	Backend      string        `envconfig:"YULISHOP_STORE_BACKEND" default:"memory"`
	Namespace    string        `envconfig:"YULISHOP_STORE_NAMESPACE" default:"yulishop"`
	PollInterval time.Duration `envconfig:"YULISHOP_STORE_POLL_INTERVAL" default:"2s"`
}

func (s StoreConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(s.Backend)) {
	case StoreBackendMemory, StoreBackendRedis, StoreBackendSQL:
	default:
		return fmt.Errorf("%s must be one of %s, %s, %s", EnvStoreBackend, StoreBackendMemory, StoreBackendRedis, StoreBackendSQL)
	}
	if strings.TrimSpace(s.Namespace) == "" {
		return fmt.Errorf("%s is required", EnvStoreNamespace)
	}
	return nil
}

type DBConfig struct {
	DSN    string `envconfig:"YULISHOP_DB_DSN"`
	Driver string `envconfig:"YULISHOP_DB_DRIVER" default:"sqlite"`

	Host     string `envconfig:"YULISHOP_DB_HOST"`
	Port     int    `envconfig:"YULISHOP_DB_PORT" default:"5432"`
	User     string `envconfig:"YULISHOP_DB_USER"`
	Password string `envconfig:"YULISHOP_DB_PASSWORD"`
	Name     string `envconfig:"YULISHOP_DB_NAME"`
	SSLMode  string `envconfig:"YULISHOP_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"YULISHOP_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"YULISHOP_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"YULISHOP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"YULISHOP_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	AutoMigrate     bool          `envconfig:"YULISHOP_DB_AUTO_MIGRATE" default:"true"`
}

func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"YULISHOP_REDIS_URL"`
	Address      string        `envconfig:"YULISHOP_REDIS_ADDR"`
	Password     string        `envconfig:"YULISHOP_REDIS_PASSWORD"`
	DB           int           `envconfig:"YULISHOP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"YULISHOP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"YULISHOP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"YULISHOP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"YULISHOP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"YULISHOP_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type PricingConfig struct {
	FreeShippingThresholdCents int64    `envconfig:"YULISHOP_PRICING_FREE_SHIPPING_THRESHOLD_CENTS" default:"10000"`
	StandardShippingCents      int64    `envconfig:"YULISHOP_PRICING_STANDARD_SHIPPING_CENTS" default:"490"`
	ExpressShippingCents       int64    `envconfig:"YULISHOP_PRICING_EXPRESS_SHIPPING_CENTS" default:"990"`
	PromoCodes                 []string `envconfig:"YULISHOP_PRICING_PROMO_CODES" default:"WELCOME10:0.10"`
}

type OrdersConfig struct {
	BaseURL string        `envconfig:"YULISHOP_ORDERS_BASE_URL" default:"http://localhost:5124/api"`
	Timeout time.Duration `envconfig:"YULISHOP_ORDERS_TIMEOUT" default:"10s"`

	BreakerMaxFailures uint32        `envconfig:"YULISHOP_ORDERS_BREAKER_MAX_FAILURES" default:"5"`
	BreakerOpenTimeout time.Duration `envconfig:"YULISHOP_ORDERS_BREAKER_OPEN_TIMEOUT" default:"30s"`
}

type CatalogConfig struct {
	BaseURL string        `envconfig:"YULISHOP_CATALOG_BASE_URL" default:"http://localhost:5124/api"`
	Timeout time.Duration `envconfig:"YULISHOP_CATALOG_TIMEOUT" default:"5s"`
}

type PaymentConfig struct {
	MockDelay   time.Duration `envconfig:"YULISHOP_PAYMENT_MOCK_DELAY" default:"1s"`
	MockDecline bool          `envconfig:"YULISHOP_PAYMENT_MOCK_DECLINE" default:"false"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"YULISHOP_CORS_ALLOWED_ORIGINS" default:"http://localhost:5173"`
}

// JWTConfig is only needed by binaries that mint or verify access tokens.
// The storefront itself inspects tokens without the signing secret.
type JWTConfig struct {
	Secret            string `envconfig:"YULISHOP_JWT_SECRET"`
	Issuer            string `envconfig:"YULISHOP_JWT_ISSUER" default:"yulishop"`
	ExpirationMinutes int    `envconfig:"YULISHOP_JWT_EXPIRATION_MINUTES" default:"60"`
}

func (j JWTConfig) TTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

// MockBackendConfig drives cmd/orders-mock, the development order and catalog
// backend.
type MockBackendConfig struct {
	Port           string        `envconfig:"YULISHOP_MOCK_PORT" default:"5124"`
	FailOrders     bool          `envconfig:"YULISHOP_MOCK_FAIL_ORDERS" default:"false"`
	RequireAuth    bool          `envconfig:"YULISHOP_MOCK_REQUIRE_AUTH" default:"false"`
	IdempotencyTTL time.Duration `envconfig:"YULISHOP_MOCK_IDEMPOTENCY_TTL" default:"24h"`
}

type FeatureFlagsConfig struct {
	ServeMetrics bool `envconfig:"YULISHOP_FEATURE_SERVE_METRICS" default:"true"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		db.DSN = "file:yulishop.db?cache=shared"
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range postgresDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
