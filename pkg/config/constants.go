package config

const EnvPrefix = "YULISHOP"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	StoreBackendMemory = "memory"
	StoreBackendRedis  = "redis"
	StoreBackendSQL    = "sql"
)

const (
	DBDriverSQLite   = "sqlite"
	DBDriverPostgres = "postgres"
)

const (
	EnvAppEnv         = "YULISHOP_APP_ENV"
	EnvPort           = "YULISHOP_APP_PORT"
	EnvLogLevel       = "YULISHOP_LOG_LEVEL"
	EnvStoreBackend   = "YULISHOP_STORE_BACKEND"
	EnvStoreNamespace = "YULISHOP_STORE_NAMESPACE"
	EnvDBDSN          = "YULISHOP_DB_DSN"
	EnvDBDriver       = "YULISHOP_DB_DRIVER"
	EnvDBHost         = "YULISHOP_DB_HOST"
	EnvDBUser         = "YULISHOP_DB_USER"
	EnvDBName         = "YULISHOP_DB_NAME"
	EnvRedisURL       = "YULISHOP_REDIS_URL"
	EnvRedisAddr      = "YULISHOP_REDIS_ADDR"
	EnvPromoCodes     = "YULISHOP_PRICING_PROMO_CODES"
	EnvOrdersBaseURL  = "YULISHOP_ORDERS_BASE_URL"
	EnvPaymentDelay   = "YULISHOP_PAYMENT_MOCK_DELAY"
	EnvPaymentDecline = "YULISHOP_PAYMENT_MOCK_DECLINE"
)

var postgresDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
