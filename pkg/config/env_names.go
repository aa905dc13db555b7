package config

// Environment variable names shared between Load and tests.
const (
	EnvAppEnv             = "AQUAPEAK_APP_ENV"
	EnvAppPort            = "AQUAPEAK_APP_PORT"
	EnvLogLevel           = "AQUAPEAK_LOG_LEVEL"
	EnvKVBackend          = "AQUAPEAK_KV_BACKEND"
	EnvRedisURL           = "AQUAPEAK_REDIS_URL"
	EnvSQLitePath         = "AQUAPEAK_SQLITE_PATH"
	EnvCartItemsKey       = "AQUAPEAK_CART_ITEMS_KEY"
	EnvCartRecentKey      = "AQUAPEAK_CART_RECENT_KEY"
	EnvCartStoreIdleTTL   = "AQUAPEAK_CART_STORE_IDLE_TTL"
	EnvCheckoutEndpoint   = "AQUAPEAK_CHECKOUT_ORDER_ENDPOINT"
	EnvSessionSecret      = "AQUAPEAK_SESSION_SECRET"
	EnvSessionIssuer      = "AQUAPEAK_SESSION_ISSUER"
	EnvSessionExpirations = "AQUAPEAK_SESSION_EXPIRATION_MINUTES"
)
