package config

// EnvPrefix is passed to envconfig; every field carries an explicit key so the
// prefix only matters for fields without one.
const EnvPrefix = "STOREFRONT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

const (
	EnvAppEnv  = "STOREFRONT_APP_ENV"
	EnvPort    = "STOREFRONT_APP_PORT"
	EnvBaseURL = "STOREFRONT_APP_BASE_URL"

	EnvDBDSN    = "STOREFRONT_DB_DSN"
	EnvDBDriver = "STOREFRONT_DB_DRIVER"
	EnvDBHost   = "STOREFRONT_DB_HOST"
	EnvDBUser   = "STOREFRONT_DB_USER"
	EnvDBName   = "STOREFRONT_DB_NAME"

	EnvRedisURL = "STOREFRONT_REDIS_URL"

	EnvJWTSecret = "STOREFRONT_JWT_SECRET"
	EnvJWTIssuer = "STOREFRONT_JWT_ISSUER"

	EnvStripeAPIKey     = "STOREFRONT_STRIPE_API_KEY"
	EnvStripeEnv        = "STOREFRONT_STRIPE_ENV"
	EnvStripeStdPriceID = "STOREFRONT_STRIPE_STD_MONTHLY_PRICE_ID"
	EnvStripeProPriceID = "STOREFRONT_STRIPE_PRO_MONTHLY_PRICE_ID"

	EnvEmailFromAddress = "STOREFRONT_EMAIL_FROM_ADDRESS"

	EnvNewsletterRateLimitWindow = "STOREFRONT_NEWSLETTER_RATE_LIMIT_WINDOW"
	EnvSearchCacheTTL            = "STOREFRONT_SEARCH_CACHE_TTL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
