package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Stripe       StripeConfig
	Email        EmailConfig
	Newsletter   NewsletterConfig
	Search       SearchConfig
	Cron         CronConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREFRONT_APP_ENV" required:"true"`
	Port         string `envconfig:"STOREFRONT_APP_PORT" required:"true"`
	BaseURL      string `envconfig:"STOREFRONT_APP_BASE_URL" default:"http://localhost:3000"`
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`

	AllowedOrigins  []string      `envconfig:"STOREFRONT_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
	ShutdownTimeout time.Duration `envconfig:"STOREFRONT_SHUTDOWN_TIMEOUT" default:"15s"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// AbsoluteURL joins the public storefront origin with an app path.
func (a AppConfig) AbsoluteURL(path string) string {
	base := strings.TrimRight(strings.TrimSpace(a.BaseURL), "/")
	if path == "" {
		return base
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}

type DBConfig struct {
	DSN    string `envconfig:"STOREFRONT_DB_DSN"`
	Driver string `envconfig:"STOREFRONT_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"STOREFRONT_DB_HOST"`
	LegacyPort     int    `envconfig:"STOREFRONT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"STOREFRONT_DB_USER"`
	LegacyPassword string `envconfig:"STOREFRONT_DB_PASSWORD"`
	LegacyName     string `envconfig:"STOREFRONT_DB_NAME"`
	LegacySSLMode  string `envconfig:"STOREFRONT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STOREFRONT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STOREFRONT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the sqlite dialector was requested.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREFRONT_REDIS_URL" required:"true"`
	Address      string        `envconfig:"STOREFRONT_REDIS_ADDR"`
	Password     string        `envconfig:"STOREFRONT_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREFRONT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREFRONT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOREFRONT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOREFRONT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// JWTConfig holds the shared secret used by the auth provider to sign session tokens.
type JWTConfig struct {
	Secret string `envconfig:"STOREFRONT_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"STOREFRONT_JWT_ISSUER" required:"true"`
}

type StripeConfig struct {
	APIKey          string `envconfig:"STOREFRONT_STRIPE_API_KEY" required:"true"`
	Env             string `envconfig:"STOREFRONT_STRIPE_ENV" default:"test"`
	StandardPriceID string `envconfig:"STOREFRONT_STRIPE_STD_MONTHLY_PRICE_ID"`
	ProPriceID      string `envconfig:"STOREFRONT_STRIPE_PRO_MONTHLY_PRICE_ID"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type EmailConfig struct {
	PostmarkServerToken  string `envconfig:"STOREFRONT_POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `envconfig:"STOREFRONT_POSTMARK_ACCOUNT_TOKEN"`
	FromAddress          string `envconfig:"STOREFRONT_EMAIL_FROM_ADDRESS" required:"true"`
	SupportAddress       string `envconfig:"STOREFRONT_EMAIL_SUPPORT_ADDRESS"`
	DevOutboxDir         string `envconfig:"STOREFRONT_EMAIL_DEV_OUTBOX_DIR" default:"tmp/emails"`
}

// UsePostmark reports whether both Postmark tokens are configured.
func (e EmailConfig) UsePostmark() bool {
	return strings.TrimSpace(e.PostmarkServerToken) != "" && strings.TrimSpace(e.PostmarkAccountToken) != ""
}

type NewsletterConfig struct {
	RateLimitWindow     time.Duration `envconfig:"STOREFRONT_NEWSLETTER_RATE_LIMIT_WINDOW" default:"10m"`
	RateLimitIPLimit    int           `envconfig:"STOREFRONT_NEWSLETTER_RATE_LIMIT_IP_LIMIT" default:"10"`
	RateLimitEmailLimit int           `envconfig:"STOREFRONT_NEWSLETTER_RATE_LIMIT_EMAIL_LIMIT" default:"3"`
}

type SearchConfig struct {
	ResultLimit int           `envconfig:"STOREFRONT_SEARCH_RESULT_LIMIT" default:"10"`
	CacheTTL    time.Duration `envconfig:"STOREFRONT_SEARCH_CACHE_TTL" default:"30s"`
}

// CronConfig drives the cron worker. Schedule is an optional five-field cron
// expression; when set it takes precedence over Interval.
type CronConfig struct {
	Interval       time.Duration `envconfig:"STOREFRONT_CRON_INTERVAL" default:"6h"`
	Schedule       string        `envconfig:"STOREFRONT_CRON_SCHEDULE"`
	SweepBatchSize int           `envconfig:"STOREFRONT_CRON_SWEEP_BATCH_SIZE" default:"100"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"STOREFRONT_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		return fmt.Errorf("%s is required for the sqlite driver", EnvDBDSN)
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
