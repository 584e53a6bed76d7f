package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "KUROKIRA"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "KUROKIRA_DB_DSN"
	EnvDBHost = "KUROKIRA_DB_HOST"
	EnvDBUser = "KUROKIRA_DB_USER"
	EnvDBName = "KUROKIRA_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Session      SessionConfig
	Cart         CartConfig
	Pricing      PricingConfig
	Checkout     CheckoutConfig
	MercadoPago  MercadoPagoConfig
	Email        EmailConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
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
	Env          string `envconfig:"KUROKIRA_APP_ENV" required:"true"`
	Port         string `envconfig:"KUROKIRA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"KUROKIRA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"KUROKIRA_LOG_WARN_STACK" default:"false"`

	CORSOrigins []string `envconfig:"KUROKIRA_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"KUROKIRA_DB_DSN"`
	Driver string `envconfig:"KUROKIRA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"KUROKIRA_DB_HOST"`
	LegacyPort     int    `envconfig:"KUROKIRA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"KUROKIRA_DB_USER"`
	LegacyPassword string `envconfig:"KUROKIRA_DB_PASSWORD"`
	LegacyName     string `envconfig:"KUROKIRA_DB_NAME"`
	LegacySSLMode  string `envconfig:"KUROKIRA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"KUROKIRA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"KUROKIRA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"KUROKIRA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"KUROKIRA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"KUROKIRA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"KUROKIRA_REDIS_ADDR"`
	Password     string        `envconfig:"KUROKIRA_REDIS_PASSWORD"`
	DB           int           `envconfig:"KUROKIRA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"KUROKIRA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"KUROKIRA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"KUROKIRA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"KUROKIRA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"KUROKIRA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type SessionConfig struct {
	Secret     string        `envconfig:"KUROKIRA_SESSION_SECRET" required:"true"`
	Issuer     string        `envconfig:"KUROKIRA_SESSION_ISSUER" default:"kurokira-storefront"`
	TTL        time.Duration `envconfig:"KUROKIRA_SESSION_TTL" default:"720h"`
	CookieName string        `envconfig:"KUROKIRA_SESSION_COOKIE" default:"kk_session"`
}

type CartConfig struct {
	MaxQuantity int           `envconfig:"KUROKIRA_CART_MAX_QUANTITY" default:"10"`
	TTL         time.Duration `envconfig:"KUROKIRA_CART_TTL" default:"720h"`
}

type PricingConfig struct {
	FreeShippingThreshold int `envconfig:"KUROKIRA_FREE_SHIPPING_THRESHOLD" default:"150000"`
	ShippingFlatFee       int `envconfig:"KUROKIRA_SHIPPING_FLAT_FEE" default:"5000"`
	TransferDiscountPct   int `envconfig:"KUROKIRA_TRANSFER_DISCOUNT_PCT" default:"25"`
	CashDiscountPct       int `envconfig:"KUROKIRA_CASH_DISCOUNT_PCT" default:"10"`
	InstallmentCount      int `envconfig:"KUROKIRA_INSTALLMENT_COUNT" default:"3"`
}

type CheckoutConfig struct {
	SessionTTL     time.Duration `envconfig:"KUROKIRA_CHECKOUT_SESSION_TTL" default:"2h"`
	OrderPrefix    string        `envconfig:"KUROKIRA_ORDER_PREFIX" default:"KK"`
	SubmitWindow   time.Duration `envconfig:"KUROKIRA_CHECKOUT_SUBMIT_WINDOW" default:"1m"`
	SubmitLimit    int           `envconfig:"KUROKIRA_CHECKOUT_SUBMIT_LIMIT" default:"5"`
	GatewayTimeout time.Duration `envconfig:"KUROKIRA_CHECKOUT_GATEWAY_TIMEOUT" default:"15s"`
}

type MercadoPagoConfig struct {
	AccessToken string `envconfig:"KUROKIRA_MP_ACCESS_TOKEN"`
	Env         string `envconfig:"KUROKIRA_MP_ENV" default:"sandbox"`
	BaseURL     string `envconfig:"KUROKIRA_MP_BASE_URL"`
	BackURL     string `envconfig:"KUROKIRA_MP_BACK_URL"`
}

// Environment returns the normalized MercadoPago environment (sandbox/production).
func (m MercadoPagoConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(m.Env))
	if env == "" {
		return "sandbox"
	}
	return env
}

type EmailConfig struct {
	SendgridAPIKey string `envconfig:"KUROKIRA_SENDGRID_API_KEY"`
	FromAddress    string `envconfig:"KUROKIRA_EMAIL_FROM" default:"pedidos@kurokira.com"`
	FromName       string `envconfig:"KUROKIRA_EMAIL_FROM_NAME" default:"KURO/KIRA"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"KUROKIRA_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	OrdersTopic        string `envconfig:"KUROKIRA_PUBSUB_ORDERS_TOPIC" default:"kk-order-events"`
	OrdersSubscription string `envconfig:"KUROKIRA_PUBSUB_ORDERS_SUBSCRIPTION" default:"kk-order-events-worker"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"KUROKIRA_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"KUROKIRA_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"KUROKIRA_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"KUROKIRA_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"KUROKIRA_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
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
