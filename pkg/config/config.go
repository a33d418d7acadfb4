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
	Escrow       EscrowConfig
	PriceFeed    PriceFeedConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if !cfg.FeatureFlags.UseSQLite {
		if err := cfg.DB.ensureDSN(); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"AGRITRUST_APP_ENV" required:"true"`
	Port         string `envconfig:"AGRITRUST_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"AGRITRUST_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"AGRITRUST_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"AGRITRUST_DB_DSN"`
	Driver string `envconfig:"AGRITRUST_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"AGRITRUST_DB_HOST"`
	LegacyPort     int    `envconfig:"AGRITRUST_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"AGRITRUST_DB_USER"`
	LegacyPassword string `envconfig:"AGRITRUST_DB_PASSWORD"`
	LegacyName     string `envconfig:"AGRITRUST_DB_NAME"`
	LegacySSLMode  string `envconfig:"AGRITRUST_DB_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"AGRITRUST_SQLITE_PATH" default:"agritrust.db"`

	MaxOpenConns    int           `envconfig:"AGRITRUST_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"AGRITRUST_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"AGRITRUST_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"AGRITRUST_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"AGRITRUST_REDIS_URL"`
	Address      string        `envconfig:"AGRITRUST_REDIS_ADDR"`
	Password     string        `envconfig:"AGRITRUST_REDIS_PASSWORD"`
	DB           int           `envconfig:"AGRITRUST_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"AGRITRUST_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"AGRITRUST_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"AGRITRUST_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"AGRITRUST_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"AGRITRUST_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// EscrowConfig tunes the trust-core behavior.
type EscrowConfig struct {
	NotificationRetention int           `envconfig:"AGRITRUST_NOTIFICATION_RETENTION" default:"8"`
	OrderNumberStart      int64         `envconfig:"AGRITRUST_ORDER_NUMBER_START" default:"1000"`
	IdempotencyTTL        time.Duration `envconfig:"AGRITRUST_IDEMPOTENCY_TTL" default:"168h"`
}

// PriceFeedConfig configures the decorative market-price provider.
type PriceFeedConfig struct {
	URL          string        `envconfig:"AGRITRUST_PRICEFEED_URL"`
	FetchTimeout time.Duration `envconfig:"AGRITRUST_PRICEFEED_TIMEOUT" default:"5s"`
	CacheTTL     time.Duration `envconfig:"AGRITRUST_PRICEFEED_CACHE_TTL" default:"15m"`
	MaxRetries   int           `envconfig:"AGRITRUST_PRICEFEED_MAX_RETRIES" default:"3"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"AGRITRUST_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"AGRITRUST_AUTO_MIGRATE" default:"false"`
	AutoSeed    bool `envconfig:"AGRITRUST_AUTO_SEED" default:"false"`
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
