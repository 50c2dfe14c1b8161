package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is passed to envconfig; individual fields carry fully-qualified tags.
const EnvPrefix = "CRMBASE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "CRMBASE_DB_DSN"
	EnvDBHost = "CRMBASE_DB_HOST"
	EnvDBUser = "CRMBASE_DB_USER"
	EnvDBName = "CRMBASE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	Pagination    PaginationConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
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
	Env          string `envconfig:"CRMBASE_APP_ENV" required:"true"`
	Port         string `envconfig:"CRMBASE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CRMBASE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CRMBASE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"CRMBASE_DB_DSN"`
	Driver string `envconfig:"CRMBASE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CRMBASE_DB_HOST"`
	LegacyPort     int    `envconfig:"CRMBASE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CRMBASE_DB_USER"`
	LegacyPassword string `envconfig:"CRMBASE_DB_PASSWORD"`
	LegacyName     string `envconfig:"CRMBASE_DB_NAME"`
	LegacySSLMode  string `envconfig:"CRMBASE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CRMBASE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CRMBASE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CRMBASE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CRMBASE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CRMBASE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CRMBASE_REDIS_ADDR"`
	Password     string        `envconfig:"CRMBASE_REDIS_PASSWORD"`
	DB           int           `envconfig:"CRMBASE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CRMBASE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CRMBASE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CRMBASE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CRMBASE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CRMBASE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"CRMBASE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"CRMBASE_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"CRMBASE_JWT_EXPIRATION_MINUTES" required:"true"`
}

// SessionTTL returns how long an access session stays valid in the session store.
func (j JWTConfig) SessionTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"CRMBASE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"CRMBASE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"CRMBASE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"CRMBASE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"CRMBASE_ARGON_KEY_LEN" default:"32"`
}

type PaginationConfig struct {
	CompanyPageSize int `envconfig:"CRMBASE_COMPANY_PAGE_SIZE" default:"20"`
	UserPageSize    int `envconfig:"CRMBASE_USER_PAGE_SIZE" default:"20"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"CRMBASE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginLoginLimit    int           `envconfig:"CRMBASE_AUTH_RATE_LIMIT_LOGIN_LOGIN_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"CRMBASE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"CRMBASE_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterLoginLimit int           `envconfig:"CRMBASE_AUTH_RATE_LIMIT_REGISTER_LOGIN_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"CRMBASE_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"CRMBASE_AUTO_MIGRATE" default:"false"`
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
