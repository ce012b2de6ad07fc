package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App         AppConfig
	Service     ServiceConfig
	DB          DBConfig
	Redis       RedisConfig
	JWT         JWTConfig
	Password    PasswordConfig
	RateLimit   AuthRateLimitConfig
	Idempotency IdempotencyConfig
	CORS        CORSConfig
	Kafka       KafkaConfig
	Outbox      OutboxConfig
	QRCode      QRCodeConfig
	Cron        CronConfig
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
	Env          string `envconfig:"TABLESIDE_APP_ENV" required:"true"`
	Port         string `envconfig:"TABLESIDE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"TABLESIDE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TABLESIDE_LOG_WARN_STACK" default:"false"`
	AutoMigrate  bool   `envconfig:"TABLESIDE_AUTO_MIGRATE" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

type ServiceConfig struct {
	Kind string `envconfig:"TABLESIDE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN string `envconfig:"TABLESIDE_DB_DSN"`

	LegacyHost     string `envconfig:"TABLESIDE_DB_HOST"`
	LegacyPort     int    `envconfig:"TABLESIDE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"TABLESIDE_DB_USER"`
	LegacyPassword string `envconfig:"TABLESIDE_DB_PASSWORD"`
	LegacyName     string `envconfig:"TABLESIDE_DB_NAME"`
	LegacySSLMode  string `envconfig:"TABLESIDE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TABLESIDE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TABLESIDE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TABLESIDE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TABLESIDE_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	SlowQueryThreshold time.Duration `envconfig:"TABLESIDE_DB_SLOW_QUERY_THRESHOLD" default:"500ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TABLESIDE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"TABLESIDE_REDIS_ADDR"`
	Password     string        `envconfig:"TABLESIDE_REDIS_PASSWORD"`
	DB           int           `envconfig:"TABLESIDE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TABLESIDE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TABLESIDE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TABLESIDE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TABLESIDE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TABLESIDE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"TABLESIDE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"TABLESIDE_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"TABLESIDE_JWT_EXPIRATION_MINUTES" required:"true"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"TABLESIDE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"TABLESIDE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"TABLESIDE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"TABLESIDE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"TABLESIDE_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"TABLESIDE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"TABLESIDE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"TABLESIDE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"TABLESIDE_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"TABLESIDE_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"TABLESIDE_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type IdempotencyConfig struct {
	OrderTTL time.Duration `envconfig:"TABLESIDE_IDEMPOTENCY_ORDER_TTL" default:"24h"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"TABLESIDE_CORS_ALLOWED_ORIGINS" default:"*"`
}

type KafkaConfig struct {
	Brokers              []string      `envconfig:"TABLESIDE_KAFKA_BROKERS" default:"localhost:9092"`
	OrdersTopic          string        `envconfig:"TABLESIDE_KAFKA_ORDERS_TOPIC" default:"tableside-orders"`
	RegistrationsTopic   string        `envconfig:"TABLESIDE_KAFKA_REGISTRATIONS_TOPIC" default:"tableside-registrations"`
	WriteTimeout         time.Duration `envconfig:"TABLESIDE_KAFKA_WRITE_TIMEOUT" default:"10s"`
	RequiredAcksAll      bool          `envconfig:"TABLESIDE_KAFKA_REQUIRED_ACKS_ALL" default:"true"`
	AllowAutoTopicCreate bool          `envconfig:"TABLESIDE_KAFKA_AUTO_TOPIC_CREATE" default:"false"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"TABLESIDE_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"TABLESIDE_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"TABLESIDE_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type QRCodeConfig struct {
	BaseURL string `envconfig:"TABLESIDE_QRCODE_BASE_URL" default:"http://localhost:3000"`
	Size    int    `envconfig:"TABLESIDE_QRCODE_SIZE" default:"256"`
}

type CronConfig struct {
	Interval           time.Duration `envconfig:"TABLESIDE_CRON_INTERVAL" default:"5m"`
	LockTTL            time.Duration `envconfig:"TABLESIDE_CRON_LOCK_TTL" default:"4m"`
	RegistrationMaxAge time.Duration `envconfig:"TABLESIDE_CRON_REGISTRATION_MAX_AGE" default:"12h"`
	StaleCartMaxAge    time.Duration `envconfig:"TABLESIDE_CRON_STALE_CART_MAX_AGE" default:"720h"`
	OutboxRetention    time.Duration `envconfig:"TABLESIDE_CRON_OUTBOX_RETENTION" default:"168h"`
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
