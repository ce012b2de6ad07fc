package config

const (
	EnvPrefix = "TABLESIDE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv    = "TABLESIDE_APP_ENV"
	EnvPort      = "TABLESIDE_APP_PORT"
	EnvDBDSN     = "TABLESIDE_DB_DSN"
	EnvDBHost    = "TABLESIDE_DB_HOST"
	EnvDBUser    = "TABLESIDE_DB_USER"
	EnvDBName    = "TABLESIDE_DB_NAME"
	EnvDBPass    = "TABLESIDE_DB_PASSWORD"
	EnvRedisURL  = "TABLESIDE_REDIS_URL"
	EnvJWTSecret = "TABLESIDE_JWT_SECRET"
	EnvJWTIssuer = "TABLESIDE_JWT_ISSUER"
	EnvJWTExpMin = "TABLESIDE_JWT_EXPIRATION_MINUTES"
	EnvBrokers   = "TABLESIDE_KAFKA_BROKERS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
