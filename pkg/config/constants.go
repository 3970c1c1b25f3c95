package config

// EnvPrefix is passed to envconfig; individual fields carry the full
// variable name so the prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

// Environment variable names referenced outside struct tags.
const (
	EnvAppEnv                 = "TASKFORGE_APP_ENV"
	EnvPort                   = "TASKFORGE_APP_PORT"
	EnvDBDSN                  = "TASKFORGE_DB_DSN"
	EnvDBHost                 = "TASKFORGE_DB_HOST"
	EnvDBUser                 = "TASKFORGE_DB_USER"
	EnvDBName                 = "TASKFORGE_DB_NAME"
	EnvRedisURL               = "TASKFORGE_REDIS_URL"
	EnvJWTSecret              = "TASKFORGE_JWT_SECRET"
	EnvJWTIssuer              = "TASKFORGE_JWT_ISSUER"
	EnvJWTExpMins             = "TASKFORGE_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "TASKFORGE_REFRESH_TOKEN_TTL_MINUTES"
	EnvGCPProjectID           = "TASKFORGE_GCP_PROJECT_ID"
	EnvPubSubDomainTopic      = "TASKFORGE_PUBSUB_DOMAIN_TOPIC"
	EnvPubSubDomainSub        = "TASKFORGE_PUBSUB_DOMAIN_SUBSCRIPTION"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
