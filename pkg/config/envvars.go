package config

const (
	EnvPrefix = "STORECRAFT"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv = "STORECRAFT_APP_ENV"
	EnvPort   = "STORECRAFT_APP_PORT"

	EnvDBDSN  = "STORECRAFT_DB_DSN"
	EnvDBHost = "STORECRAFT_DB_HOST"
	EnvDBUser = "STORECRAFT_DB_USER"
	EnvDBName = "STORECRAFT_DB_NAME"

	EnvRedisURL = "STORECRAFT_REDIS_URL"

	EnvStripeAPIKey        = "STORECRAFT_STRIPE_API_KEY"
	EnvStripeWebhookSecret = "STORECRAFT_STRIPE_WEBHOOK_SECRET"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
