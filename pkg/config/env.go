package config

const EnvPrefix = "PHARMABOT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

const (
	EnvAppEnv   = "PHARMABOT_APP_ENV"
	EnvPort     = "PHARMABOT_APP_PORT"
	EnvTimeZone = "PHARMABOT_TIME_ZONE"

	EnvDBDSN    = "PHARMABOT_DB_DSN"
	EnvDBDriver = "PHARMABOT_DB_DRIVER"
	EnvDBHost   = "PHARMABOT_DB_HOST"
	EnvDBUser   = "PHARMABOT_DB_USER"
	EnvDBName   = "PHARMABOT_DB_NAME"

	EnvRedisURL = "PHARMABOT_REDIS_URL"

	EnvAIStages       = "PHARMABOT_AI_STAGES"
	EnvAIStageTimeout = "PHARMABOT_AI_STAGE_TIMEOUT"
	EnvGroqAPIKey     = "PHARMABOT_GROQ_API_KEY"
	EnvHFEnabled      = "PHARMABOT_HF_ENABLED"

	EnvAdminNumbers   = "PHARMABOT_ADMIN_NUMBERS"
	EnvPaymentDetails = "PHARMABOT_PAYMENT_DETAILS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
