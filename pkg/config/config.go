package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	ChatRateLimit ChatRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	AI            AIConfig
	Reminders     RemindersConfig
	Store         StoreConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if _, err := cfg.App.Location(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", EnvTimeZone, err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PHARMABOT_APP_ENV" required:"true"`
	Port         string `envconfig:"PHARMABOT_APP_PORT" default:"8000"`
	LogLevel     string `envconfig:"PHARMABOT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PHARMABOT_LOG_WARN_STACK" default:"false"`
	LogFormat    string `envconfig:"PHARMABOT_LOG_FORMAT" default:"json"`
	TimeZone     string `envconfig:"PHARMABOT_TIME_ZONE" default:"Africa/Lagos"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// Location resolves the pharmacy time zone used for calendar-day arithmetic.
func (a AppConfig) Location() (*time.Location, error) {
	if strings.TrimSpace(a.TimeZone) == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(a.TimeZone)
}

type DBConfig struct {
	DSN    string `envconfig:"PHARMABOT_DB_DSN"`
	Driver string `envconfig:"PHARMABOT_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PHARMABOT_DB_HOST"`
	LegacyPort     int    `envconfig:"PHARMABOT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PHARMABOT_DB_USER"`
	LegacyPassword string `envconfig:"PHARMABOT_DB_PASSWORD"`
	LegacyName     string `envconfig:"PHARMABOT_DB_NAME"`
	LegacySSLMode  string `envconfig:"PHARMABOT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PHARMABOT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PHARMABOT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PHARMABOT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PHARMABOT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the sqlite driver was selected.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"PHARMABOT_REDIS_URL"`
	Address      string        `envconfig:"PHARMABOT_REDIS_ADDR"`
	Password     string        `envconfig:"PHARMABOT_REDIS_PASSWORD"`
	DB           int           `envconfig:"PHARMABOT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PHARMABOT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PHARMABOT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PHARMABOT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PHARMABOT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PHARMABOT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether any redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type ChatRateLimitConfig struct {
	Window time.Duration `envconfig:"PHARMABOT_CHAT_RATE_LIMIT_WINDOW" default:"1m"`
	Limit  int           `envconfig:"PHARMABOT_CHAT_RATE_LIMIT" default:"30"`
}

type FeatureFlagsConfig struct {
	AutoMigrate   bool `envconfig:"PHARMABOT_AUTO_MIGRATE" default:"false"`
	SeedInventory bool `envconfig:"PHARMABOT_SEED_INVENTORY" default:"true"`
}

// AIConfig drives the tiered response pipeline. Stages lists provider names in
// the order they are attempted before the rule-based fallback.
type AIConfig struct {
	Stages       []string      `envconfig:"PHARMABOT_AI_STAGES" default:"groq,huggingface"`
	StageTimeout time.Duration `envconfig:"PHARMABOT_AI_STAGE_TIMEOUT" default:"20s"`
	SystemPrompt string        `envconfig:"PHARMABOT_AI_SYSTEM_PROMPT"`
	MaxTokens    int           `envconfig:"PHARMABOT_AI_MAX_TOKENS" default:"400"`
	Temperature  float64       `envconfig:"PHARMABOT_AI_TEMPERATURE" default:"0.7"`
	TopP         float64       `envconfig:"PHARMABOT_AI_TOP_P" default:"0.9"`

	GroqAPIKey string `envconfig:"PHARMABOT_GROQ_API_KEY"`
	GroqURL    string `envconfig:"PHARMABOT_GROQ_URL" default:"https://api.groq.com/openai/v1/chat/completions"`
	GroqModel  string `envconfig:"PHARMABOT_GROQ_MODEL" default:"llama-3.1-8b-instant"`

	HuggingFaceEnabled bool          `envconfig:"PHARMABOT_HF_ENABLED" default:"false"`
	HuggingFaceToken   string        `envconfig:"PHARMABOT_HF_TOKEN"`
	HuggingFaceURL     string        `envconfig:"PHARMABOT_HF_URL" default:"https://api-inference.huggingface.co/models/meta-llama/Llama-3.1-8B-Instruct"`
	HuggingFaceTimeout time.Duration `envconfig:"PHARMABOT_HF_TIMEOUT" default:"30s"`
}

// RemindersConfig schedules the cron worker. Hours are in the App time zone.
type RemindersConfig struct {
	AMQPURL      string        `envconfig:"PHARMABOT_AMQP_URL"`
	Queue        string        `envconfig:"PHARMABOT_REMINDER_QUEUE" default:"pharmacy.outbound"`
	CronInterval time.Duration `envconfig:"PHARMABOT_CRON_INTERVAL" default:"1h"`
	AdminNumbers []string      `envconfig:"PHARMABOT_ADMIN_NUMBERS"`

	StartHour     int  `envconfig:"PHARMABOT_REMINDER_START_HOUR" default:"9"`
	WeeklyWeekday int  `envconfig:"PHARMABOT_WEEKLY_REPORT_WEEKDAY" default:"0"`
	WeeklyHour    int  `envconfig:"PHARMABOT_WEEKLY_REPORT_HOUR" default:"20"`
	DigestEnabled bool `envconfig:"PHARMABOT_ADMIN_DIGEST_ENABLED" default:"true"`
	DigestHour    int  `envconfig:"PHARMABOT_ADMIN_DIGEST_HOUR" default:"8"`
}

type StoreConfig struct {
	Name           string `envconfig:"PHARMABOT_STORE_NAME" default:"Ejide Pharmacy"`
	OrderPrefix    string `envconfig:"PHARMABOT_ORDER_PREFIX" default:"EJD"`
	PaymentDetails string `envconfig:"PHARMABOT_PAYMENT_DETAILS" default:"Bank: GTBank;Account Name: Ejide Pharmacy Ltd;Account Number: 0123456789"`
}

// PaymentLines splits the semicolon separated payment details into display lines.
func (s StoreConfig) PaymentLines() []string {
	lines := []string{}
	for _, part := range strings.Split(s.PaymentDetails, ";") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
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
