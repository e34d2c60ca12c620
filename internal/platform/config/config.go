package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Store drivers.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMongo    = "mongo"
	StoreDriverMemory   = "memory"
)

// Config holds application configuration.
type Config struct {
	Port         string
	IsProduction bool
	CORSOrigins  []string

	StoreDriver    string
	DatabaseURL    string
	EnableDBCheck  bool
	MigrationsPath string
	MongoURI       string
	MongoDatabase  string

	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string

	// Refresh tokens are opaque and stored hashed on the account.
	RefreshTokenExpiryDuration time.Duration

	// Workflow
	InitialClientBalance decimal.Decimal
	StoreTimeout         time.Duration
	CASRetries           int
	TxnIDMaxAttempts     int

	// Administrator seeded at startup when AdminPassword is set
	AdminEmail          string
	AdminPassword       string
	AdminInitialBalance decimal.Decimal

	// Rate limits in limiter format, e.g. "5-M"
	LoginRateLimit    string
	WorkflowRateLimit string

	// Notifications
	SMTPHost          string
	SMTPPort          int
	SMTPUsername      string
	SMTPPassword      string
	EmailFrom         string
	TwilioAccountSID  string
	TwilioAuthToken   string
	TwilioFromPhone   string
	NotifierWorkers   int
	NotifierQueueSize int
	NotifierTimeout   time.Duration

	PosthogAPIKey   string
	PosthogEndpoint string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	viper.SetDefault("STORE_DRIVER", StoreDriverPostgres)
	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("MIGRATIONS_PATH", "file://migrations")
	viper.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	viper.SetDefault("MONGO_DATABASE", "funds")
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_EXPIRY_DURATION", "30m")
	viper.SetDefault("JWT_ISSUER", "funds-backend")
	viper.SetDefault("REFRESH_TOKEN_EXPIRY_DURATION", "168h")
	viper.SetDefault("INITIAL_CLIENT_BALANCE", "500000")
	viper.SetDefault("STORE_TIMEOUT", "5s")
	viper.SetDefault("WORKFLOW_CAS_RETRIES", 1)
	viper.SetDefault("TXN_ID_MAX_ATTEMPTS", 3)
	viper.SetDefault("ADMIN_EMAIL", "admin@btgpactual.com")
	viper.SetDefault("ADMIN_PASSWORD", "")
	viper.SetDefault("ADMIN_INITIAL_BALANCE", "1000000")
	viper.SetDefault("LOGIN_RATE_LIMIT", "5-M")
	viper.SetDefault("WORKFLOW_RATE_LIMIT", "30-M")
	viper.SetDefault("SMTP_HOST", "")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("SMTP_USERNAME", "")
	viper.SetDefault("SMTP_PASSWORD", "")
	viper.SetDefault("EMAIL_FROM", "no-reply@funds.local")
	viper.SetDefault("TWILIO_ACCOUNT_SID", "")
	viper.SetDefault("TWILIO_AUTH_TOKEN", "")
	viper.SetDefault("TWILIO_FROM_PHONE", "")
	viper.SetDefault("NOTIFIER_WORKERS", 2)
	viper.SetDefault("NOTIFIER_QUEUE_SIZE", 256)
	viper.SetDefault("NOTIFIER_TIMEOUT", "10s")
	viper.SetDefault("POSTHOG_API_KEY", "")
	viper.SetDefault("POSTHOG_ENDPOINT", "https://eu.i.posthog.com")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.CORSOrigins = splitList(viper.GetString("CORS_ORIGINS"))

	cfg.StoreDriver = strings.ToLower(viper.GetString("STORE_DRIVER"))
	switch cfg.StoreDriver {
	case StoreDriverPostgres, StoreDriverMongo, StoreDriverMemory:
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.StoreDriver == StoreDriverPostgres && cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")
	cfg.MigrationsPath = viper.GetString("MIGRATIONS_PATH")
	cfg.MongoURI = viper.GetString("MONGO_URI")
	cfg.MongoDatabase = viper.GetString("MONGO_DATABASE")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must not be empty")
	}
	cfg.JWTExpiryDuration = durationOrDefault("JWT_EXPIRY_DURATION", 30*time.Minute)
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")
	cfg.RefreshTokenExpiryDuration = durationOrDefault("REFRESH_TOKEN_EXPIRY_DURATION", 7*24*time.Hour)

	initialBalance, err := decimal.NewFromString(viper.GetString("INITIAL_CLIENT_BALANCE"))
	if err != nil || initialBalance.IsNegative() {
		return nil, fmt.Errorf("invalid INITIAL_CLIENT_BALANCE %q", viper.GetString("INITIAL_CLIENT_BALANCE"))
	}
	cfg.InitialClientBalance = initialBalance
	cfg.StoreTimeout = durationOrDefault("STORE_TIMEOUT", 5*time.Second)
	cfg.CASRetries = viper.GetInt("WORKFLOW_CAS_RETRIES")
	if cfg.CASRetries < 0 {
		cfg.CASRetries = 0
	}
	cfg.TxnIDMaxAttempts = viper.GetInt("TXN_ID_MAX_ATTEMPTS")
	if cfg.TxnIDMaxAttempts < 1 {
		cfg.TxnIDMaxAttempts = 1
	}

	cfg.AdminEmail = viper.GetString("ADMIN_EMAIL")
	cfg.AdminPassword = viper.GetString("ADMIN_PASSWORD")
	adminBalance, err := decimal.NewFromString(viper.GetString("ADMIN_INITIAL_BALANCE"))
	if err != nil || adminBalance.IsNegative() {
		return nil, fmt.Errorf("invalid ADMIN_INITIAL_BALANCE %q", viper.GetString("ADMIN_INITIAL_BALANCE"))
	}
	cfg.AdminInitialBalance = adminBalance

	cfg.LoginRateLimit = viper.GetString("LOGIN_RATE_LIMIT")
	cfg.WorkflowRateLimit = viper.GetString("WORKFLOW_RATE_LIMIT")

	cfg.SMTPHost = viper.GetString("SMTP_HOST")
	cfg.SMTPPort = viper.GetInt("SMTP_PORT")
	cfg.SMTPUsername = viper.GetString("SMTP_USERNAME")
	cfg.SMTPPassword = viper.GetString("SMTP_PASSWORD")
	cfg.EmailFrom = viper.GetString("EMAIL_FROM")
	if cfg.SMTPHost == "" {
		log.Println("Warning: SMTP_HOST not set. Email notifications will be simulated.")
	}
	cfg.TwilioAccountSID = viper.GetString("TWILIO_ACCOUNT_SID")
	cfg.TwilioAuthToken = viper.GetString("TWILIO_AUTH_TOKEN")
	cfg.TwilioFromPhone = viper.GetString("TWILIO_FROM_PHONE")
	if cfg.TwilioAccountSID == "" || cfg.TwilioAuthToken == "" {
		log.Println("Warning: Twilio credentials not set. SMS notifications will be simulated.")
	}
	cfg.NotifierWorkers = max(viper.GetInt("NOTIFIER_WORKERS"), 1)
	cfg.NotifierQueueSize = max(viper.GetInt("NOTIFIER_QUEUE_SIZE"), 1)
	cfg.NotifierTimeout = durationOrDefault("NOTIFIER_TIMEOUT", 10*time.Second)

	cfg.PosthogAPIKey = viper.GetString("POSTHOG_API_KEY")
	cfg.PosthogEndpoint = viper.GetString("POSTHOG_ENDPOINT")

	return cfg, nil
}

func durationOrDefault(key string, def time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, def)
		}
		return def
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
