package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort        string
	AppEnv         string
	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables
	SMTPHost       string
	SMTPPort       int
	SMTPFrom       string
	SMTPUsername   string
	SMTPPassword   string
	AllowedOrigins []string // CORS allowed origins

	// ConfirmationCodeDigits is the length of emailed confirmation codes.
	ConfirmationCodeDigits int
	// SessionTokenBytes is the number of random bytes behind a session token.
	SessionTokenBytes int
	// InitialBalance is given to a user record created on first confirmation.
	InitialBalance int64
	// DebugEchoCode returns freshly generated codes in the issuance response.
	// Diagnostic only; refused when AppEnv is production.
	DebugEchoCode bool
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users   string
	Reviews string
}

// Load reads all configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		AppPort:        getEnv("APP_PORT", "5000"),
		AppEnv:         getEnv("APP_ENV", "development"),
		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:   getEnv("DYNAMO_TABLE_USERS", "users"),
			Reviews: getEnv("DYNAMO_TABLE_REVIEWS", "reviews"),
		},
		SMTPHost:               getEnv("SMTP_HOST", "localhost"),
		SMTPPort:               getEnvInt("SMTP_PORT", 1025),
		SMTPFrom:               getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername:           getEnv("SMTP_USERNAME", ""),
		SMTPPassword:           getEnv("SMTP_PASSWORD", ""),
		AllowedOrigins:         strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
		ConfirmationCodeDigits: getEnvInt("CONFIRMATION_CODE_DIGITS", 6),
		SessionTokenBytes:      getEnvInt("SESSION_TOKEN_BYTES", 30),
		InitialBalance:         int64(getEnvInt("USER_INITIAL_BALANCE", 0)),
		DebugEchoCode:          getEnvBool("DEBUG_ECHO_CODE", false),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DebugEchoCode && c.IsProduction() {
		return errors.New("config: DEBUG_ECHO_CODE must not be true when APP_ENV=production")
	}
	if c.SessionTokenBytes < 16 {
		return errors.New("config: SESSION_TOKEN_BYTES must be at least 16")
	}
	if c.ConfirmationCodeDigits < 4 || c.ConfirmationCodeDigits > 10 {
		return errors.New("config: CONFIRMATION_CODE_DIGITS must be between 4 and 10")
	}
	if c.InitialBalance < 0 {
		return errors.New("config: USER_INITIAL_BALANCE must not be negative")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
