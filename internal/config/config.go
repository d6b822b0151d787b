package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	JWTPublicKeyPath  string
	JWTPrivateKeyPath string

	// TaxServiceURL is the base URL of the external tax-jurisdiction service.
	// When empty or unreachable the estimator falls back to TaxFlatRate.
	TaxServiceURL    string
	TaxServiceAPIKey string
	TaxFlatRate      float64

	StripeSecretKey string

	// SNSPlatformAppARN is the SNS platform application fronting FCM.
	// Empty means the push backend is unconfigured.
	SNSPlatformAppARN string
	SNSRegion         string

	FeedPollInterval time.Duration
	FeedLimit        int

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Notifications string
	Users         string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Notifications: getEnv("DYNAMO_TABLE_NOTIFICATIONS", "notifications"),
			Users:         getEnv("DYNAMO_TABLE_USERS", "users"),
		},

		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),

		TaxServiceURL:    getEnv("TAX_SERVICE_URL", ""),
		TaxServiceAPIKey: getEnv("TAX_SERVICE_API_KEY", ""),
		TaxFlatRate:      getEnvFloat("TAX_FLAT_RATE", 0.0719),

		StripeSecretKey: getEnv("STRIPE_SECRET_KEY", ""),

		SNSPlatformAppARN: getEnv("SNS_PLATFORM_APP_ARN", ""),
		SNSRegion:         getEnv("SNS_REGION", "us-east-1"),

		FeedPollInterval: getEnvDuration("FEED_POLL_INTERVAL", 2*time.Second),
		FeedLimit:        getEnvInt("FEED_LIMIT", 50),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
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

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
