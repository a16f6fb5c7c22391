package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPPort string

	CatalogBaseURL string
	RatesURL       string

	IdentityBaseURL string
	IdentityAPIKey  string

	MongoURI    string
	MongoDBName string

	RedisAddr     string
	RedisPassword string

	SnapshotDBPath string

	KafkaBrokers     []string
	KafkaOrdersTopic string

	// SessionID scopes the catalog cache. Empty means one is generated at startup.
	SessionID string

	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	LogEvents       bool
}

func Load() Config {
	return Config{
		HTTPPort:         getEnv("HTTP_PORT", "8080"),
		CatalogBaseURL:   getEnv("CATALOG_BASE_URL", "https://fakestoreapi.com"),
		RatesURL:         getEnv("RATES_URL", "https://api.exchangerate-api.com/v4/latest/USD"),
		IdentityBaseURL:  getEnv("IDENTITY_BASE_URL", "https://identitytoolkit.googleapis.com/v1"),
		IdentityAPIKey:   getEnv("IDENTITY_API_KEY", ""),
		MongoURI:         getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:      getEnv("MONGO_DB_NAME", "storefront"),
		RedisAddr:        getEnv("REDIS_ADDR", ""),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		SnapshotDBPath:   getEnv("SNAPSHOT_DB_PATH", "storefront.db"),
		KafkaBrokers:     splitCSV(getEnv("KAFKA_BROKERS", "")),
		KafkaOrdersTopic: getEnv("KAFKA_ORDERS_TOPIC", "storefront.orders-placed"),
		SessionID:        getEnv("SESSION_ID", ""),
		RequestTimeout:   getDuration("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout:  getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		LogEvents:        getBool("LOG_EVENTS", false),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
