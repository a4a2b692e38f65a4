// Package config provides centralized default values for Chatdeck
package config

import (
	"log"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

var envLoaded sync.Once

func loadEnvFile() {
	envLoaded.Do(func() {
		if err := godotenv.Load(); err == nil {
			log.Println("Loading configuration overrides from .env file...")
		}
	})
}

func getEnvInt(key string, defaultValue int) int {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.Atoi(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%d (default: %d)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvString(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		if val != defaultValue {
			log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
		}
		return val
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.ParseBool(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%t (default: %t)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := time.ParseDuration(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

var (
	// Server Configuration
	Port               string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration

	// Tier Boundaries
	HotRetentionDays  int
	ColdCutoffDays    int

	// Hot Tier Query Protocol
	LogQueryEndpoint      string
	StreamingLogGroup     string
	RequestLogGroup       string
	QueryPollInterval     time.Duration
	QueryPollCeiling      time.Duration
	QueryResultLimit      int

	// Warm Tier
	WarmRetentionDays int

	// Cold Tier
	ArchiveRoot            string
	ArchiveSamplesPerDay   int

	// Database Pool
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeMinutes int
	DBConnMaxIdleMinutes     int

	// TTL Configuration
	QueryResultTTL  time.Duration
	TenantConfigTTL time.Duration
	MaxCachedQueries int

	// Response Shaping
	TopQuestionsDefault int
	TopQuestionsBatch   int
	ConversationLimit   int

	// Cleanup Intervals
	CleanupInterval   time.Duration
	RetentionSchedule string

	// Auth
	JWTSecret        string
	AdminPasswordHash string

	// Multi-tenant
	MultiTenantEnabled bool
	TenantDBPath       string
)

func init() {
	loadEnvFile()

	// Server Configuration
	Port = getEnvString("PORT", "8080")
	ServerReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second)
	ServerWriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second)
	ServerIdleTimeout = getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second)

	// Tier Boundaries
	HotRetentionDays = getEnvInt("HOT_RETENTION_DAYS", 7)
	ColdCutoffDays = getEnvInt("COLD_CUTOFF_DAYS", 90)

	// Hot Tier Query Protocol
	LogQueryEndpoint = getEnvString("LOG_QUERY_ENDPOINT", "http://localhost:9428")
	StreamingLogGroup = getEnvString("STREAMING_LOG_GROUP", "/chatdeck/completions/streaming")
	RequestLogGroup = getEnvString("REQUEST_LOG_GROUP", "/chatdeck/completions/request")
	QueryPollInterval = getEnvDuration("QUERY_POLL_INTERVAL", 2*time.Second)
	QueryPollCeiling = getEnvDuration("QUERY_POLL_CEILING", 60*time.Second)
	QueryResultLimit = getEnvInt("QUERY_RESULT_LIMIT", 1000)

	// Warm Tier
	WarmRetentionDays = getEnvInt("WARM_RETENTION_DAYS", 90)

	// Cold Tier
	ArchiveRoot = getEnvString("ARCHIVE_ROOT", "archive")
	ArchiveSamplesPerDay = getEnvInt("ARCHIVE_SAMPLES_PER_DAY", 10)

	// Database Pool
	DBMaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 10)
	DBMaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 3)
	DBConnMaxLifetimeMinutes = getEnvInt("DB_CONN_MAX_LIFETIME_MINUTES", 30)
	DBConnMaxIdleMinutes = getEnvInt("DB_CONN_MAX_IDLE_MINUTES", 3)

	// TTL Configuration
	QueryResultTTL = getEnvDuration("QUERY_RESULT_TTL", 5*time.Minute)
	TenantConfigTTL = getEnvDuration("TENANT_CONFIG_TTL", 2*time.Minute)
	MaxCachedQueries = getEnvInt("MAX_CACHED_QUERIES", 256)

	// Response Shaping
	TopQuestionsDefault = getEnvInt("TOP_QUESTIONS_DEFAULT", 5)
	TopQuestionsBatch = getEnvInt("TOP_QUESTIONS_BATCH", 10)
	ConversationLimit = getEnvInt("CONVERSATION_LIMIT", 50)

	// Cleanup Intervals
	CleanupInterval = getEnvDuration("CACHE_CLEANUP_INTERVAL", 30*time.Minute)
	RetentionSchedule = getEnvString("RETENTION_SCHEDULE", "@daily")

	// Auth
	JWTSecret = getEnvString("JWT_SECRET", "")
	AdminPasswordHash = getEnvString("ADMIN_PASSWORD_HASH", "")

	// Multi-tenant
	MultiTenantEnabled = getEnvBool("ENABLE_MULTI_TENANT", false)
	TenantDBPath = getEnvString("TENANT_DB_PATH", "chatdeck.db")
}
