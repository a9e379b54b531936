package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	DBDriver    string
	DatabaseURL string

	AuthProvider        string
	JWTSecret           string
	FirebaseCredentials string
	FirebaseProjectID   string

	PushProvider    string
	VapidPublicKey  string
	VapidPrivateKey string
	VapidSubscriber string

	AppBaseURL         string
	DefaultRedirectURL string
	CronSecret         string
	DispatchBatchSize  int
	SchedulerInterval  time.Duration

	GoogleProjectID             string
	GoogleCredentials           string
	SchedulerPubSubSubscription string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SubscribeRateLimit  int
	SubscribeRateWindow time.Duration
	TrackRateLimit      int
	TrackRateWindow     time.Duration
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Port:                getEnv("PORT", "8080"),
		DBDriver:            getEnv("DB_DRIVER", "postgres"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		AuthProvider:        getEnv("AUTH_PROVIDER", "firebase"),
		JWTSecret:           getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		FirebaseCredentials: getEnv("FIREBASE_CREDENTIALS", ""),
		FirebaseProjectID:   getEnv("FIREBASE_PROJECT_ID", ""),
		PushProvider:        getEnv("PUSH_PROVIDER", "fcm"),
		VapidPublicKey:      getEnv("VAPID_PUBLIC_KEY", ""),
		VapidPrivateKey:     getEnv("VAPID_PRIVATE_KEY", ""),
		VapidSubscriber:     getEnv("VAPID_SUBSCRIBER", "mailto:admin@example.com"),
		AppBaseURL:          getEnv("APP_BASE_URL", "http://localhost:8080"),
		DefaultRedirectURL:  getEnv("DEFAULT_REDIRECT_URL", "http://localhost:8080"),
		CronSecret:          getEnv("CRON_SECRET", ""),
		DispatchBatchSize:   getEnvInt("DISPATCH_BATCH_SIZE", 50),
		SchedulerInterval:   getEnvDuration("SCHEDULER_INTERVAL", 0),

		GoogleProjectID:             getEnv("GOOGLE_PROJECT_ID", ""),
		GoogleCredentials:           getEnv("GOOGLE_CREDENTIALS", ""),
		SchedulerPubSubSubscription: getEnv("SCHEDULER_PUBSUB_SUBSCRIPTION", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		SubscribeRateLimit:  getEnvInt("SUBSCRIBE_RATE_LIMIT", 5),
		SubscribeRateWindow: getEnvDuration("SUBSCRIBE_RATE_WINDOW", time.Hour),
		TrackRateLimit:      getEnvInt("TRACK_RATE_LIMIT", 100),
		TrackRateWindow:     getEnvDuration("TRACK_RATE_WINDOW", time.Minute),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
