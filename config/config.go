package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Expiry   ExpiryConfig
	Upload   UploadConfig
	Event    EventConfig
	Intent   IntentConfig
	Cache    CacheConfig
	Queue    QueueConfig
}

type ServerConfig struct {
	Port    string
	GinMode string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type AuthConfig struct {
	JWTSecret    string
	SessionTTL   time.Duration
	CookieName   string
	SecureCookie bool
}

// ExpiryConfig controls the background removal of past events.
type ExpiryConfig struct {
	GracePeriod   time.Duration
	SweepInterval time.Duration
	LockTTL       time.Duration
}

type UploadConfig struct {
	Dir         string
	MaxFileSize int64
}

type EventConfig struct {
	// TimeZone is the IANA zone used to interpret submitted date/time strings.
	TimeZone string
}

type IntentConfig struct {
	TTL time.Duration
}

type CacheConfig struct {
	RegistrationTTL time.Duration
}

const (
	QueueBackendRedis  = "redis"
	QueueBackendMemory = "memory"
)

// QueueConfig selects where blob cleanup jobs are queued.
type QueueConfig struct {
	Backend    string
	BufferSize int
}

var AppConfig *Config

func LoadConfig() *Config {
	if os.Getenv("GO_ENV") != "production" {
		if err := godotenv.Load(); err != nil {
			log.Printf("Warning: .env file not loaded: %v", err)
		}
	}

	AppConfig = &Config{
		Server:   GetServerConfig(),
		Database: GetDatabaseConfig(),
		Redis:    GetRedisConfig(),
		Auth:     GetAuthConfig(),
		Expiry:   GetExpiryConfig(),
		Upload:   GetUploadConfig(),
		Event:    EventConfig{TimeZone: getEnv("EVENT_TIMEZONE", "UTC")},
		Intent:   IntentConfig{TTL: getDuration("INTENT_TTL", 15*time.Minute)},
		Cache:    CacheConfig{RegistrationTTL: getDuration("REGISTRATION_CACHE_TTL", 5*time.Minute)},
		Queue:    QueueConfig{Backend: getEnv("BLOB_QUEUE_BACKEND", QueueBackendRedis), BufferSize: 256},
	}

	return AppConfig
}

func LoadTestConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080", GinMode: "test"},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     "5433",
			User:     "postgres",
			Password: "postgres",
			DBName:   "test_db",
			SSLMode:  "disable",
		},
		Redis: RedisConfig{
			Host:     "localhost",
			Port:     "6380",
			Password: "",
			DB:       1,
		},
		Auth: AuthConfig{
			JWTSecret:  "test-secret",
			SessionTTL: time.Hour,
			CookieName: "session",
		},
		Expiry: ExpiryConfig{
			GracePeriod:   time.Minute,
			SweepInterval: 50 * time.Millisecond,
			LockTTL:       40 * time.Millisecond,
		},
		Upload: UploadConfig{
			Dir:         os.TempDir(),
			MaxFileSize: 5 << 20,
		},
		Event:  EventConfig{TimeZone: "UTC"},
		Intent: IntentConfig{TTL: time.Minute},
		Cache:  CacheConfig{RegistrationTTL: time.Minute},
		Queue:  QueueConfig{Backend: QueueBackendMemory, BufferSize: 16},
	}
}

func GetServerConfig() ServerConfig {
	return ServerConfig{
		Port:    getEnv("PORT", "10000"),
		GinMode: getEnv("GIN_MODE", "release"),
	}
}

func GetDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		DBName:   getEnv("DB_NAME", "eventify"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}
}

func GetRedisConfig() RedisConfig {
	db, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		panic(err)
	}

	return RedisConfig{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       db,
	}
}

func GetAuthConfig() AuthConfig {
	secure, err := strconv.ParseBool(getEnv("SECURE_COOKIE", "false"))
	if err != nil {
		log.Printf("Warning: invalid SECURE_COOKIE, using false: %v", err)
		secure = false
	}
	return AuthConfig{
		JWTSecret:    getEnv("SESSION_SECRET", "your_secret_key"),
		SessionTTL:   getDuration("SESSION_TTL", 24*time.Hour),
		CookieName:   getEnv("SESSION_COOKIE", "session"),
		SecureCookie: secure,
	}
}

func GetExpiryConfig() ExpiryConfig {
	interval := getDuration("EXPIRY_SWEEP_INTERVAL", 30*time.Second)
	return ExpiryConfig{
		GracePeriod:   getDuration("EXPIRY_GRACE_PERIOD", time.Minute),
		SweepInterval: interval,
		LockTTL:       getDuration("EXPIRY_LOCK_TTL", interval*4/5),
	}
}

func GetUploadConfig() UploadConfig {
	size, err := strconv.ParseInt(getEnv("UPLOAD_MAX_FILE_SIZE", "5242880"), 10, 64)
	if err != nil || size <= 0 {
		log.Printf("Warning: invalid UPLOAD_MAX_FILE_SIZE, using 5MiB")
		size = 5 << 20
	}
	return UploadConfig{
		Dir:         getEnv("UPLOAD_DIR", "uploads"),
		MaxFileSize: size,
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("Warning: invalid %s=%q, using %s", key, raw, fallback)
		return fallback
	}
	return d
}
