package config

import (
	"os"
	"strconv"
	"time"

	"battleship/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort       string
	AppVersion    string
	DatabaseURL   string // empty selects the in-memory store
	JWTSecret     string
	AllowedOrigin string

	LogLevel string
	LogJSON  bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Poll
	PollTimeout  time.Duration
	PollInterval time.Duration

	// API rate limit per client
	APIRateLimit  int
	APIRateWindow int
}

// Load reads config from the environment, with .env as a fallback source.
func Load() *Config {
	_ = godotenv.Load()

	cfg := fromEnv(os.Getenv)
	if cfg.JWTSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}
	return cfg
}

func fromEnv(getenv func(string) string) *Config {
	port := getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	version := getenv("APP_VERSION")
	if version == "" {
		version = "dev"
	}

	logLevel := getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	return &Config{
		AppPort:       port,
		AppVersion:    version,
		DatabaseURL:   getenv("DATABASE_URL"),
		JWTSecret:     getenv("JWT_SECRET"),
		AllowedOrigin: getenv("ALLOWED_ORIGIN"),
		LogLevel:      logLevel,
		LogJSON:       getenv("LOG_JSON") == "true",
		RedisAddr:     getenv("REDIS_ADDR"),
		RedisPassword: getenv("REDIS_PASSWORD"),
		RedisDB:       intEnv(getenv, "REDIS_DB", 0),
		PollTimeout:   time.Duration(intEnv(getenv, "POLL_TIMEOUT_SECONDS", 30)) * time.Second,
		PollInterval:  time.Duration(intEnv(getenv, "POLL_INTERVAL_MS", 500)) * time.Millisecond,
		APIRateLimit:  intEnv(getenv, "API_RATE_LIMIT", 120),
		APIRateWindow: intEnv(getenv, "API_RATE_WINDOW_SECONDS", 60),
	}
}

// intEnv parses a positive int, keeping def on anything else.
// REDIS_DB is the one key where 0 is meaningful, and 0 is its default.
func intEnv(getenv func(string) string, key string, def int) int {
	if v := getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
