package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"

	RateLimitMemory = "memory"
	RateLimitRedis  = "redis"
)

type Config struct {
	AppURL string

	DatabaseDriver  string
	DatabaseDSN     string
	MongoURL        string
	MongoDatabase   string
	JWTSecret       string
	JWTTTL          time.Duration
	RateLimit       int
	RateLimitStore  string
	RedisAddr       string
	RedisKeyPrefix  string
	UploadDir       string
	AvatarMaxBytes  int64
	AvatarSweep     time.Duration
	CORSOrigins     []string
	LogLevel        string
	ShutdownTimeout time.Duration
}

func Load() (Config, error) {
	var errs []error
	intVar := func(key string, defaultVal int) int {
		v, err := getEnvAsInt(key, defaultVal)
		if err != nil {
			errs = append(errs, err)
		}
		return v
	}

	appHost := getEnv("APP_HOST", "127.0.0.1")
	appPort := getEnv("APP_PORT", "8080")
	redisHost := getEnv("REDIS_HOST", "127.0.0.1")
	redisPort := getEnv("REDIS_PORT", "6379")

	cfg := Config{
		AppURL:          fmt.Sprintf("%s:%s", appHost, appPort),
		DatabaseDriver:  strings.ToLower(getEnv("DATABASE_DRIVER", DriverSQLite)),
		DatabaseDSN:     getEnv("DATABASE_DSN", "taskboard.db"),
		MongoURL:        getEnv("MONGODB_URL", "mongodb://127.0.0.1:27017"),
		MongoDatabase:   getEnv("MONGODB_DATABASE", "taskboard"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		JWTTTL:          time.Duration(intVar("JWT_TTL_HOURS", 72)) * time.Hour,
		RateLimit:       intVar("RATE_LIMIT_PER_MINUTE", 120),
		RateLimitStore:  strings.ToLower(getEnv("RATE_LIMIT_BACKEND", RateLimitMemory)),
		RedisAddr:       fmt.Sprintf("%s:%s", redisHost, redisPort),
		RedisKeyPrefix:  getEnv("REDIS_KEY_PREFIX", "taskboard:ratelimit"),
		UploadDir:       getEnv("UPLOAD_DIR", "uploads"),
		AvatarMaxBytes:  int64(intVar("AVATAR_MAX_BYTES", 5<<20)),
		AvatarSweep:     time.Duration(intVar("AVATAR_SWEEP_INTERVAL_MINUTES", 60)) * time.Minute,
		CORSOrigins:     splitList(getEnv("CORS_ALLOW_ORIGINS", "*")),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		ShutdownTimeout: time.Duration(intVar("SHUTDOWN_TIMEOUT_SECONDS", 20)) * time.Second,
	}

	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validate(cfg Config) error {
	var errs []error
	switch cfg.DatabaseDriver {
	case DriverSQLite:
		if cfg.DatabaseDSN == "" {
			errs = append(errs, errors.New("DATABASE_DSN must not be empty"))
		}
	case DriverMongo:
		if err := validateMongoURL(cfg.MongoURL); err != nil {
			errs = append(errs, err)
		}
		if cfg.MongoDatabase == "" {
			errs = append(errs, errors.New("MONGODB_DATABASE must not be empty"))
		}
	default:
		errs = append(errs, fmt.Errorf("DATABASE_DRIVER must be %q or %q", DriverSQLite, DriverMongo))
	}
	if cfg.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET must not be empty"))
	}
	if cfg.JWTTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL_HOURS must be greater than 0"))
	}
	if cfg.RateLimit <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_PER_MINUTE must be greater than 0"))
	}
	if cfg.RateLimitStore != RateLimitMemory && cfg.RateLimitStore != RateLimitRedis {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_BACKEND must be %q or %q", RateLimitMemory, RateLimitRedis))
	}
	if cfg.UploadDir == "" {
		errs = append(errs, errors.New("UPLOAD_DIR must not be empty"))
	}
	if cfg.AvatarMaxBytes <= 0 {
		errs = append(errs, errors.New("AVATAR_MAX_BYTES must be greater than 0"))
	}
	if cfg.AvatarSweep < 0 {
		errs = append(errs, errors.New("AVATAR_SWEEP_INTERVAL_MINUTES must not be negative"))
	}
	if cfg.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_TIMEOUT_SECONDS must be greater than 0"))
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) (int, error) {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid integer value for %s", key)
		}
		return i, nil
	}
	return defaultVal, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
