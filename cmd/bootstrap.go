package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	config "taskboard.com/taskboard/internal/configs"
	"taskboard.com/taskboard/internal/logger"
	"taskboard.com/taskboard/internal/ratelimit"
	repository "taskboard.com/taskboard/internal/repositories"
)

const serviceName = "taskboard"

// loadConfig reads .env when present and builds the config and logger.
func loadConfig() (config.Config, *logrus.Logger, error) {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log := logger.Init(serviceName, cfg.LogLevel)
	if envErr != nil {
		log.Debug(".env file not found, using environment variables")
	}
	return cfg, log, nil
}

func openStore(ctx context.Context, cfg config.Config, log *logrus.Logger) (repository.Store, error) {
	switch cfg.DatabaseDriver {
	case config.DriverMongo:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		client, err := config.NewMongoClient(connectCtx, cfg.MongoURL)
		if err != nil {
			return nil, err
		}
		store, err := repository.NewMongoStore(connectCtx, client, cfg.MongoDatabase)
		if err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		log.WithField("database", cfg.MongoDatabase).Info("connected to mongodb")
		return store, nil
	default:
		db, err := config.NewDatabaseClient(cfg.DatabaseDSN, log)
		if err != nil {
			return nil, err
		}
		log.WithField("dsn", cfg.DatabaseDSN).Info("connected to sqlite")

		store := repository.NewGormStore(db)
		n, err := repository.NewTaskRepository(db).BackfillSearchText(ctx)
		if err != nil {
			_ = store.Close(context.Background())
			return nil, err
		}
		if n > 0 {
			log.WithField("tasks", n).Info("search text backfilled")
		}
		return store, nil
	}
}

// openLimiter returns the limiter and a close func for its backend.
func openLimiter(cfg config.Config, log *logrus.Logger) (ratelimit.Limiter, func(), error) {
	if cfg.RateLimitStore != config.RateLimitRedis {
		return ratelimit.NewMemoryLimiter(cfg.RateLimit, time.Minute), func() {}, nil
	}

	client, err := config.NewRedisClient(cfg.RedisAddr)
	if err != nil {
		return nil, nil, err
	}
	log.WithField("addr", cfg.RedisAddr).Info("rate limiting through redis")
	return ratelimit.NewRedisLimiter(client, cfg.RedisKeyPrefix, cfg.RateLimit, time.Minute), client.Close, nil
}
