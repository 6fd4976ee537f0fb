package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"taskboard.com/taskboard/internal/auth"
	config "taskboard.com/taskboard/internal/configs"
	httpapi "taskboard.com/taskboard/internal/http"
	repository "taskboard.com/taskboard/internal/repositories"
	"taskboard.com/taskboard/internal/services"
	"taskboard.com/taskboard/internal/storage"
)

// storeOpener is swapped in tests.
var storeOpener = openStore

// app holds the wired server and everything it releases on shutdown.
type app struct {
	echo         *echo.Echo
	store        repository.Store
	sweeper      *services.AvatarSweeper
	closeLimiter func()
	log          *logrus.Logger
}

// newApp wires the server. On error everything opened so far is released.
func newApp(ctx context.Context, cfg config.Config, log *logrus.Logger) (_ *app, err error) {
	store, err := storeOpener(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err != nil {
			_ = store.Close(context.Background())
		}
	}()

	limiter, closeLimiter, err := openLimiter(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("open rate limiter: %w", err)
	}
	defer func() {
		if err != nil {
			closeLimiter()
		}
	}()

	avatars, err := storage.NewLocalAvatarStore(filepath.Join(cfg.UploadDir, "avatars"), httpapi.AvatarURLPrefix)
	if err != nil {
		return nil, fmt.Errorf("prepare avatar storage: %w", err)
	}

	authService := services.NewAuthService(store, auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL), log)
	handler := httpapi.NewHandler(
		services.NewTaskService(store),
		services.NewUserService(store, avatars, log),
		services.NewProfileService(store, avatars, cfg.AvatarMaxBytes, log),
		authService,
	)

	e := echo.New()
	e.HidePort = true
	httpapi.Register(e, handler, httpapi.RouteOptions{
		Limiter:        limiter,
		CORSOrigins:    cfg.CORSOrigins,
		AvatarDir:      avatars.Dir(),
		AvatarMaxBytes: cfg.AvatarMaxBytes,
		Log:            log,
	})

	var sweeper *services.AvatarSweeper
	if cfg.AvatarSweep > 0 {
		sweeper = services.NewAvatarSweeper(store, avatars, log)
		if err := sweeper.Start(cfg.AvatarSweep); err != nil {
			return nil, err
		}
	}

	return &app{
		echo:         e,
		store:        store,
		sweeper:      sweeper,
		closeLimiter: closeLimiter,
		log:          log,
	}, nil
}

func (a *app) shutdown(ctx context.Context) {
	if err := a.echo.Shutdown(ctx); err != nil {
		a.log.WithError(err).Warn("HTTP server shutdown incomplete")
	}
	if a.sweeper != nil {
		a.sweeper.Stop(ctx)
	}
	if err := a.store.Close(ctx); err != nil {
		a.log.WithError(err).Warn("failed to close store")
	}
	a.closeLimiter()
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  "Starts the task board HTTP API and the orphan avatar sweeper",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg, log)
		if err != nil {
			log.WithError(err).Error("failed to start")
			return err
		}

		go func() {
			log.WithField("addr", cfg.AppURL).Info("HTTP server listening")
			if err := a.echo.Start(cfg.AppURL); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Error("server stopped")
				stop()
			}
		}()

		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		a.shutdown(shutdownCtx)

		log.Info("HTTP server shut down gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
