package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	apperrors "taskboard.com/taskboard/internal/errors"
	"taskboard.com/taskboard/internal/ratelimit"
)

// RateLimiter rejects clients that exceed the limiter's budget. A failing
// limiter backend lets the request through.
func RateLimiter(limiter ratelimit.Limiter, log *logrus.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.RealIP()

			allowed, err := limiter.Allow(c.Request().Context(), key)
			if err != nil {
				log.WithError(err).Warn("rate limiter unavailable")
				return next(c)
			}
			if !allowed {
				return apperrors.ErrRateLimited
			}

			return next(c)
		}
	}
}
