package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"taskboard.com/taskboard/internal/logger"
)

// RequestLogger writes one structured line per request. It must run after
// the request id middleware.
func RequestLogger(log *logrus.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			entry := logger.WithRequestID(log, c.Response().Header().Get(echo.HeaderXRequestID))

			entry.Debugf("request started: %s %s", req.Method, req.URL.Path)

			if err := next(c); err != nil {
				c.Error(err)
			}

			fields := logrus.Fields{
				"method":      req.Method,
				"route":       c.Path(),
				"path":        req.URL.Path,
				"status":      c.Response().Status,
				"duration_ms": time.Since(start).Milliseconds(),
				"remote_ip":   c.RealIP(),
				"user_agent":  req.UserAgent(),
			}
			if identity, ok := IdentityFrom(c); ok {
				fields["user_id"] = identity.UserID
			}
			entry.WithFields(fields).Info("request completed")

			return nil
		}
	}
}
