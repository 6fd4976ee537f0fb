package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	dto "taskboard.com/taskboard/internal/data_models"
	apperrors "taskboard.com/taskboard/internal/errors"
	"taskboard.com/taskboard/internal/logger"
)

// ErrorHandler renders every error as {"message": ...}. Errors that are not
// part of the application catalogue are logged and reported generically.
func ErrorHandler(log *logrus.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		message := apperrors.ErrInternal.Message

		var appErr *apperrors.Exception
		var httpErr *echo.HTTPError
		switch {
		case errors.As(err, &appErr):
			status, message = appErr.StatusCode, appErr.Message
		case errors.As(err, &httpErr):
			status = httpErr.Code
			if status < http.StatusInternalServerError {
				message = fmt.Sprint(httpErr.Message)
			}
		}

		if status >= http.StatusInternalServerError {
			logger.WithRequestID(log, c.Response().Header().Get(echo.HeaderXRequestID)).
				WithError(err).
				WithFields(logrus.Fields{"method": c.Request().Method, "path": c.Request().URL.Path}).
				Error("request failed")
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, dto.ErrorResponse{Message: message})
		}
		if err != nil {
			log.WithError(err).Warn("failed to write error response")
		}
	}
}
