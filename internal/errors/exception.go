package errors

import (
	"errors"
	"net/http"
)

type Exception struct {
	Message    string
	StatusCode int
}

func (e *Exception) Error() string {
	return e.Message
}

func StatusCode(err error) int {
	var appErr *Exception
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

// Message returns the client-facing message for err. Anything that is not an
// Exception is reported generically so internal detail never leaks.
func Message(err error) string {
	var appErr *Exception
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return ErrInternal.Message
}

func Validation(message string) *Exception {
	return &Exception{Message: message, StatusCode: http.StatusBadRequest}
}

var ErrInternal = &Exception{
	Message:    "internal server error",
	StatusCode: http.StatusInternalServerError,
}
