package errors

import "net/http"

var ErrUnauthorized = &Exception{
	Message:    "unauthorized",
	StatusCode: http.StatusUnauthorized,
}

var ErrInvalidCredentials = &Exception{
	Message:    "invalid email or password",
	StatusCode: http.StatusUnauthorized,
}

var ErrAdminOnly = &Exception{
	Message:    "admin access required",
	StatusCode: http.StatusForbidden,
}

var ErrRateLimited = &Exception{
	Message:    "rate limit exceeded",
	StatusCode: http.StatusTooManyRequests,
}

var ErrInvalidJSON = &Exception{
	Message:    "invalid JSON payload",
	StatusCode: http.StatusBadRequest,
}

var ErrNameRequired = &Exception{
	Message:    "name is required",
	StatusCode: http.StatusBadRequest,
}

var ErrInvalidEmail = &Exception{
	Message:    "email is not valid",
	StatusCode: http.StatusBadRequest,
}

var ErrPasswordTooShort = &Exception{
	Message:    "password must be at least 6 characters",
	StatusCode: http.StatusBadRequest,
}

var ErrCredentialsRequired = &Exception{
	Message:    "email and password are required",
	StatusCode: http.StatusBadRequest,
}

var ErrPasswordTooLong = &Exception{
	Message:    "password must be at most 72 bytes",
	StatusCode: http.StatusBadRequest,
}
