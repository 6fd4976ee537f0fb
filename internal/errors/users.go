package errors

import "net/http"

var ErrUserNotFound = &Exception{
	Message:    "user not found",
	StatusCode: http.StatusNotFound,
}

var ErrInvalidUserID = &Exception{
	Message:    "user id not valid",
	StatusCode: http.StatusBadRequest,
}

var ErrInvalidRole = &Exception{
	Message:    "invalid role",
	StatusCode: http.StatusBadRequest,
}

var ErrTargetUserNotFound = &Exception{
	Message:    "target user not found",
	StatusCode: http.StatusBadRequest,
}

var ErrAssigneeNotFound = &Exception{
	Message:    "assignee user not found",
	StatusCode: http.StatusBadRequest,
}

var ErrEmailTaken = &Exception{
	Message:    "email already registered",
	StatusCode: http.StatusConflict,
}

var ErrAvatarRequired = &Exception{
	Message:    "avatar file is required",
	StatusCode: http.StatusBadRequest,
}

var ErrAvatarNotImage = &Exception{
	Message:    "avatar must be an image",
	StatusCode: http.StatusBadRequest,
}

var ErrAvatarTooLarge = &Exception{
	Message:    "avatar file is too large",
	StatusCode: http.StatusRequestEntityTooLarge,
}
