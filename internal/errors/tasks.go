package errors

import "net/http"

var ErrTaskNotFound = &Exception{
	Message:    "task not found",
	StatusCode: http.StatusNotFound,
}

var ErrInvalidTaskID = &Exception{
	Message:    "task id not valid",
	StatusCode: http.StatusBadRequest,
}

var ErrDescriptionRequired = &Exception{
	Message:    "description of task is required",
	StatusCode: http.StatusBadRequest,
}

var ErrNoUpdateData = &Exception{
	Message:    "no update data provided",
	StatusCode: http.StatusBadRequest,
}

var ErrInvalidStatus = &Exception{
	Message:    "invalid status value",
	StatusCode: http.StatusBadRequest,
}

var ErrInvalidPriority = &Exception{
	Message:    "invalid priority value",
	StatusCode: http.StatusBadRequest,
}

var ErrInvalidDueDate = &Exception{
	Message:    "invalid due date",
	StatusCode: http.StatusBadRequest,
}

var ErrInvalidTags = &Exception{
	Message:    "tags must be a comma separated string or a list of strings",
	StatusCode: http.StatusBadRequest,
}

var ErrTaskDeleteForbidden = &Exception{
	Message:    "you can't delete task of another user",
	StatusCode: http.StatusForbidden,
}

var ErrTaskUpdateForbidden = &Exception{
	Message:    "you can't update this task",
	StatusCode: http.StatusForbidden,
}
