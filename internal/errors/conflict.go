package errors

import "net/http"

var ErrUsernameTaken = &Exception{
	Message:    "Username already exists",
	StatusCode: http.StatusConflict,
}

var ErrAlreadyAssigned = &Exception{
	Message:    "Task already assigned to this user",
	StatusCode: http.StatusConflict,
}
