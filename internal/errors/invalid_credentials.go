package errors

import "net/http"

var ErrInvalidCredentials = &Exception{
	Message:    "Invalid credentials",
	StatusCode: http.StatusUnauthorized,
}

var ErrInvalidOldPassword = &Exception{
	Message:    "Invalid old password",
	StatusCode: http.StatusUnauthorized,
}
