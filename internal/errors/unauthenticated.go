package errors

import "net/http"

var ErrMissingToken = &Exception{
	Message:    "No token provided",
	StatusCode: http.StatusUnauthorized,
}

var ErrInvalidToken = &Exception{
	Message:    "Invalid token",
	StatusCode: http.StatusUnauthorized,
}
