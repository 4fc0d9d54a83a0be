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

// Message returns the client-facing message of an Exception anywhere in
// err's chain.
func Message(err error) (string, bool) {
	var appErr *Exception
	if errors.As(err, &appErr) {
		return appErr.Message, true
	}
	return "", false
}

// BadRequest builds a 400 for a missing or malformed field.
func BadRequest(message string) *Exception {
	return &Exception{Message: message, StatusCode: http.StatusBadRequest}
}
