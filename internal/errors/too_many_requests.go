package errors

import "net/http"

var ErrTooManyRequests = &Exception{
	Message:    "Too many requests",
	StatusCode: http.StatusTooManyRequests,
}
