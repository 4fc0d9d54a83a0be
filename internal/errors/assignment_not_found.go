package errors

import "net/http"

var ErrAssignmentNotFound = &Exception{
	Message:    "User task not found",
	StatusCode: http.StatusNotFound,
}

// ErrAssignmentTargetNotFound is returned when an assignment references a
// user or task that does not exist.
var ErrAssignmentTargetNotFound = &Exception{
	Message:    "User or task not found",
	StatusCode: http.StatusNotFound,
}
