package errors

import "net/http"

var ErrForbidden = &Exception{
	Message:    "Unauthorized",
	StatusCode: http.StatusForbidden,
}

var ErrManagerRequired = &Exception{
	Message:    "Manager access required",
	StatusCode: http.StatusForbidden,
}
