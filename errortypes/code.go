package errortypes

import "net/http"

// Defines numeric codes for well-known errors.
const (
	UnknownErrorCode  = 999
	BadInputErrorCode = iota
	MissingBodyErrorCode
	MalformedBodyErrorCode
	OptedOutErrorCode
)

// Coder provides an error code.
type Coder interface {
	Code() int
}

// ReadCode returns the error code, or UnknownErrorCode if unavailable.
func ReadCode(err error) int {
	if e, ok := err.(Coder); ok {
		return e.Code()
	}
	return UnknownErrorCode
}

// HTTPStatus maps an error to the status code a handler should respond with.
func HTTPStatus(err error) int {
	switch ReadCode(err) {
	case BadInputErrorCode, MissingBodyErrorCode, MalformedBodyErrorCode:
		return http.StatusBadRequest
	case OptedOutErrorCode:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
