package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Default error is internal service error at handler level.
// If an error needs a different status code use ErrorWithStatusCode.
type ErrorWithStatusCode struct {
	Message    string
	StatusCode int
	Fields     map[string]string // field name -> message, for validation and conflict errors
	Err        error
}

func (e *ErrorWithStatusCode) Error() string {
	return e.Message
}

func (e *ErrorWithStatusCode) Unwrap() error {
	return e.Err
}

// Validation reports malformed or missing input, one message per field.
func Validation(fields map[string]string) *ErrorWithStatusCode {
	msg := "Validation failed"
	if len(fields) == 1 {
		for _, m := range fields {
			msg = m
		}
	}
	return &ErrorWithStatusCode{Message: msg, StatusCode: http.StatusBadRequest, Fields: fields}
}

// BadRequest is a validation error that is not attributable to a field.
func BadRequest(message string) *ErrorWithStatusCode {
	return &ErrorWithStatusCode{Message: message, StatusCode: http.StatusBadRequest}
}

// Conflict reports contact info already owned by another user.
func Conflict(fields map[string]string) *ErrorWithStatusCode {
	msg := "Conflict"
	switch {
	case fields["email"] != "" && fields["phone"] != "":
		msg = "This email and phone number are already registered."
	case fields["email"] != "":
		msg = fields["email"]
	case fields["phone"] != "":
		msg = fields["phone"]
	}
	return &ErrorWithStatusCode{Message: msg, StatusCode: http.StatusConflict, Fields: fields}
}

func NotFound(message string) *ErrorWithStatusCode {
	return &ErrorWithStatusCode{Message: message, StatusCode: http.StatusNotFound}
}

func Forbidden(message string) *ErrorWithStatusCode {
	return &ErrorWithStatusCode{Message: message, StatusCode: http.StatusForbidden}
}

// Upstream wraps a failure of the record store or another external service.
// The message shown to callers stays generic.
func Upstream(op string, err error) *ErrorWithStatusCode {
	return &ErrorWithStatusCode{
		Message:    "Something went wrong, please try again later",
		StatusCode: http.StatusInternalServerError,
		Err:        fmt.Errorf("%s: %w", op, err),
	}
}

// Config reports a feature invoked without its required configuration.
func Config(message string) *ErrorWithStatusCode {
	return &ErrorWithStatusCode{Message: message, StatusCode: http.StatusServiceUnavailable}
}

// StatusCode returns the HTTP status carried by err, or 500.
func StatusCode(err error) int {
	var e *ErrorWithStatusCode
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return http.StatusInternalServerError
}

func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

func IsConflict(err error) bool {
	return StatusCode(err) == http.StatusConflict
}
