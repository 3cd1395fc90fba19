// Package web defines common components for a web application.
package web

import (
	"errors"
	"net/http"

	"github.com/go-petr/expense-tracker/internal/domain"
	"github.com/go-petr/expense-tracker/pkg/errorspkg"
	"github.com/go-playground/validator/v10"
)

// Response holds the common response type for all APIs.
//
// Warning is set when the request succeeded in memory but could not be
// persisted.
type Response struct {
	Data    any    `json:"data,omitempty"`
	Warning string `json:"warning,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Error wraps a given err into json friendly response.
func Error(err error) Response {
	return Response{Error: err.Error()}
}

// GetErrorMsg returns a human readable suffix for the failed field validation.
func GetErrorMsg(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return " is required"
	case "oneof":
		return " must be one of " + fe.Param()
	case "email":
		return " is not a valid email"
	}

	return " is invalid"
}

// BindingError returns the message for a request that failed binding.
func BindingError(err error) Response {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		field := ve[0]
		return Response{Error: field.Field() + GetErrorMsg(field)}
	}

	return Error(err)
}

// Status maps a service error to the http status and response reported to
// the user. Unknown errors are reported as internal.
func Status(err error) (int, Response) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, Error(err)
	case errors.Is(err, domain.ErrDuplicateEmail):
		return http.StatusConflict, Error(domain.ErrDuplicateEmail)
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, Error(domain.ErrInvalidCredentials)
	case errors.Is(err, domain.ErrNoActiveSession):
		return http.StatusUnauthorized, Error(domain.ErrNoActiveSession)
	case errors.Is(err, domain.ErrAccountNotFound):
		return http.StatusNotFound, Error(domain.ErrAccountNotFound)
	}

	return http.StatusInternalServerError, Error(errorspkg.ErrInternal)
}

// Warning returns the message for an error that did not fail the request,
// or "" when there is none.
func Warning(err error) string {
	if errors.Is(err, domain.ErrPersistenceWrite) {
		return domain.ErrPersistenceWrite.Error()
	}

	return ""
}
