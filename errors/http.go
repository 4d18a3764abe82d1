package errors

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// MapToHTTPStatus translates domain errors into the status code returned by the web layer.
func MapToHTTPStatus(err error) int {
	var validationErrors validator.ValidationErrors
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidIdentity), errors.Is(err, ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, ErrInvalidFrame), errors.As(err, &validationErrors):
		return http.StatusBadRequest
	case errors.Is(err, ErrStore), errors.Is(err, ErrSearch), errors.Is(err, ErrSummarizer):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
