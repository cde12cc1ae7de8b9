package reports

import (
	"errors"
	"net/http"
)

// Domain errors for report operations.
var (
	ErrNotFound       = errors.New("report not found")
	ErrDuplicate      = errors.New("report already exists")
	ErrInvalidRequest = errors.New("invalid report request")
)

// MapHTTPStatus maps report domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidRequest) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
