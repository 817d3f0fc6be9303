package projects

import (
	"errors"
	"net/http"

	"github.com/minsuklee/fundscope/internal/extraction"
)

// Domain errors for project operations.
var (
	ErrNotFound     = errors.New("project not found")
	ErrDuplicate    = errors.New("project already exists")
	ErrFileTooLarge = errors.New("file exceeds maximum upload size")
	ErrInvalidInput = errors.New("invalid request")
)

// MapHTTPStatus maps project domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrFileTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	if errors.Is(err, ErrInvalidInput) {
		return http.StatusBadRequest
	}
	if errors.Is(err, extraction.ErrUnsupportedFormat) {
		return http.StatusUnsupportedMediaType
	}
	return http.StatusInternalServerError
}
