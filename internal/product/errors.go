package product

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound     = errors.New("product not found")
	ErrMalformed    = errors.New("malformed backend response")
	ErrInvalidInput = errors.New("invalid product input")
)

// APIError is a non-2xx answer from the backend. Body keeps the backend
// message so the UI can show it as is.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("status %d -> %s", e.Status, e.Body)
}

// Is lets errors.Is(err, ErrNotFound) match a 404.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// Message is what a form shows inline: the backend body, or the fallback.
func Message(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Body != "" {
		return apiErr.Body
	}
	if errors.Is(err, ErrInvalidInput) {
		return err.Error()
	}
	return fallback
}
