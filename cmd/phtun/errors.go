package main

import (
	"errors"
	"fmt"
)

// Shared error variables for the phtun command.
var (
	ErrMissingKey      = errors.New("admin API key is required. Use --key, set ADMIN_API_KEY, or run `phtun config set key <value>`")
	ErrInvalidKey      = errors.New("invalid key")
	ErrNotFound        = errors.New("not found in blocklist")
	ErrConfigUnmarshal = errors.New("failed to unmarshal config")
	ErrConfigMarshal   = errors.New("failed to marshal config")
	ErrConfigWrite     = errors.New("failed to write config")
)

// APIError is a non-2xx response from the tunnel admin API.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Body)
}

// errorMessage renders err the way it is printed before exiting.
func errorMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return fmt.Sprintf("Error %d: %s", apiErr.Status, apiErr.Body)
	}
	return fmt.Sprintf("Error: %v", err)
}
