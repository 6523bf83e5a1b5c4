package services

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
)

var (
	ErrAuth       = errors.New("authentication failed")
	ErrNotFound   = errors.New("document not found")
	ErrPermission = errors.New("permission denied")
)

// classifyAPIError wraps a Google API error so callers can test it with
// errors.Is against ErrNotFound and ErrPermission. Other errors, including
// transport failures, are only annotated.
func classifyAPIError(err error, action string) error {
	if err == nil {
		return nil
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusNotFound:
			return fmt.Errorf("%s: %w: %w", action, ErrNotFound, err)
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%s: %w: %w", action, ErrPermission, err)
		}
	}

	return fmt.Errorf("%s: %w", action, err)
}

// statusError maps a raw HTTP status of a non-API download to the same errors
func statusError(status int, action string) error {
	switch status {
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w (status %d)", action, ErrNotFound, status)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%s: %w (status %d)", action, ErrPermission, status)
	default:
		return fmt.Errorf("%s: unexpected status %d", action, status)
	}
}
