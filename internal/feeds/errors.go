package feeds

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyFeed is returned when a feed yields no data rows
	ErrEmptyFeed = errors.New("feed contains no data rows")
	// ErrUnexpectedStatus is returned for non-2xx HTTP responses
	ErrUnexpectedStatus = errors.New("unexpected response status")
	// ErrUnsupportedLocator is returned for locators no source understands
	ErrUnsupportedLocator = errors.New("unsupported feed locator")
	// ErrBodyTooLarge is returned when a response exceeds the configured limit
	ErrBodyTooLarge = errors.New("feed body exceeds size limit")
)

// StatusError carries the HTTP status of a failed feed request
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: status %d", e.URL, e.StatusCode)
}

// Unwrap lets errors.Is match ErrUnexpectedStatus
func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatus
}
