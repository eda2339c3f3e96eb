package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/celestiaorg/quill/internal/auth"
)

var (
	// ErrNotFound is returned when a referenced record does not exist
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is returned when the caller presented no valid credentials
	ErrUnauthorized = auth.ErrUnauthorized
	// ErrForbidden is returned when the caller does not own the resource
	ErrForbidden = auth.ErrForbidden
	// ErrDispatchInFlight is returned when a job for the item is still running
	ErrDispatchInFlight = errors.New("a job for this content item is already in flight")
)

// ConfigurationError reports a precondition of the dispatch that the owner
// has to fix, such as missing credentials.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// IsConfigurationError reports whether err is or wraps a *ConfigurationError
func IsConfigurationError(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}

// wrapLookup turns a repository lookup error into ErrNotFound when the record
// is missing, keeping the gorm error in the chain
func wrapLookup(kind, id string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s %s: %w", ErrNotFound, kind, id, err)
	}
	return fmt.Errorf("failed to load %s %s: %w", kind, id, err)
}
