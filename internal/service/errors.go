package service

import "errors"

var (
	// ErrJobNotFound is returned when no job exists for the given id.
	ErrJobNotFound = errors.New("job not found")
	// ErrJobNotReady is returned when an artifact is requested before the
	// job has completed.
	ErrJobNotReady = errors.New("job not ready")
)

// ValidationError rejects a malformed submission synchronously; nothing
// is scheduled when it is returned.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}
