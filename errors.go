package evercas

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no stored file matches a checksum.
	ErrNotFound = errors.New("evercas: not found")

	// ErrInvalidConfig is returned when a store configuration cannot
	// address content, e.g. depth*width does not leave room for a leaf
	// filename, or the algorithm is unknown.
	ErrInvalidConfig = errors.New("evercas: invalid store configuration")

	// ErrConfigMismatch is returned when explicitly requested options
	// conflict with the configuration persisted at the store root.
	ErrConfigMismatch = errors.New("evercas: configuration does not match initialized store")

	// ErrNotInitialized is returned by mutating operations on a store
	// whose root has no persisted configuration marker.
	ErrNotInitialized = errors.New("evercas: store not initialized")
)

// PutStrategyError reports a put strategy failure, naming the strategy and
// the destination it could not materialize.
type PutStrategyError struct {
	Strategy string
	Dest     string
	Err      error
}

func (e *PutStrategyError) Error() string {
	return fmt.Sprintf("evercas: put strategy %q failed for %s: %v", e.Strategy, e.Dest, e.Err)
}

func (e *PutStrategyError) Unwrap() error { return e.Err }
