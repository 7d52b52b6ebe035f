package repository

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by updates that matched no row
var ErrNotFound = errors.New("not found")

// ConflictError reports an optimistic version mismatch on an evaluation row
type ConflictError struct {
	Entity          string
	ID              string
	ExpectedVersion int
	ActualVersion   int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %s was modified concurrently (expected version %d, found %d)",
		e.Entity, e.ID, e.ExpectedVersion, e.ActualVersion)
}
