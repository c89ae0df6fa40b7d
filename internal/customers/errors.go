package customers

import "errors"

var (
	// ErrNotFound is returned when no customer exists for a phone number
	ErrNotFound = errors.New("customer not found")

	// ErrNothingToUpdate is returned when an update patch carries no fields
	ErrNothingToUpdate = errors.New("no information to update")
)
