package repository

import "errors"

// Common repository errors
var (
	// ErrProjectNotFound is returned when a project is not found
	ErrProjectNotFound = errors.New("project not found")

	// ErrSectionNotFound is returned when a section is not found
	ErrSectionNotFound = errors.New("section not found")

	// ErrTaskNotFound is returned when a task or its index document is not found
	ErrTaskNotFound = errors.New("task not found")

	// ErrProtectedField is returned when an update touches placement fields
	// that only reorder and move may change
	ErrProtectedField = errors.New("field cannot be updated directly")

	// ErrForbidden is returned when the user's role in the project is too low
	ErrForbidden = errors.New("access denied")

	// ErrInvalidUserID is returned for user ids that cannot be used as map keys
	ErrInvalidUserID = errors.New("invalid user id")

	// ErrDuplicateID is returned when a new order names the same id twice
	ErrDuplicateID = errors.New("order lists an id more than once")
)
