package repository

import "errors"

var (
	// ErrSelectionNotFound is returned when an enrollment references a selection that never existed.
	ErrSelectionNotFound = errors.New("selection not found")
	// ErrSelectionNotOwned is returned when a selection belongs to another student.
	ErrSelectionNotOwned = errors.New("selection owned by another student")
	// ErrPaymentRecorded is returned when a payment for the selection already exists.
	ErrPaymentRecorded = errors.New("payment already recorded")
	// ErrClassNotFound is returned when a write targets a missing class.
	ErrClassNotFound = errors.New("class not found")
)
