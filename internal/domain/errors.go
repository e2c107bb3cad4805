package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidEmail is returned when an email address is malformed.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrInvalidPassword is returned when a password doesn't meet requirements.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrInvalidTimeOfDay is returned when a due time is not a valid HH:MM value.
	ErrInvalidTimeOfDay = errors.New("invalid time of day")

	// ErrInvalidRecurrence is returned when a recurrence pattern is malformed
	// (unknown frequency, non-positive interval, empty weekday set for custom).
	ErrInvalidRecurrence = errors.New("invalid recurrence pattern")

	// ErrRecurrenceExhausted is returned by NextOccurrence when the pattern
	// cannot advance: either the computed date falls after the pattern's end
	// date, or the bounded weekday search found no match inside its horizon.
	ErrRecurrenceExhausted = errors.New("recurrence pattern exhausted")

	// ErrUnauthorized is returned when an operation is not permitted.
	ErrUnauthorized = errors.New("unauthorized operation")
)
