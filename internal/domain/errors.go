package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors. Network failures are classified by the API adapter into these;
// the pre-submit guards return them without any network call.
var (
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrAccessDenied           = errors.New("access denied")
	ErrUnreachable            = errors.New("server unreachable")
	ErrValidationRejected     = errors.New("request rejected by validation")
	ErrDependencyConflict     = errors.New("record has dependent records")
	ErrNotFound               = errors.New("not found")
	ErrUnexpectedStatus       = errors.New("unexpected response status")

	ErrNotConfigured         = errors.New("event has no room assigned")
	ErrCapacityExceeded      = errors.New("event capacity reached")
	ErrAlreadyRegistered     = errors.New("already registered for this event")
	ErrEventNotActive        = errors.New("event is not open for registration")
	ErrRoomSelectionRequired = errors.New("a room must be selected")
	ErrUnknownRoom           = errors.New("room is not assigned to this event")
	ErrInvalidState          = errors.New("operation not allowed in the current state")
	ErrInvalidInput          = errors.New("invalid input")

	// ErrSuperseded is returned when a newer request replaced this one; its result was discarded.
	ErrSuperseded = errors.New("superseded by a newer request")
)

// ErrEventHasBookings blocks deleting an event that still has registrations.
// It matches ErrDependencyConflict with errors.Is.
var ErrEventHasBookings error = &dependencyError{msg: "event has registrations; remove them before deleting"}

type dependencyError struct{ msg string }

func (e *dependencyError) Error() string { return e.msg }

func (e *dependencyError) Unwrap() error { return ErrDependencyConflict }

// NotActiveError reports the status that blocked a registration.
// It matches ErrEventNotActive with errors.Is.
type NotActiveError struct {
	Status EventStatus
}

func (e *NotActiveError) Error() string {
	return fmt.Sprintf("event is %s and not open for registration", e.Status)
}

func (e *NotActiveError) Unwrap() error { return ErrEventNotActive }
