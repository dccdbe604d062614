package reservation

import "errors"

// Failures of orchestrator operations wrap exactly one of these.
var (
	ErrInvalidReservationData   = errors.New("invalid reservation data")
	ErrStudentNotFound          = errors.New("student not found")
	ErrRoomNotAvailable         = errors.New("room not available")
	ErrReservationConflict      = errors.New("reservation conflict")
	ErrInvalidReservationStatus = errors.New("invalid reservation status")
	ErrReservationNotFound      = errors.New("reservation not found")
)
