package reservation

import (
	"fmt"

	"dorm-reservation-backend/internal/model"
)

// Guards for the dedicated lifecycle operations. Each runs before any remote
// call or local write.

func guardConfirm(current model.ReservationStatus) error {
	if current != model.StatusPending {
		return fmt.Errorf("%w: only pending reservations can be confirmed (current %s)", ErrInvalidReservationStatus, current)
	}
	return nil
}

func guardActivate(current model.ReservationStatus) error {
	if current != model.StatusPending && current != model.StatusConfirmed {
		return fmt.Errorf("%w: only confirmed or pending reservations can be activated (current %s)", ErrInvalidReservationStatus, current)
	}
	return nil
}

func guardComplete(current model.ReservationStatus) error {
	if current != model.StatusActive {
		return fmt.Errorf("%w: only active reservations can be completed (current %s)", ErrInvalidReservationStatus, current)
	}
	return nil
}

func guardCancel(current model.ReservationStatus) error {
	switch current {
	case model.StatusCancelled:
		return fmt.Errorf("%w: reservation is already cancelled", ErrInvalidReservationStatus)
	case model.StatusCompleted:
		return fmt.Errorf("%w: cannot cancel a completed reservation", ErrInvalidReservationStatus)
	}
	return nil
}

// guardMutable rejects any change to a reservation in a terminal state.
func guardMutable(current model.ReservationStatus) error {
	switch current {
	case model.StatusCancelled:
		return fmt.Errorf("%w: cannot update a cancelled reservation", ErrInvalidReservationStatus)
	case model.StatusCompleted:
		return fmt.Errorf("%w: cannot update a completed reservation", ErrInvalidReservationStatus)
	}
	return nil
}

// guardStatusChange validates the generic status update: any target is
// accepted from a non-terminal state except skipping straight from PENDING to COMPLETED.
func guardStatusChange(current, next model.ReservationStatus) error {
	if err := guardMutable(current); err != nil {
		return err
	}
	if current == model.StatusPending && next == model.StatusCompleted {
		return fmt.Errorf("%w: cannot complete a pending reservation directly", ErrInvalidReservationStatus)
	}
	return nil
}

func guardDelete(current model.ReservationStatus) error {
	if current == model.StatusActive {
		return fmt.Errorf("%w: cannot delete an active reservation, cancel it first", ErrInvalidReservationStatus)
	}
	return nil
}
