package reservation

import (
	"fmt"
	"time"
)

// Day normalizes t to midnight UTC of its calendar day in loc.
func Day(t time.Time, loc *time.Location) time.Time {
	if loc != nil {
		t = t.In(loc)
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func validateCreate(in CreateInput, today time.Time) error {
	switch {
	case in.StudentID == 0:
		return fmt.Errorf("%w: student id is required", ErrInvalidReservationData)
	case in.RoomID == 0:
		return fmt.Errorf("%w: room id is required", ErrInvalidReservationData)
	case in.CheckIn.IsZero():
		return fmt.Errorf("%w: check-in date is required", ErrInvalidReservationData)
	case in.CheckOut.IsZero():
		return fmt.Errorf("%w: check-out date is required", ErrInvalidReservationData)
	}
	return validateDates(Day(in.CheckIn, nil), Day(in.CheckOut, nil), today)
}

// validateDates expects checkIn, checkOut and today already normalized with Day.
func validateDates(checkIn, checkOut, today time.Time) error {
	if checkIn.Before(today) {
		return fmt.Errorf("%w: check-in date cannot be in the past", ErrInvalidReservationData)
	}
	if !checkOut.After(checkIn) {
		return fmt.Errorf("%w: check-out date must be after check-in date", ErrInvalidReservationData)
	}
	return nil
}
