package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// ErrUnknownStatus is returned when a status string does not map to a known value.
var ErrUnknownStatus = errors.New("unknown status")

// ReservationStatus is the lifecycle state of a reservation. It travels on the
// wire as an uppercase string.
type ReservationStatus string

const (
	StatusPending   ReservationStatus = "PENDING"
	StatusConfirmed ReservationStatus = "CONFIRMED"
	StatusActive    ReservationStatus = "ACTIVE"
	StatusCompleted ReservationStatus = "COMPLETED"
	StatusCancelled ReservationStatus = "CANCELLED"
)

// ReservationStatuses lists every status in lifecycle order.
var ReservationStatuses = []ReservationStatus{
	StatusPending,
	StatusConfirmed,
	StatusActive,
	StatusCompleted,
	StatusCancelled,
}

// ParseReservationStatus maps a case-insensitive string to a ReservationStatus.
func ParseReservationStatus(s string) (ReservationStatus, error) {
	candidate := ReservationStatus(strings.ToUpper(strings.TrimSpace(s)))
	for _, st := range ReservationStatuses {
		if st == candidate {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: reservation status %q", ErrUnknownStatus, s)
}

// Terminal reports whether no further transition is allowed from s.
func (s ReservationStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Blocking reports whether a reservation in state s still claims its room's dates.
func (s ReservationStatus) Blocking() bool {
	return !s.Terminal()
}

// Reservation binds a student to a room for a range of calendar days.
// StudentID and RoomID reference records owned by other services.
type Reservation struct {
	ID                 int64             `gorm:"primaryKey"`
	StudentID          int64             `gorm:"not null;index"`
	RoomID             int64             `gorm:"not null;index:idx_reservation_room_status"`
	CheckInDate        datatypes.Date    `gorm:"not null"`
	CheckOutDate       datatypes.Date    `gorm:"not null"`
	Status             ReservationStatus `gorm:"type:varchar(16);not null;index:idx_reservation_room_status"`
	Notes              string            `gorm:"type:text"`
	CreatedAt          time.Time         `gorm:"not null;autoCreateTime:false"`
	UpdatedAt          *time.Time        `gorm:"autoUpdateTime:false"`
	CancelledAt        *time.Time
	CancellationReason *string `gorm:"type:text"`
}

// CheckIn returns the check-in day as a time at midnight UTC.
func (r *Reservation) CheckIn() time.Time {
	return time.Time(r.CheckInDate)
}

// CheckOut returns the check-out day as a time at midnight UTC.
func (r *Reservation) CheckOut() time.Time {
	return time.Time(r.CheckOutDate)
}

// ReservationEvent describes a committed lifecycle change.
type ReservationEvent struct {
	ReservationID int64
	StudentID     int64
	RoomID        int64
	Status        ReservationStatus
	At            time.Time
}
