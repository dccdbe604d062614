package model

import "time"

// RoomDiscrepancy records a moment where the orchestrator knowingly left the
// remote room status out of step with its own reservations.
type RoomDiscrepancy struct {
	ID            int64     `gorm:"primaryKey" json:"id"`
	RoomID        int64     `gorm:"not null;index" json:"roomId"`
	ReservationID int64     `gorm:"index" json:"reservationId"` // zero when no local record was written
	Operation     string    `gorm:"size:32;not null" json:"operation"`
	Reason        string    `gorm:"type:text;not null" json:"reason"`
	ObservedAt    time.Time `gorm:"not null;index" json:"observedAt"`
}
