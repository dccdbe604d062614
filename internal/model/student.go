package model

import (
	"time"

	"gorm.io/datatypes"
)

// Student is a resident registered with the dormitory.
type Student struct {
	ID            int64     `gorm:"primaryKey" json:"id"`
	FirstName     string    `gorm:"size:128;not null" json:"firstName"`
	LastName      string    `gorm:"size:128;not null" json:"lastName"`
	Email         string    `gorm:"uniqueIndex;size:256;not null" json:"email"`
	Phone         string    `gorm:"size:32" json:"phone"`
	Career        string    `gorm:"size:128" json:"career"`
	AcademicCycle int       `gorm:"not null" json:"academicCycle"`
	StudentCode   string    `gorm:"uniqueIndex;size:32;not null" json:"studentCode"`
	Active        bool      `gorm:"not null" json:"active"`
	CreatedAt     time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	// RoomHistory lists the rooms the student has stayed in, oldest first.
	RoomHistory datatypes.JSONSlice[int64] `json:"roomHistory"`
}
