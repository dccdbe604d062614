package model

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// RoomStatus is the occupancy state owned by the room registry.
type RoomStatus string

const (
	RoomAvailable   RoomStatus = "AVAILABLE"
	RoomOccupied    RoomStatus = "OCCUPIED"
	RoomMaintenance RoomStatus = "MAINTENANCE"
	RoomReserved    RoomStatus = "RESERVED"
)

var roomStatuses = []RoomStatus{RoomAvailable, RoomOccupied, RoomMaintenance, RoomReserved}

// ParseRoomStatus maps a case-insensitive string to a RoomStatus.
func ParseRoomStatus(s string) (RoomStatus, error) {
	candidate := RoomStatus(strings.ToUpper(strings.TrimSpace(s)))
	for _, st := range roomStatuses {
		if st == candidate {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: room status %q", ErrUnknownStatus, s)
}

// RoomType is the kind of room.
type RoomType string

const (
	RoomIndividual RoomType = "INDIVIDUAL"
	RoomDouble     RoomType = "DOUBLE"
	RoomSuite      RoomType = "SUITE"
)

var roomTypes = []RoomType{RoomIndividual, RoomDouble, RoomSuite}

// ParseRoomType maps a case-insensitive string to a RoomType.
func ParseRoomType(s string) (RoomType, error) {
	candidate := RoomType(strings.ToUpper(strings.TrimSpace(s)))
	for _, t := range roomTypes {
		if t == candidate {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: room type %q", ErrUnknownStatus, s)
}

// Room is a dormitory room.
type Room struct {
	ID                 int64                       `gorm:"primaryKey" json:"id"`
	RoomNumber         string                      `gorm:"uniqueIndex;size:32;not null" json:"roomNumber"`
	Type               RoomType                    `gorm:"type:varchar(16);not null" json:"type"`
	Status             RoomStatus                  `gorm:"type:varchar(16);not null;index" json:"status"`
	Capacity           int                         `gorm:"not null" json:"capacity"`
	Floor              int                         `gorm:"not null" json:"floor"`
	PricePerMonth      float64                     `gorm:"type:numeric(10,2);not null" json:"pricePerMonth"`
	Description        string                      `gorm:"type:text" json:"description"`
	AdditionalServices datatypes.JSONSlice[string] `json:"additionalServices"`
	CreatedAt          time.Time                   `gorm:"not null" json:"createdAt"`
	UpdatedAt          time.Time                   `json:"updatedAt"`
}
