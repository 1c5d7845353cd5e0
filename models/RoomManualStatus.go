package models

import "gorm.io/gorm"

// Manual override statuses staff can put a room into.
const (
	ManualMaintenance = "maintenance"
	ManualCleaning    = "cleaning"
)

// RoomManualStatus is a persisted staff override for a room. While a row
// exists the room is out of service regardless of reservations or external
// blocks, and guests see it as occupied. One row per room.
type RoomManualStatus struct {
	gorm.Model
	RoomType string `json:"roomType" gorm:"uniqueIndex;size:32;not null"`
	Status   string `json:"status" gorm:"size:16;not null"` // maintenance, cleaning
	Note     string `json:"note"`
	SetBy    uint   `json:"setBy"`
}
