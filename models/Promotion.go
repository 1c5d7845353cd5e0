package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Discount types.
const (
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"
)

// Promotion is a discount code redeemable during booking.
type Promotion struct {
	gorm.Model
	Code          string         `json:"code" gorm:"uniqueIndex;size:32;not null"` // stored uppercase
	Name          string         `json:"name"`
	DiscountType  string         `json:"discountType" gorm:"size:16;not null"` // percentage, fixed
	DiscountValue float64        `json:"discountValue" gorm:"not null"`
	MinNights     *int           `json:"minNights"`
	MinTotal      *float64       `json:"minTotal"` // evaluated against the pre-discount subtotal
	ValidFrom     time.Time      `json:"validFrom" gorm:"type:date"`
	ValidUntil    time.Time      `json:"validUntil" gorm:"type:date"` // inclusive
	MaxUses       *int           `json:"maxUses"`
	CurrentUses   int            `json:"currentUses" gorm:"default:0"`
	RoomTypes     datatypes.JSON `json:"roomTypes"` // allow-list; empty = all rooms
	IsActive      bool           `json:"isActive" gorm:"default:true"`
}

// RoomTypeList decodes the JSON allow-list. A nil or empty list means the
// promotion applies to every room.
func (p *Promotion) RoomTypeList() []string {
	if p.RoomTypes == nil {
		return nil
	}
	var rooms []string
	if err := json.Unmarshal(p.RoomTypes, &rooms); err != nil {
		return nil
	}
	return rooms
}

// AllowsRoom reports whether the promotion may be applied to a room.
func (p *Promotion) AllowsRoom(roomType string) bool {
	rooms := p.RoomTypeList()
	if len(rooms) == 0 {
		return true
	}
	for _, r := range rooms {
		if r == roomType {
			return true
		}
	}
	return false
}
