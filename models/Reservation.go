package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Reservation status values. archived is terminal; nothing ever re-enters
// pending.
const (
	ReservationPending   = "pending"
	ReservationConfirmed = "confirmed"
	ReservationCancelled = "cancelled"
	ReservationCompleted = "completed"
	ReservationArchived  = "archived"
)

// Payment status values.
const (
	PaymentPending    = "pending"
	PaymentProcessing = "processing"
	PaymentPaid       = "paid"
	PaymentFailed     = "failed"
)

// Reservation is one guest's claim on a room for the nights
// [CheckIn, CheckOut). CheckOut is exclusive: the guest leaves that morning
// and the room can take a new arrival the same day.
type Reservation struct {
	ID                string     `json:"id" gorm:"type:uuid;primaryKey"`
	ReservationNumber string     `json:"reservationNumber" gorm:"uniqueIndex;size:32;not null"`
	RoomType          string     `json:"roomType" gorm:"size:32;index;not null"`
	CheckIn           time.Time  `json:"checkIn" gorm:"type:date;not null"`
	CheckOut          time.Time  `json:"checkOut" gorm:"type:date;not null"`
	Nights            int        `json:"nights"`
	GuestCount        int        `json:"guestCount"`
	GuestName         string     `json:"guestName"`
	GuestEmail        string     `json:"guestEmail" gorm:"index"`
	GuestPhone        string     `json:"guestPhone"`
	SpecialRequests   string     `json:"specialRequests"`
	RoomPricePerNight float64    `json:"roomPricePerNight"`
	TotalPrice        float64    `json:"totalPrice"`
	DiscountAmount    float64    `json:"discountAmount"`
	PromotionID       *uint      `json:"promotionID"`
	PromotionCode     string     `json:"promotionCode"`
	Status            string     `json:"status" gorm:"size:16;index;default:pending"`
	PaymentStatus     string     `json:"paymentStatus" gorm:"size:16;default:pending"`
	PaymentReference  string     `json:"paymentReference" gorm:"index"`
	SispTransactionID string     `json:"sispTransactionID"`
	PaidAt            *time.Time `json:"paidAt"`
	UserID            *uint      `json:"userID"`    // nil for guest checkout without an account
	ExpiresAt         time.Time  `json:"expiresAt"` // pending reservations stop blocking after this
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

func (r *Reservation) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// IsExpiredPending reports whether this is a pending reservation whose payment
// window has lapsed. Expired pendings no longer block availability.
func (r *Reservation) IsExpiredPending(now time.Time) bool {
	return r.Status == ReservationPending && !r.ExpiresAt.IsZero() && now.After(r.ExpiresAt)
}

var reservationTransitions = map[string][]string{
	ReservationPending:   {ReservationConfirmed, ReservationCancelled},
	ReservationConfirmed: {ReservationCompleted, ReservationCancelled, ReservationArchived},
	ReservationCancelled: {ReservationArchived},
	ReservationCompleted: {ReservationArchived},
}

// CanTransition reports whether a status change is allowed by the reservation
// state machine.
func CanTransition(from, to string) bool {
	for _, allowed := range reservationTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
