package models

import "time"

// PaymentLog records every gateway callback we receive, valid or not.
// Fingerprint failures are kept for auditing; they never confirm a booking.
type PaymentLog struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	ReservationID   string    `json:"reservationID" gorm:"type:uuid;index"`
	MessageType     string    `json:"messageType" gorm:"size:8"`
	TransactionID   string    `json:"transactionID" gorm:"size:64"`
	MerchantSession string    `json:"merchantSession" gorm:"size:64;index"`
	Amount          float64   `json:"amount"`
	Success         bool      `json:"success"`
	FingerprintOK   bool      `json:"fingerprintOK"`
	RawPayload      string    `json:"rawPayload" gorm:"type:text"`
	CreatedAt       time.Time `json:"createdAt"`
}
