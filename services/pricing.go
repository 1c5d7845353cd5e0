package services

import (
	"fmt"
	"math"
	"time"

	"casa-tiana-server/models"
)

// Nights returns the number of nights between check-in and check-out,
// rounding partial days up. It floors at 1 so price previews before dates are
// chosen never show a zero-night stay.
func Nights(checkIn, checkOut time.Time) int {
	if checkIn.IsZero() || checkOut.IsZero() {
		return 1
	}
	n := int(math.Ceil(checkOut.Sub(checkIn).Hours() / 24))
	if n < 1 {
		n = 1
	}
	return n
}

// ComputeSubtotal is the pre-discount price for a stay.
func ComputeSubtotal(room *models.Room, nights int) float64 {
	return room.PricePerNight * float64(nights)
}

// PromotionResult is the outcome of evaluating a promotion against a
// candidate booking. Reason is user-presentable and identifies the first
// failing rule.
type PromotionResult struct {
	Eligible       bool    `json:"eligible"`
	DiscountAmount float64 `json:"discountAmount"`
	Reason         string  `json:"reason,omitempty"`
}

func ineligible(reason string) PromotionResult {
	return PromotionResult{Eligible: false, Reason: reason}
}

// EvaluatePromotion checks eligibility rules in a fixed order, stopping at the
// first failure: active → validity window → usage limit → min nights → room
// allow-list → discount computation → min total. The min-total rule is
// checked against the pre-discount subtotal; that ordering is part of the
// contract.
func EvaluatePromotion(p *models.Promotion, subtotal float64, nights int, roomType string, today time.Time) PromotionResult {
	if p == nil || !p.IsActive {
		return ineligible("promotion is not active")
	}

	day := DateOnly(today)
	if day.Before(DateOnly(p.ValidFrom)) || day.After(DateOnly(p.ValidUntil)) {
		return ineligible("promotion is outside its validity period")
	}

	if p.MaxUses != nil && p.CurrentUses >= *p.MaxUses {
		return ineligible("promotion usage limit reached")
	}

	if p.MinNights != nil && nights < *p.MinNights {
		return ineligible(fmt.Sprintf("promotion requires a minimum of %d nights", *p.MinNights))
	}

	if !p.AllowsRoom(roomType) {
		return ineligible("promotion is not valid for this room")
	}

	var discount float64
	switch p.DiscountType {
	case models.DiscountPercentage:
		discount = math.Round(subtotal * p.DiscountValue / 100)
	case models.DiscountFixed:
		discount = p.DiscountValue
		if discount > subtotal {
			discount = subtotal
		}
	default:
		return ineligible("promotion has an unknown discount type")
	}

	if p.MinTotal != nil && subtotal < *p.MinTotal {
		return ineligible(fmt.Sprintf("promotion requires a minimum total of %.0f", *p.MinTotal))
	}

	return PromotionResult{Eligible: true, DiscountAmount: discount}
}

// ComputeTotal applies a discount to a subtotal, never going below zero.
func ComputeTotal(subtotal, discount float64) float64 {
	total := subtotal - discount
	if total < 0 {
		return 0
	}
	return total
}
