package services

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"casa-tiana-server/models"

	"gorm.io/datatypes"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func activePromotion(discountType string, value float64) *models.Promotion {
	return &models.Promotion{
		Code:          "TEST",
		DiscountType:  discountType,
		DiscountValue: value,
		ValidFrom:     date(2026, 1, 1),
		ValidUntil:    date(2026, 12, 31),
		IsActive:      true,
	}
}

func TestNights(t *testing.T) {
	if n := Nights(date(2026, 10, 10), date(2026, 10, 13)); n != 3 {
		t.Errorf("Nights = %d, want 3", n)
	}
	if n := Nights(time.Time{}, time.Time{}); n != 1 {
		t.Errorf("Nights with absent dates = %d, want 1 (preview floor)", n)
	}
	// Partial days round up.
	ci := time.Date(2026, 10, 10, 14, 0, 0, 0, time.UTC)
	co := time.Date(2026, 10, 12, 11, 0, 0, 0, time.UTC)
	if n := Nights(ci, co); n != 2 {
		t.Errorf("Nights with hotel check-in/out times = %d, want 2", n)
	}
}

func TestPercentagePromotion(t *testing.T) {
	p := activePromotion(models.DiscountPercentage, 10)
	res := EvaluatePromotion(p, 10000, 2, string(models.RoomSuite), date(2026, 6, 1))
	if !res.Eligible {
		t.Fatalf("expected eligible, got reason %q", res.Reason)
	}
	if res.DiscountAmount != 1000 {
		t.Errorf("DiscountAmount = %v, want 1000", res.DiscountAmount)
	}
	if total := ComputeTotal(10000, res.DiscountAmount); total != 9000 {
		t.Errorf("total = %v, want 9000", total)
	}
}

func TestFixedPromotionCappedAtSubtotal(t *testing.T) {
	p := activePromotion(models.DiscountFixed, 5000)
	res := EvaluatePromotion(p, 3000, 1, string(models.RoomSuite), date(2026, 6, 1))
	if !res.Eligible {
		t.Fatalf("expected eligible, got reason %q", res.Reason)
	}
	if res.DiscountAmount != 3000 {
		t.Errorf("DiscountAmount = %v, want capped at 3000", res.DiscountAmount)
	}
	if total := ComputeTotal(3000, res.DiscountAmount); total != 0 {
		t.Errorf("total = %v, want 0 (never negative)", total)
	}
}

func TestMinNightsRule(t *testing.T) {
	p := activePromotion(models.DiscountPercentage, 10)
	p.MinNights = intPtr(3)
	res := EvaluatePromotion(p, 10000, 2, string(models.RoomSuite), date(2026, 6, 1))
	if res.Eligible {
		t.Fatal("2-night booking must be ineligible for a minNights=3 promotion")
	}
	if !strings.Contains(res.Reason, "minimum of 3 nights") {
		t.Errorf("reason %q should identify the min-nights rule", res.Reason)
	}
}

func TestInactiveAndExpired(t *testing.T) {
	p := activePromotion(models.DiscountPercentage, 10)
	p.IsActive = false
	if res := EvaluatePromotion(p, 10000, 2, string(models.RoomSuite), date(2026, 6, 1)); res.Eligible {
		t.Error("inactive promotion must be ineligible")
	}

	p = activePromotion(models.DiscountPercentage, 10)
	if res := EvaluatePromotion(p, 10000, 2, string(models.RoomSuite), date(2027, 1, 1)); res.Eligible {
		t.Error("promotion after validUntil must be ineligible")
	}
	// validUntil itself is inclusive.
	if res := EvaluatePromotion(p, 10000, 2, string(models.RoomSuite), date(2026, 12, 31)); !res.Eligible {
		t.Errorf("promotion on validUntil day must be eligible, got %q", res.Reason)
	}
}

func TestUsageLimit(t *testing.T) {
	p := activePromotion(models.DiscountPercentage, 10)
	p.MaxUses = intPtr(5)
	p.CurrentUses = 5
	res := EvaluatePromotion(p, 10000, 2, string(models.RoomSuite), date(2026, 6, 1))
	if res.Eligible {
		t.Fatal("exhausted promotion must be ineligible")
	}
	if !strings.Contains(res.Reason, "usage limit") {
		t.Errorf("reason %q should identify the usage limit rule", res.Reason)
	}
}

func TestRoomAllowList(t *testing.T) {
	rooms, _ := json.Marshal([]string{string(models.RoomSuite)})
	p := activePromotion(models.DiscountPercentage, 10)
	p.RoomTypes = datatypes.JSON(rooms)

	if res := EvaluatePromotion(p, 10000, 2, string(models.RoomSuite), date(2026, 6, 1)); !res.Eligible {
		t.Errorf("allow-listed room should be eligible, got %q", res.Reason)
	}
	if res := EvaluatePromotion(p, 10000, 2, string(models.RoomJardim), date(2026, 6, 1)); res.Eligible {
		t.Error("room outside the allow-list must be ineligible")
	}
}

func TestMinTotalUsesPreDiscountSubtotal(t *testing.T) {
	p := activePromotion(models.DiscountPercentage, 50)
	p.MinTotal = floatPtr(10000)

	// Subtotal 10000 passes min-total even though the discounted total
	// (5000) would not: the rule reads the pre-discount subtotal.
	if res := EvaluatePromotion(p, 10000, 2, string(models.RoomSuite), date(2026, 6, 1)); !res.Eligible {
		t.Errorf("min-total must be checked pre-discount, got %q", res.Reason)
	}
	if res := EvaluatePromotion(p, 9999, 2, string(models.RoomSuite), date(2026, 6, 1)); res.Eligible {
		t.Error("subtotal below minTotal must be ineligible")
	}
}
