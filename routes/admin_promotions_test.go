package routes

import (
	"testing"

	"casa-tiana-server/models"
)

func validPromotionInput() PromotionInput {
	return PromotionInput{
		Code:          "verao10",
		Name:          "Verão",
		DiscountType:  models.DiscountPercentage,
		DiscountValue: 10,
		ValidFrom:     "2026-06-01",
		ValidUntil:    "2026-09-30",
	}
}

func TestPromotionInputApply(t *testing.T) {
	in := validPromotionInput()
	var p models.Promotion
	if err := in.apply(&p); err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}
	if p.Code != "VERAO10" {
		t.Errorf("code not uppercased: %q", p.Code)
	}
	if !p.ValidUntil.After(p.ValidFrom) {
		t.Errorf("validity window not applied")
	}
}

func TestPromotionInputApplyRejectsPercentageOver100(t *testing.T) {
	in := validPromotionInput()
	in.DiscountValue = 120
	if err := in.apply(&models.Promotion{}); err != errPercentTooLarge {
		t.Fatalf("expected percentage cap error, got %v", err)
	}

	// A fixed discount above 100 is a legitimate CVE amount.
	in.DiscountType = models.DiscountFixed
	in.DiscountValue = 5000
	if err := in.apply(&models.Promotion{}); err != nil {
		t.Fatalf("fixed discount of 5000 rejected: %v", err)
	}
}

func TestPromotionInputApplyRejectsInvertedWindow(t *testing.T) {
	in := validPromotionInput()
	in.ValidFrom = "2026-09-30"
	in.ValidUntil = "2026-06-01"
	if err := in.apply(&models.Promotion{}); err != errInvalidWindow {
		t.Fatalf("expected window error, got %v", err)
	}
}

func TestPromotionInputApplyRejectsUnknownRoom(t *testing.T) {
	in := validPromotionInput()
	in.RoomTypes = []string{"quarto-inexistente"}
	if err := in.apply(&models.Promotion{}); err != errUnknownRoom {
		t.Fatalf("expected unknown room error, got %v", err)
	}
}
