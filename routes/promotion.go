package routes

import (
	"strings"
	"time"

	"casa-tiana-server/models"
	"casa-tiana-server/services"
	"casa-tiana-server/storage"
	"casa-tiana-server/utils"

	"github.com/kataras/iris/v12"
)

type ValidatePromotionInput struct {
	Code     string `json:"code" validate:"required"`
	RoomType string `json:"roomType" validate:"required"`
	CheckIn  string `json:"checkIn" validate:"required"`
	CheckOut string `json:"checkOut" validate:"required"`
}

// ValidatePromotion lets the booking wizard check a code before submitting.
// The answer is advisory; the same rules are enforced again at reservation
// time, including the usage counter.
func ValidatePromotion(ctx iris.Context) {
	var input ValidatePromotionInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	room := models.FindRoom(input.RoomType)
	if room == nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Unknown room", ctx)
		return
	}
	checkIn, errIn := parseDate(input.CheckIn)
	checkOut, errOut := parseDate(input.CheckOut)
	if errIn != nil || errOut != nil || !checkOut.After(checkIn) {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Invalid dates", ctx)
		return
	}

	code := strings.ToUpper(strings.TrimSpace(input.Code))
	var promo models.Promotion
	if err := storage.DB.Where("code = ?", code).First(&promo).Error; err != nil {
		ctx.JSON(iris.Map{"success": true, "eligible": false, "reason": "promotion not found"})
		return
	}

	nights := services.Nights(checkIn, checkOut)
	subtotal := services.ComputeSubtotal(room, nights)
	result := services.EvaluatePromotion(&promo, subtotal, nights, input.RoomType, time.Now())

	resp := iris.Map{
		"success":  true,
		"eligible": result.Eligible,
	}
	if result.Eligible {
		resp["discountAmount"] = result.DiscountAmount
		resp["total"] = services.ComputeTotal(subtotal, result.DiscountAmount)
	} else {
		resp["reason"] = result.Reason
	}
	ctx.JSON(resp)
}
