package routes

import (
	"log"
	"strings"
	"time"

	"casa-tiana-server/models"
	"casa-tiana-server/services"
	"casa-tiana-server/storage"
	"casa-tiana-server/utils"

	"github.com/kataras/iris/v12"
)

// Availability routes: the per-day room calendar, range checks for the
// booking wizard, the availability badge summary and the price quote.

// GetRoomCalendar returns one status per day for a room over a date window.
// This is the guest view: a manual staff override shows up as plain
// "occupied". Query failures here fail open (empty data) because the
// calendar is informational; the booking gate re-checks on submission.
func GetRoomCalendar(ctx iris.Context) {
	roomType := ctx.Params().Get("roomType")
	if !models.IsValidRoomType(roomType) {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Unknown room", ctx)
		return
	}

	startStr := ctx.URLParam("start")
	endStr := ctx.URLParam("end")
	if startStr == "" || endStr == "" {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "start and end query parameters are required", ctx)
		return
	}
	start, err := parseDate(startStr)
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Invalid start date format", ctx)
		return
	}
	end, err := parseDate(endStr)
	if err != nil || !end.After(start) {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Invalid end date", ctx)
		return
	}

	store := occupancyStore()
	now := time.Now()
	reservations, resErr := store.ListBlockingReservations(now, roomType)
	blocks, blkErr := store.ListExternalBlocks(start, roomType)
	overrides, ovrErr := store.ListManualStatuses(roomType)
	if resErr != nil || blkErr != nil || ovrErr != nil {
		// Informational display: show nothing rather than wrong data.
		log.Printf("⚠️ room calendar query failed for %s: %v %v %v", roomType, resErr, blkErr, ovrErr)
		ctx.JSON(iris.Map{"success": true, "data": iris.Map{}})
		return
	}

	days := iris.Map{}
	for day := start; day.Before(end); day = day.AddDate(0, 0, 1) {
		status := services.ResolveDay(roomType, day, now, overrides, reservations, blocks)
		days[day.Format(dateLayout)] = status
	}

	ctx.JSON(iris.Map{"success": true, "data": days})
}

type CheckRangeInput struct {
	RoomType string `json:"roomType" validate:"required"`
	CheckIn  string `json:"checkIn" validate:"required"`
	CheckOut string `json:"checkOut" validate:"required"`
}

// CheckRange answers "is room R free for [checkIn, checkOut)?". It gates the
// booking wizard's next button, so data-store failures fail closed.
func CheckRange(ctx iris.Context) {
	var input CheckRangeInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	if !models.IsValidRoomType(input.RoomType) {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Unknown room", ctx)
		return
	}
	checkIn, err := parseDate(input.CheckIn)
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Invalid checkIn date", ctx)
		return
	}
	checkOut, err := parseDate(input.CheckOut)
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Invalid checkOut date", ctx)
		return
	}
	// checkIn == checkOut would be a zero-night stay.
	if !checkOut.After(checkIn) {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "checkOut must be after checkIn", ctx)
		return
	}

	free, err := rangeFree(input.RoomType, checkIn, checkOut)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "available": free})
}

// rangeFree loads both occupancy sources and runs the pure range check.
// Errors propagate so booking-gating callers can fail closed.
func rangeFree(roomType string, checkIn, checkOut time.Time) (bool, error) {
	store := occupancyStore()
	reservations, err := store.ListBlockingReservations(time.Now(), roomType)
	if err != nil {
		return false, err
	}
	blocks, err := store.ListExternalBlocks(checkIn, roomType)
	if err != nil {
		return false, err
	}
	return services.IsRangeFree(roomType, checkIn, checkOut, reservations, blocks), nil
}

// GetAvailabilitySummary aggregates a forward horizon for "N days available"
// badges.
func GetAvailabilitySummary(ctx iris.Context) {
	roomType := ctx.Params().Get("roomType")
	if !models.IsValidRoomType(roomType) {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Unknown room", ctx)
		return
	}
	horizon := ctx.URLParamIntDefault("days", 90)
	if horizon <= 0 || horizon > 365 {
		horizon = 90
	}

	store := occupancyStore()
	now := time.Now()
	reservations, resErr := store.ListBlockingReservations(now, roomType)
	blocks, blkErr := store.ListExternalBlocks(now, roomType)
	if resErr != nil || blkErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	summary := services.Summarize(roomType, now, horizon, reservations, blocks)
	ctx.JSON(iris.Map{"success": true, "data": summary})
}

type PriceQuoteInput struct {
	RoomType      string `json:"roomType" validate:"required"`
	CheckIn       string `json:"checkIn" validate:"required"`
	CheckOut      string `json:"checkOut" validate:"required"`
	PromotionCode string `json:"promotionCode"`
}

// CalculateBookingPrice quotes nights, subtotal, discount and total for the
// wizard's summary step.
func CalculateBookingPrice(ctx iris.Context) {
	var input PriceQuoteInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	room := models.FindRoom(input.RoomType)
	if room == nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Unknown room", ctx)
		return
	}
	checkIn, errIn := parseDate(input.CheckIn)
	checkOut, errOut := parseDate(input.CheckOut)
	if errIn != nil || errOut != nil || !checkOut.After(checkIn) {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "checkOut must be after checkIn", ctx)
		return
	}

	nights := services.Nights(checkIn, checkOut)
	subtotal := services.ComputeSubtotal(room, nights)

	var discount float64
	var promoResult *services.PromotionResult
	if code := strings.ToUpper(strings.TrimSpace(input.PromotionCode)); code != "" {
		var promo models.Promotion
		if err := storage.DB.Where("code = ?", code).First(&promo).Error; err != nil {
			promoResult = &services.PromotionResult{Eligible: false, Reason: "promotion not found"}
		} else {
			r := services.EvaluatePromotion(&promo, subtotal, nights, input.RoomType, time.Now())
			promoResult = &r
			if r.Eligible {
				discount = r.DiscountAmount
			}
		}
	}

	ctx.JSON(iris.Map{
		"success": true,
		"data": iris.Map{
			"roomType":          input.RoomType,
			"nights":            nights,
			"roomPricePerNight": room.PricePerNight,
			"subtotal":          subtotal,
			"discountAmount":    discount,
			"totalPrice":        services.ComputeTotal(subtotal, discount),
			"promotion":         promoResult,
		},
	})
}
