package routes

import (
	"database/sql"
	"os"
	"strconv"
	"strings"
	"time"

	"casa-tiana-server/models"
	"casa-tiana-server/services"
	"casa-tiana-server/storage"
	"casa-tiana-server/utils"

	"github.com/kataras/iris/v12"
	"gorm.io/gorm"
)

// Reservation endpoints: guest booking submission, lookup, cancellation and
// the pending-expiry sweep.

type CreateReservationInput struct {
	RoomType        string `json:"roomType" validate:"required"`
	CheckIn         string `json:"checkIn" validate:"required"`
	CheckOut        string `json:"checkOut" validate:"required"`
	GuestCount      int    `json:"guestCount" validate:"required,gte=1,lte=8"`
	GuestName       string `json:"guestName" validate:"required"`
	GuestEmail      string `json:"guestEmail" validate:"required,email"`
	GuestPhone      string `json:"guestPhone" validate:"required"`
	SpecialRequests string `json:"specialRequests"`
	PromotionCode   string `json:"promotionCode"`
}

func pendingTTL() time.Duration {
	if h, err := strconv.Atoi(os.Getenv("PENDING_RESERVATION_TTL_HOURS")); err == nil && h > 0 {
		return time.Duration(h) * time.Hour
	}
	return 24 * time.Hour
}

// isOverlapConflict recognizes the exclusion-constraint violation raised when
// two live reservations would hold the same room on overlapping nights.
func isOverlapConflict(err error) bool {
	return err != nil && strings.Contains(err.Error(), "reservations_no_date_overlap")
}

// expireStaleOverlaps cancels expired pending reservations overlapping the
// requested range. They no longer count as occupancy, but they would still
// trip the overlap constraint on insert. Both the guest and the staff booking
// paths run this inside their write transaction.
func expireStaleOverlaps(tx *gorm.DB, roomType string, checkIn, checkOut time.Time) error {
	return tx.Model(&models.Reservation{}).
		Where("room_type = ? AND status = ? AND expires_at < ?",
			roomType, models.ReservationPending, time.Now()).
		Where("check_in < ? AND check_out > ?", checkOut, checkIn).
		Update("status", models.ReservationCancelled).Error
}

// CreateReservation is the wizard's final submit. The availability check is
// repeated inside a serializable transaction and the row insert is guarded by
// the database exclusion constraint, so two guests racing for the same nights
// cannot both end up pending. Date conflicts are reported as 409, distinct
// from validation errors.
func CreateReservation(ctx iris.Context) {
	var input CreateReservationInput
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
	if errIn != nil || errOut != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Invalid dates", ctx)
		return
	}
	if !checkOut.After(checkIn) {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "checkOut must be after checkIn", ctx)
		return
	}
	if checkIn.Before(services.DateOnly(time.Now())) {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "checkIn cannot be in the past", ctx)
		return
	}
	if input.GuestCount > room.MaxGuests {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Too many guests for this room", ctx)
		return
	}

	nights := services.Nights(checkIn, checkOut)
	subtotal := services.ComputeSubtotal(room, nights)

	// Resolve the promotion outside the booking transaction; redemption is
	// re-validated atomically below.
	var promo *models.Promotion
	var discount float64
	if code := strings.ToUpper(strings.TrimSpace(input.PromotionCode)); code != "" {
		var p models.Promotion
		if err := storage.DB.Where("code = ?", code).First(&p).Error; err != nil {
			utils.CreateError(iris.StatusUnprocessableEntity, "Promotion Error", "promotion not found", ctx)
			return
		}
		result := services.EvaluatePromotion(&p, subtotal, nights, input.RoomType, time.Now())
		if !result.Eligible {
			utils.CreateError(iris.StatusUnprocessableEntity, "Promotion Error", result.Reason, ctx)
			return
		}
		promo = &p
		discount = result.DiscountAmount
	}

	reservation := models.Reservation{
		ReservationNumber: utils.GenerateReservationNumber(),
		RoomType:          input.RoomType,
		CheckIn:           checkIn,
		CheckOut:          checkOut,
		Nights:            nights,
		GuestCount:        input.GuestCount,
		GuestName:         input.GuestName,
		GuestEmail:        input.GuestEmail,
		GuestPhone:        input.GuestPhone,
		SpecialRequests:   input.SpecialRequests,
		RoomPricePerNight: room.PricePerNight,
		DiscountAmount:    discount,
		TotalPrice:        services.ComputeTotal(subtotal, discount),
		Status:            models.ReservationPending,
		PaymentStatus:     models.PaymentPending,
		ExpiresAt:         time.Now().Add(pendingTTL()),
	}
	if promo != nil {
		reservation.PromotionID = &promo.ID
		reservation.PromotionCode = promo.Code
	}

	txErr := storage.DB.Transaction(func(tx *gorm.DB) error {
		if err := expireStaleOverlaps(tx, input.RoomType, checkIn, checkOut); err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.Reservation{}).
			Where("room_type = ?", input.RoomType).
			Where("status = ? OR (status = ? AND expires_at > ?)",
				models.ReservationConfirmed, models.ReservationPending, time.Now()).
			Where("check_in < ? AND check_out > ?", checkOut, checkIn).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return gorm.ErrDuplicatedKey
		}

		var blocked int64
		if err := tx.Model(&models.ExternalBlockedDate{}).
			Where("room_type = ?", input.RoomType).
			Where("start_date < ? AND end_date > ?", checkOut, checkIn).
			Count(&blocked).Error; err != nil {
			return err
		}
		if blocked > 0 {
			return gorm.ErrDuplicatedKey
		}

		if err := tx.Create(&reservation).Error; err != nil {
			return err
		}

		if promo != nil {
			// Atomic conditional increment: zero rows means another
			// redemption exhausted the code since we validated it.
			res := tx.Model(&models.Promotion{}).
				Where("id = ? AND (max_uses IS NULL OR current_uses < max_uses)", promo.ID).
				Update("current_uses", gorm.Expr("current_uses + 1"))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return errPromotionExhausted
			}
		}
		return nil
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})

	if txErr != nil {
		switch {
		case txErr == gorm.ErrDuplicatedKey || isOverlapConflict(txErr):
			utils.CreateError(iris.StatusConflict, "Conflict", "The selected dates are no longer available", ctx)
		case txErr == errPromotionExhausted:
			utils.CreateError(iris.StatusUnprocessableEntity, "Promotion Error", "promotion usage limit reached", ctx)
		default:
			utils.CreateInternalServerError(ctx)
		}
		return
	}

	mailer := services.NewMailer()
	go mailer.SendPendingPaymentReminder(&reservation, room)

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"success": true, "data": reservation})
}

var errPromotionExhausted = errPromotion("promotion exhausted")

type errPromotion string

func (e errPromotion) Error() string { return string(e) }

// GetReservation looks a booking up by number. The guest's email must match:
// reservations are manageable without an account, the pair acts as the
// credential.
func GetReservation(ctx iris.Context) {
	number := ctx.Params().Get("number")
	email := ctx.URLParam("email")
	if email == "" {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "email query parameter is required", ctx)
		return
	}

	var reservation models.Reservation
	err := storage.DB.
		Where("reservation_number = ? AND lower(guest_email) = lower(?)", number, email).
		First(&reservation).Error
	if err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Reservation not found", ctx)
		return
	}
	ctx.JSON(iris.Map{"success": true, "data": reservation})
}

// CancelReservation lets a guest cancel a pending or confirmed booking.
func CancelReservation(ctx iris.Context) {
	number := ctx.Params().Get("number")
	email := ctx.URLParam("email")
	if email == "" {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "email query parameter is required", ctx)
		return
	}

	var reservation models.Reservation
	err := storage.DB.
		Where("reservation_number = ? AND lower(guest_email) = lower(?)", number, email).
		First(&reservation).Error
	if err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Reservation not found", ctx)
		return
	}

	if !models.CanTransition(reservation.Status, models.ReservationCancelled) {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Reservation can no longer be cancelled", ctx)
		return
	}

	reservation.Status = models.ReservationCancelled
	if err := storage.DB.Save(&reservation).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(iris.Map{"success": true, "data": reservation})
}

// ExpirePendingReservations cancels pending bookings whose payment window has
// lapsed. Availability already ignores them lazily; this sweep makes the
// state explicit for the back-office.
func ExpirePendingReservations(ctx iris.Context) {
	res := storage.DB.Model(&models.Reservation{}).
		Where("status = ? AND expires_at < ?", models.ReservationPending, time.Now()).
		Update("status", models.ReservationCancelled)
	if res.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(iris.Map{"success": true, "expired": res.RowsAffected})
}
