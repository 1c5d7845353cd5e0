package routes

import (
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

// Back-office reservation management.

// AdminListReservations returns a paged reservation list with optional
// filters on status, room, a date window and a free-text guest search.
func AdminListReservations(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("per_page", 25)
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 25
	}

	query := storage.DB.Model(&models.Reservation{})
	if status := ctx.URLParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if roomType := ctx.URLParam("roomType"); roomType != "" {
		query = query.Where("room_type = ?", roomType)
	}
	if from := ctx.URLParam("from"); from != "" {
		if d, err := parseDate(from); err == nil {
			query = query.Where("check_out > ?", d)
		}
	}
	if to := ctx.URLParam("to"); to != "" {
		if d, err := parseDate(to); err == nil {
			query = query.Where("check_in < ?", d)
		}
	}
	if search := strings.TrimSpace(ctx.URLParam("search")); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"lower(guest_name) LIKE ? OR lower(guest_email) LIKE ? OR lower(reservation_number) LIKE ?",
			like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	var reservations []models.Reservation
	err := query.
		Order("check_in DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&reservations).Error
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	utils.JSONPage(ctx, reservations, page, perPage, total)
}

func AdminGetReservation(ctx iris.Context) {
	id := ctx.Params().Get("id")
	var reservation models.Reservation
	if err := storage.DB.First(&reservation, "id = ?", id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	ctx.JSON(iris.Map{"success": true, "data": reservation})
}

type UpdateReservationStatusInput struct {
	Status string `json:"status" validate:"required"`
}

// AdminUpdateReservationStatus moves a reservation through its lifecycle.
// Illegal transitions (e.g. cancelled back to confirmed) are rejected.
func AdminUpdateReservationStatus(ctx iris.Context) {
	id := ctx.Params().Get("id")
	var input UpdateReservationStatusInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var reservation models.Reservation
	if err := storage.DB.First(&reservation, "id = ?", id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	if !models.CanTransition(reservation.Status, input.Status) {
		utils.CreateError(iris.StatusBadRequest, "Bad Request",
			"cannot move reservation from "+reservation.Status+" to "+input.Status, ctx)
		return
	}

	before := reservation
	reservation.Status = input.Status
	if err := storage.DB.Save(&reservation).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	utils.Audit(ctx, "reservation.status", "reservation", reservation.ID, before, reservation)
	ctx.JSON(iris.Map{"success": true, "data": reservation})
}

type AdminCreateReservationInput struct {
	RoomType        string `json:"roomType" validate:"required"`
	CheckIn         string `json:"checkIn" validate:"required"`
	CheckOut        string `json:"checkOut" validate:"required"`
	GuestCount      int    `json:"guestCount" validate:"required,gte=1,lte=8"`
	GuestName       string `json:"guestName" validate:"required"`
	GuestEmail      string `json:"guestEmail" validate:"required,email"`
	GuestPhone      string `json:"guestPhone"`
	SpecialRequests string `json:"specialRequests"`
	PayOnArrival    bool   `json:"payOnArrival"`
}

// AdminCreateReservation records a phone or walk-in booking. Pay-on-arrival
// bookings are created confirmed and never expire; otherwise the booking is
// pending like a guest one. The same overlap guards apply.
func AdminCreateReservation(ctx iris.Context) {
	var input AdminCreateReservationInput
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

	nights := services.Nights(checkIn, checkOut)
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
		TotalPrice:        services.ComputeSubtotal(room, nights),
	}
	if input.PayOnArrival {
		reservation.Status = models.ReservationConfirmed
		reservation.PaymentStatus = models.PaymentPending
		reservation.ExpiresAt = checkOut // never treated as expiring before stay ends
	} else {
		reservation.Status = models.ReservationPending
		reservation.PaymentStatus = models.PaymentPending
		reservation.ExpiresAt = time.Now().Add(pendingTTL())
	}

	txErr := storage.DB.Transaction(func(tx *gorm.DB) error {
		if err := expireStaleOverlaps(tx, input.RoomType, checkIn, checkOut); err != nil {
			return err
		}
		return tx.Create(&reservation).Error
	})
	if txErr != nil {
		if isOverlapConflict(txErr) {
			utils.CreateError(iris.StatusConflict, "Conflict", "The selected dates are no longer available", ctx)
			return
		}
		utils.CreateInternalServerError(ctx)
		return
	}

	mailer := services.NewMailer()
	if input.PayOnArrival {
		go mailer.SendWelcome(&reservation, room)
	} else {
		go mailer.SendPendingPaymentReminder(&reservation, room)
	}

	utils.Audit(ctx, "reservation.create", "reservation", reservation.ID, nil, reservation)
	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"success": true, "data": reservation})
}

// AdminArchiveReservations bulk-archives completed and cancelled bookings
// older than the given number of days (default 365).
func AdminArchiveReservations(ctx iris.Context) {
	days := ctx.URLParamIntDefault("olderThanDays", 365)
	if days < 30 {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "olderThanDays must be at least 30", ctx)
		return
	}
	cutoff := time.Now().AddDate(0, 0, -days)

	res := storage.DB.Model(&models.Reservation{}).
		Where("status IN ? AND check_out < ?",
			[]string{models.ReservationCompleted, models.ReservationCancelled}, cutoff).
		Update("status", models.ReservationArchived)
	if res.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	utils.Audit(ctx, "reservation.archive", "reservation", strconv.FormatInt(res.RowsAffected, 10), nil, nil)
	ctx.JSON(iris.Map{"success": true, "archived": res.RowsAffected})
}
