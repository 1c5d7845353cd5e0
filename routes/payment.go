package routes

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"casa-tiana-server/models"
	"casa-tiana-server/services"
	"casa-tiana-server/storage"
	"casa-tiana-server/utils"

	"github.com/kataras/iris/v12"
)

// SISP vinti4 payment flow. InitiatePayment builds the signed auto-submitting
// redirect form; PaymentCallback is the server-to-server notification from
// the gateway. Every callback is recorded in payment_logs regardless of
// outcome.

type InitiatePaymentInput struct {
	ReservationNumber string `json:"reservationNumber" validate:"required"`
	GuestEmail        string `json:"guestEmail" validate:"required,email"`
	ResponseURL       string `json:"responseUrl" validate:"required,url"`
}

func InitiatePayment(ctx iris.Context) {
	var input InitiatePaymentInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var reservation models.Reservation
	err := storage.DB.
		Where("reservation_number = ? AND lower(guest_email) = lower(?)",
			input.ReservationNumber, input.GuestEmail).
		First(&reservation).Error
	if err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Reservation not found", ctx)
		return
	}

	if reservation.Status != models.ReservationPending {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Reservation is not awaiting payment", ctx)
		return
	}
	if reservation.IsExpiredPending(time.Now()) {
		utils.CreateError(iris.StatusGone, "Expired", "The payment window for this reservation has closed", ctx)
		return
	}
	if reservation.PaymentStatus == models.PaymentPaid {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Reservation is already paid", ctx)
		return
	}

	// The merchant session correlates the asynchronous callback back to
	// this reservation.
	merchantSession := fmt.Sprintf("CT%d%s", time.Now().UnixMilli(), reservation.ReservationNumber[len(reservation.ReservationNumber)-4:])

	reservation.PaymentReference = merchantSession
	reservation.PaymentStatus = models.PaymentProcessing
	if err := storage.DB.Save(&reservation).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	client := services.NewSispClient()
	formHTML := client.BuildRedirectForm(services.PaymentRequest{
		MerchantRef:     reservation.ReservationNumber,
		MerchantSession: merchantSession,
		Amount:          reservation.TotalPrice,
		ResponseURL:     input.ResponseURL,
	})

	ctx.JSON(iris.Map{
		"success":         true,
		"formHtml":        formHTML,
		"merchantSession": merchantSession,
	})
}

// PaymentCallback handles the gateway notification. The response fingerprint
// is recomputed with the POS secret before any state changes; a mismatch
// leaves the reservation untouched and is answered with 400.
func PaymentCallback(ctx iris.Context) {
	var fields services.CallbackFields
	if strings.HasPrefix(ctx.GetContentTypeRequested(), "application/json") {
		if err := ctx.ReadJSON(&fields); err != nil {
			utils.CreateError(iris.StatusBadRequest, "Bad Request", "Malformed callback payload", ctx)
			return
		}
	} else {
		if err := ctx.ReadForm(&fields); err != nil {
			utils.CreateError(iris.StatusBadRequest, "Bad Request", "Malformed callback payload", ctx)
			return
		}
	}

	var reservation models.Reservation
	err := storage.DB.
		Where("payment_reference = ?", fields.MerchantRespMerchantSession).
		First(&reservation).Error
	if err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "No reservation matches this payment session", ctx)
		return
	}

	client := services.NewSispClient()
	fingerprintOK := client.ValidateCallback(fields)

	amount, _ := strconv.ParseFloat(fields.MerchantRespPurchaseAmount, 64)
	raw, _ := json.Marshal(fields)
	logEntry := models.PaymentLog{
		ReservationID:   reservation.ID,
		MessageType:     fields.MessageType,
		TransactionID:   fields.MerchantRespTid,
		MerchantSession: fields.MerchantRespMerchantSession,
		Amount:          amount,
		FingerprintOK:   fingerprintOK,
		RawPayload:      string(raw),
	}

	if !fingerprintOK {
		logEntry.Success = false
		storage.DB.Create(&logEntry)
		log.Printf("⚠️ payment callback rejected for %s: fingerprint mismatch", reservation.ReservationNumber)
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Invalid payment notification", ctx)
		return
	}

	// A late callback can arrive after the reservation left pending: the
	// guest cancelled during the 3DS redirect, or the payment window
	// expired. Record it, never resurrect the booking or downgrade a paid
	// one.
	if !models.CanTransition(reservation.Status, models.ReservationConfirmed) {
		logEntry.Success = services.IsSispSuccess(fields.MessageType)
		storage.DB.Create(&logEntry)
		log.Printf("⚠️ payment callback for %s ignored: reservation is %s", reservation.ReservationNumber, reservation.Status)
		ctx.JSON(iris.Map{"success": true, "paymentStatus": reservation.PaymentStatus})
		return
	}

	if services.IsSispSuccess(fields.MessageType) {
		logEntry.Success = true
		now := time.Now()
		reservation.PaymentStatus = models.PaymentPaid
		reservation.Status = models.ReservationConfirmed
		reservation.PaidAt = &now
		reservation.SispTransactionID = fields.MerchantRespTid
		if err := storage.DB.Save(&reservation).Error; err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
		storage.DB.Create(&logEntry)

		if room := models.FindRoom(reservation.RoomType); room != nil {
			mailer := services.NewMailer()
			go mailer.SendReservationConfirmed(&reservation, room)
		}
		log.Printf("✅ payment confirmed for %s (transaction %s)", reservation.ReservationNumber, fields.MerchantRespTid)
	} else {
		logEntry.Success = false
		reservation.PaymentStatus = models.PaymentFailed
		if err := storage.DB.Save(&reservation).Error; err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
		storage.DB.Create(&logEntry)
		log.Printf("❌ payment failed for %s (message type %s)", reservation.ReservationNumber, fields.MessageType)
	}

	ctx.JSON(iris.Map{"success": true, "paymentStatus": reservation.PaymentStatus})
}
