package routes

import (
	"strings"
	"time"

	"casa-tiana-server/models"
	"casa-tiana-server/services"
	"casa-tiana-server/utils"

	"github.com/kataras/iris/v12"
)

// ExportRoomCalendar serves a room's bookings as an iCal feed so external
// platforms (Airbnb, Booking.com) can import our occupancy. Confirmed
// reservations and still-live pending ones are exported; our own external
// blocks are not echoed back to avoid feedback loops between platforms.
func ExportRoomCalendar(ctx iris.Context) {
	roomType := strings.TrimSuffix(ctx.Params().Get("roomType"), ".ics")
	room := models.FindRoom(roomType)
	if room == nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Unknown room", ctx)
		return
	}

	store := occupancyStore()
	reservations, err := store.ListBlockingReservations(time.Now(), roomType)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	feed := services.BuildRoomCalendar(room, reservations)
	ctx.ContentType("text/calendar")
	ctx.Header("Content-Disposition", `attachment; filename="`+roomType+`.ics"`)
	ctx.WriteString(feed)
}
