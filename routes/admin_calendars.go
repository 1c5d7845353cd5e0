package routes

import (
	"context"
	"log"
	"strconv"
	"time"

	"casa-tiana-server/models"
	"casa-tiana-server/services"
	"casa-tiana-server/storage"
	"casa-tiana-server/utils"

	"github.com/kataras/iris/v12"
)

// External calendar management: one feed per platform per room, synced on a
// schedule plus on demand from the back-office.

func AdminListCalendars(ctx iris.Context) {
	var calendars []models.ExternalCalendar
	if err := storage.DB.Preload("Blocks").Order("room_type, name").Find(&calendars).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(iris.Map{"success": true, "data": calendars})
}

type CalendarInput struct {
	RoomType string `json:"roomType" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Source   string `json:"source" validate:"required"`
	FeedURL  string `json:"feedUrl" validate:"required,url"`
}

// AdminCreateCalendar registers a feed and kicks off its first sync in the
// background so blocks appear without waiting for the next scheduled run.
func AdminCreateCalendar(ctx iris.Context) {
	var input CalendarInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	if !models.IsValidRoomType(input.RoomType) {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Unknown room", ctx)
		return
	}

	calendar := models.ExternalCalendar{
		RoomType: input.RoomType,
		Name:     input.Name,
		Source:   input.Source,
		FeedURL:  input.FeedURL,
	}
	if err := storage.DB.Create(&calendar).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	utils.Audit(ctx, "calendar.create", "external_calendar", strconv.Itoa(int(calendar.ID)), nil, calendar)

	sync := services.NewCalendarSync(blockStore(), log.Default())
	go func() {
		bg, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := sync.SyncCalendar(bg, calendar); err != nil {
			log.Printf("⚠️ initial sync failed for %s: %v", calendar.Name, err)
		}
	}()

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"success": true, "data": calendar})
}

func AdminUpdateCalendar(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	var input CalendarInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	if !models.IsValidRoomType(input.RoomType) {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Unknown room", ctx)
		return
	}

	var calendar models.ExternalCalendar
	if err := storage.DB.First(&calendar, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	before := calendar
	calendar.RoomType = input.RoomType
	calendar.Name = input.Name
	calendar.Source = input.Source
	calendar.FeedURL = input.FeedURL
	if err := storage.DB.Save(&calendar).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	utils.Audit(ctx, "calendar.update", "external_calendar", strconv.Itoa(int(calendar.ID)), before, calendar)
	ctx.JSON(iris.Map{"success": true, "data": calendar})
}

// AdminDeleteCalendar removes a feed and its imported blocks.
func AdminDeleteCalendar(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	var calendar models.ExternalCalendar
	if err := storage.DB.First(&calendar, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	if err := storage.DB.Where("calendar_id = ?", id).Delete(&models.ExternalBlockedDate{}).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if err := storage.DB.Delete(&calendar).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	utils.Audit(ctx, "calendar.delete", "external_calendar", strconv.Itoa(int(calendar.ID)), calendar, nil)
	ctx.JSON(iris.Map{"success": true})
}

// AdminSyncCalendars runs a full sync pass immediately and reports per-feed
// results. A feed that fails keeps its previous blocks.
func AdminSyncCalendars(ctx iris.Context) {
	sync := services.NewCalendarSync(blockStore(), log.Default())
	syncCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	report := sync.SyncAll(syncCtx)
	utils.Audit(ctx, "calendar.sync", "external_calendar", "all", nil, report)
	ctx.JSON(iris.Map{"success": true, "data": report})
}

// AdminClearBlockedDates purges all imported blocks. Destructive and rare:
// used when a platform feed was misconfigured and poisoned the availability
// view. The next sync repopulates from scratch.
func AdminClearBlockedDates(ctx iris.Context) {
	res := storage.DB.Where("1 = 1").Delete(&models.ExternalBlockedDate{})
	if res.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	utils.Audit(ctx, "calendar.clear_blocks", "external_blocked_date", "all", nil, nil)
	ctx.JSON(iris.Map{"success": true, "deleted": res.RowsAffected})
}
