package routes

import (
	"casa-tiana-server/models"
	"casa-tiana-server/storage"
	"casa-tiana-server/utils"

	"github.com/kataras/iris/v12"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Manual room status overrides: maintenance and cleaning markers that win
// over reservations and external blocks in the availability view.

func AdminListRoomStatuses(ctx iris.Context) {
	var statuses []models.RoomManualStatus
	if err := storage.DB.Order("room_type").Find(&statuses).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(iris.Map{"success": true, "data": statuses})
}

type SetRoomStatusInput struct {
	Status string `json:"status" validate:"required,oneof=maintenance cleaning available"`
	Note   string `json:"note"`
}

// AdminSetRoomStatus upserts the override for a room; "available" clears it.
// Overrides persist across restarts and apply until explicitly removed.
func AdminSetRoomStatus(ctx iris.Context) {
	roomType := ctx.Params().Get("roomType")
	if !models.IsValidRoomType(roomType) {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Unknown room", ctx)
		return
	}

	var input SetRoomStatusInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if input.Status == "available" {
		res := storage.DB.Where("room_type = ?", roomType).Delete(&models.RoomManualStatus{})
		if res.Error != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
		utils.Audit(ctx, "room.status_clear", "room", roomType, nil, nil)
		ctx.JSON(iris.Map{"success": true, "roomType": roomType, "status": "available"})
		return
	}

	var staffID uint
	if v := ctx.Values().Get("userID"); v != nil {
		if id, ok := v.(uint); ok {
			staffID = id
		}
	}

	override := models.RoomManualStatus{
		RoomType: roomType,
		Status:   input.Status,
		Note:     input.Note,
		SetBy:    staffID,
	}
	err := storage.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "room_type"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "note", "set_by", "updated_at"}),
	}).Create(&override).Error
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Audit(ctx, "room.status_set", "room", roomType, nil, override)
	ctx.JSON(iris.Map{"success": true, "data": override})
}

// AdminGetRoomStatus returns the current override for one room, if any.
func AdminGetRoomStatus(ctx iris.Context) {
	roomType := ctx.Params().Get("roomType")
	if !models.IsValidRoomType(roomType) {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Unknown room", ctx)
		return
	}

	var override models.RoomManualStatus
	err := storage.DB.Where("room_type = ?", roomType).First(&override).Error
	if err == gorm.ErrRecordNotFound {
		ctx.JSON(iris.Map{"success": true, "roomType": roomType, "status": "available"})
		return
	}
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(iris.Map{"success": true, "data": override})
}
