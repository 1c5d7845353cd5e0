package routes

import (
	"encoding/json"
	"strconv"
	"strings"

	"casa-tiana-server/models"
	"casa-tiana-server/storage"
	"casa-tiana-server/utils"

	"github.com/kataras/iris/v12"
)

func AdminListPromotions(ctx iris.Context) {
	var promotions []models.Promotion
	if err := storage.DB.Order("created_at DESC").Find(&promotions).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(iris.Map{"success": true, "data": promotions})
}

type PromotionInput struct {
	Code          string   `json:"code" validate:"required,max=32"`
	Name          string   `json:"name" validate:"required"`
	DiscountType  string   `json:"discountType" validate:"required,oneof=percentage fixed"`
	DiscountValue float64  `json:"discountValue" validate:"required,gt=0"`
	MinNights     *int     `json:"minNights" validate:"omitempty,gte=1"`
	MinTotal      *float64 `json:"minTotal" validate:"omitempty,gt=0"`
	ValidFrom     string   `json:"validFrom" validate:"required"`
	ValidUntil    string   `json:"validUntil" validate:"required"`
	MaxUses       *int     `json:"maxUses" validate:"omitempty,gte=1"`
	RoomTypes     []string `json:"roomTypes"`
	IsActive      *bool    `json:"isActive"`
}

func (in *PromotionInput) apply(p *models.Promotion) error {
	validFrom, err := parseDate(in.ValidFrom)
	if err != nil {
		return err
	}
	validUntil, err := parseDate(in.ValidUntil)
	if err != nil {
		return err
	}
	if validUntil.Before(validFrom) {
		return errInvalidWindow
	}
	if in.DiscountType == models.DiscountPercentage && in.DiscountValue > 100 {
		return errPercentTooLarge
	}
	for _, rt := range in.RoomTypes {
		if !models.IsValidRoomType(rt) {
			return errUnknownRoom
		}
	}

	p.Code = strings.ToUpper(strings.TrimSpace(in.Code))
	p.Name = in.Name
	p.DiscountType = in.DiscountType
	p.DiscountValue = in.DiscountValue
	p.MinNights = in.MinNights
	p.MinTotal = in.MinTotal
	p.ValidFrom = validFrom
	p.ValidUntil = validUntil
	p.MaxUses = in.MaxUses
	if in.RoomTypes != nil {
		raw, _ := json.Marshal(in.RoomTypes)
		p.RoomTypes = raw
	} else {
		p.RoomTypes = nil
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	return nil
}

var (
	errUnknownRoom     = errPromotion("unknown room type")
	errInvalidWindow   = errPromotion("validUntil cannot precede validFrom")
	errPercentTooLarge = errPromotion("percentage discount cannot exceed 100")
)

func AdminCreatePromotion(ctx iris.Context) {
	var input PromotionInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	promotion := models.Promotion{IsActive: true}
	if err := input.apply(&promotion); err != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", err.Error(), ctx)
		return
	}

	if err := storage.DB.Create(&promotion).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate") || strings.Contains(err.Error(), "unique") {
			utils.CreateError(iris.StatusConflict, "Conflict", "A promotion with this code already exists", ctx)
			return
		}
		utils.CreateInternalServerError(ctx)
		return
	}
	utils.Audit(ctx, "promotion.create", "promotion", strconv.Itoa(int(promotion.ID)), nil, promotion)
	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"success": true, "data": promotion})
}

func AdminUpdatePromotion(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	var input PromotionInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var promotion models.Promotion
	if err := storage.DB.First(&promotion, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	before := promotion
	if err := input.apply(&promotion); err != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", err.Error(), ctx)
		return
	}
	if err := storage.DB.Save(&promotion).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	utils.Audit(ctx, "promotion.update", "promotion", strconv.Itoa(int(promotion.ID)), before, promotion)
	ctx.JSON(iris.Map{"success": true, "data": promotion})
}

// AdminTogglePromotion flips the active flag without touching the rest of the
// definition.
func AdminTogglePromotion(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	var promotion models.Promotion
	if err := storage.DB.First(&promotion, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	before := promotion
	promotion.IsActive = !promotion.IsActive
	if err := storage.DB.Save(&promotion).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	utils.Audit(ctx, "promotion.toggle", "promotion", strconv.Itoa(int(promotion.ID)), before, promotion)
	ctx.JSON(iris.Map{"success": true, "data": promotion})
}

func AdminDeletePromotion(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	var promotion models.Promotion
	if err := storage.DB.First(&promotion, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	var used int64
	storage.DB.Model(&models.Reservation{}).Where("promotion_id = ?", id).Count(&used)
	if used > 0 {
		// Redeemed codes stay for reporting; deactivate instead.
		utils.CreateError(iris.StatusBadRequest, "Bad Request",
			"promotion has been redeemed; deactivate it instead of deleting", ctx)
		return
	}

	if err := storage.DB.Delete(&promotion).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	utils.Audit(ctx, "promotion.delete", "promotion", strconv.Itoa(int(promotion.ID)), promotion, nil)
	ctx.JSON(iris.Map{"success": true})
}
