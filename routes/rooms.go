package routes

import (
	"casa-tiana-server/models"

	"github.com/kataras/iris/v12"
)

// GetRooms returns the room catalog for the booking wizard.
func GetRooms(ctx iris.Context) {
	ctx.JSON(iris.Map{
		"success": true,
		"data":    models.RoomCatalog,
	})
}
