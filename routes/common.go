package routes

import (
	"log"
	"time"

	"casa-tiana-server/services"
	"casa-tiana-server/storage"
)

const dateLayout = "2006-01-02"

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return services.DateOnly(t), nil
}

func occupancyStore() *services.OccupancyStore {
	return services.NewOccupancyStore(storage.DB, log.Default())
}

func blockStore() *services.GormBlockStore {
	return &services.GormBlockStore{DB: storage.DB}
}
