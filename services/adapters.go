package services

import (
	"log"
	"time"

	"casa-tiana-server/models"

	"gorm.io/gorm"
)

// OccupancyStore reads the three occupancy sources for the resolver. It is
// strictly read-only; write paths live with their owning handlers.
//
// On query failure callers must decide the policy themselves: booking-gating
// decisions fail closed (treat the room as unavailable), informational
// displays fail open (show nothing).
type OccupancyStore struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewOccupancyStore(db *gorm.DB, lg *log.Logger) *OccupancyStore {
	return &OccupancyStore{DB: db, Logger: lg}
}

// ListBlockingReservations returns reservations that currently hold their
// room: confirmed ones, and pending ones whose payment window has not
// expired. Expired pendings are intentionally excluded so an abandoned
// payment cannot block a room forever.
func (s *OccupancyStore) ListBlockingReservations(now time.Time, roomTypes ...string) ([]models.Reservation, error) {
	q := s.DB.Where(
		"status = ? OR (status = ? AND expires_at > ?)",
		models.ReservationConfirmed, models.ReservationPending, now,
	)
	if len(roomTypes) > 0 {
		q = q.Where("room_type IN ?", roomTypes)
	}
	var reservations []models.Reservation
	if err := q.Find(&reservations).Error; err != nil {
		return nil, err
	}
	return reservations, nil
}

// ListExternalBlocks returns synced OTA blocks that have not fully ended
// before the given cutoff.
func (s *OccupancyStore) ListExternalBlocks(notEndedBefore time.Time, roomTypes ...string) ([]models.ExternalBlockedDate, error) {
	q := s.DB.Where("end_date > ?", DateOnly(notEndedBefore))
	if len(roomTypes) > 0 {
		q = q.Where("room_type IN ?", roomTypes)
	}
	var blocks []models.ExternalBlockedDate
	if err := q.Find(&blocks).Error; err != nil {
		return nil, err
	}
	return blocks, nil
}

// ListManualStatuses returns the active staff overrides, one per room at most.
func (s *OccupancyStore) ListManualStatuses(roomTypes ...string) ([]models.RoomManualStatus, error) {
	q := s.DB.Model(&models.RoomManualStatus{})
	if len(roomTypes) > 0 {
		q = q.Where("room_type IN ?", roomTypes)
	}
	var statuses []models.RoomManualStatus
	if err := q.Find(&statuses).Error; err != nil {
		return nil, err
	}
	return statuses, nil
}
