package services

import (
	"time"

	"casa-tiana-server/models"
)

// RoomStatus is the per-day, per-room status shown on booking calendars.
type RoomStatus string

const (
	StatusAvailable RoomStatus = "available"
	StatusCheckIn   RoomStatus = "checkin"
	StatusOccupied  RoomStatus = "occupied"
	StatusCheckOut  RoomStatus = "checkout"
	StatusExternal  RoomStatus = "external"
)

// AvailabilitySummary aggregates a forward-looking horizon for badges like
// "42 days available".
type AvailabilitySummary struct {
	HorizonDays      int         `json:"horizonDays"`
	AvailableDays    int         `json:"availableDays"`
	PercentAvailable float64     `json:"percentAvailable"`
	OccupiedDates    []time.Time `json:"occupiedDates"`
}

// DateOnly truncates a timestamp to midnight, dropping the wall clock. All
// occupancy math works on whole days.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func sameDay(a, b time.Time) bool {
	return DateOnly(a).Equal(DateOnly(b))
}

// dayWithin reports whether day falls inside the half-open range [start, end).
func dayWithin(day, start, end time.Time) bool {
	d := DateOnly(day)
	return !d.Before(DateOnly(start)) && d.Before(DateOnly(end))
}

// ResolveDay merges manual overrides, reservations and external blocks into
// one status for a room on one day. Precedence, highest first: manual staff
// override, internal reservation, non-past external block. It is pure: the
// outcome depends only on its arguments, which makes calendars deterministic
// to test.
//
// A day equal to a reservation's check-out is reported as "checkout" but is
// still bookable for a new arrival (turnover day); range checks rely on the
// half-open [checkIn, checkOut) interval for that.
func ResolveDay(
	roomType string,
	day time.Time,
	today time.Time,
	overrides []models.RoomManualStatus,
	reservations []models.Reservation,
	blocks []models.ExternalBlockedDate,
) RoomStatus {
	for _, o := range overrides {
		if o.RoomType == roomType {
			return StatusOccupied
		}
	}

	hasCheckIn := false
	hasCheckOut := false
	occupied := false
	for _, r := range reservations {
		if r.RoomType != roomType {
			continue
		}
		switch {
		case sameDay(day, r.CheckIn):
			hasCheckIn = true
		case dayWithin(day, r.CheckIn, r.CheckOut):
			occupied = true
		case sameDay(day, r.CheckOut):
			hasCheckOut = true
		}
	}
	if hasCheckIn {
		return StatusCheckIn
	}
	if occupied {
		return StatusOccupied
	}
	if hasCheckOut {
		return StatusCheckOut
	}

	// Past days are never reported as externally blocked; stale feed rows
	// would otherwise pollute historical calendar views.
	if !DateOnly(day).Before(DateOnly(today)) {
		for _, b := range blocks {
			if b.RoomType == roomType && dayWithin(day, b.StartDate, b.EndDate) {
				return StatusExternal
			}
		}
	}

	return StatusAvailable
}

// IsRangeFree reports whether every night of [checkIn, checkOut) is free for
// the room with respect to reservations and external blocks. Manual overrides
// are a staff display concept and are deliberately ignored here. The caller
// must reject checkOut <= checkIn before calling.
func IsRangeFree(
	roomType string,
	checkIn, checkOut time.Time,
	reservations []models.Reservation,
	blocks []models.ExternalBlockedDate,
) bool {
	for day := DateOnly(checkIn); day.Before(DateOnly(checkOut)); day = day.AddDate(0, 0, 1) {
		for _, r := range reservations {
			if r.RoomType == roomType && dayWithin(day, r.CheckIn, r.CheckOut) {
				return false
			}
		}
		for _, b := range blocks {
			if b.RoomType == roomType && dayWithin(day, b.StartDate, b.EndDate) {
				return false
			}
		}
	}
	return true
}

// Summarize scans the next horizonDays starting today and counts how many are
// bookable. Past days never enter the denominator.
func Summarize(
	roomType string,
	today time.Time,
	horizonDays int,
	reservations []models.Reservation,
	blocks []models.ExternalBlockedDate,
) AvailabilitySummary {
	summary := AvailabilitySummary{HorizonDays: horizonDays}
	if horizonDays <= 0 {
		return summary
	}

	start := DateOnly(today)
	for i := 0; i < horizonDays; i++ {
		day := start.AddDate(0, 0, i)
		if IsRangeFree(roomType, day, day.AddDate(0, 0, 1), reservations, blocks) {
			summary.AvailableDays++
		} else {
			summary.OccupiedDates = append(summary.OccupiedDates, day)
		}
	}
	summary.PercentAvailable = float64(summary.AvailableDays) / float64(horizonDays) * 100
	return summary
}
