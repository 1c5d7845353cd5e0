package models

import (
	"time"

	"gorm.io/gorm"
)

// ExternalCalendar binds one room to one iCal feed from an OTA.
type ExternalCalendar struct {
	gorm.Model
	RoomType     string     `json:"roomType" gorm:"size:32;index;not null"`
	Name         string     `json:"name"`
	Source       string     `json:"source" gorm:"size:32"` // booking.com, airbnb, other
	FeedURL      string     `json:"feedURL" gorm:"not null"`
	LastSyncedAt *time.Time `json:"lastSyncedAt"`

	Blocks []ExternalBlockedDate `json:"blocks,omitempty" gorm:"foreignKey:CalendarID"`
}

// ExternalBlockedDate is one contiguous range [StartDate, EndDate) during
// which a room is taken on a third-party platform. EndDate is exclusive,
// matching iCal DTEND.
type ExternalBlockedDate struct {
	gorm.Model
	CalendarID uint      `json:"calendarID" gorm:"uniqueIndex:idx_calendar_event;not null"`
	ExternalID string    `json:"externalID" gorm:"uniqueIndex:idx_calendar_event;size:255;not null"`
	RoomType   string    `json:"roomType" gorm:"size:32;index;not null"`
	StartDate  time.Time `json:"startDate" gorm:"type:date;not null"`
	EndDate    time.Time `json:"endDate" gorm:"type:date;not null"`
	Source     string    `json:"source" gorm:"size:32"`
	SyncedAt   time.Time `json:"syncedAt"`
}
