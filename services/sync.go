package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"casa-tiana-server/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BlockStore persists synced external blocks. CalendarSync talks to it
// through this interface so the sync logic is testable without a database.
type BlockStore interface {
	ListCalendars() ([]models.ExternalCalendar, error)
	ReplaceCalendarBlocks(cal models.ExternalCalendar, events []CalendarEvent) (int, error)
	StampSynced(calendarID uint, at time.Time) error
}

// SyncReport aggregates one sync run. Synced counts events, not calendars:
// staff see "N synced" regardless of how many feeds contributed.
type SyncReport struct {
	Synced int       `json:"synced"`
	Failed []string  `json:"failed,omitempty"`
	RanAt  time.Time `json:"ranAt"`
}

// CalendarSync fetches every configured iCal feed and materializes its events
// as blocked dates. One broken feed never aborts the batch.
type CalendarSync struct {
	Store  BlockStore
	Client *http.Client
	Logger *log.Logger
}

func NewCalendarSync(store BlockStore, lg *log.Logger) *CalendarSync {
	return &CalendarSync{
		Store:  store,
		Client: &http.Client{Timeout: 30 * time.Second},
		Logger: lg,
	}
}

// SyncAll runs the sync for every configured calendar. Per-calendar failures
// are logged and reported by name; the rest of the batch continues.
func (s *CalendarSync) SyncAll(ctx context.Context) SyncReport {
	report := SyncReport{RanAt: time.Now()}

	calendars, err := s.Store.ListCalendars()
	if err != nil {
		s.Logger.Printf("❌ sync: could not list calendars: %v", err)
		report.Failed = append(report.Failed, "calendars")
		return report
	}

	for _, cal := range calendars {
		count, err := s.SyncCalendar(ctx, cal)
		if err != nil {
			s.Logger.Printf("❌ sync failed for %s (%s): %v", cal.Name, cal.Source, err)
			report.Failed = append(report.Failed, cal.Name)
			continue
		}
		s.Logger.Printf("✅ synced %d events for %s (%s)", count, cal.Name, cal.Source)
		report.Synced += count
	}
	return report
}

// SyncCalendar fetches and ingests one feed, returning how many events it
// now holds. Stored blocks are diffed against the feed by external id:
// changed rows are upserted, vanished rows deleted. A concurrent availability
// check never observes an empty block set mid-sync.
func (s *CalendarSync) SyncCalendar(ctx context.Context, cal models.ExternalCalendar) (int, error) {
	body, err := s.fetch(ctx, cal.FeedURL)
	if err != nil {
		return 0, fmt.Errorf("fetch feed: %w", err)
	}

	events, err := ParseCalendar(body)
	if err != nil {
		return 0, fmt.Errorf("parse feed: %w", err)
	}

	count, err := s.Store.ReplaceCalendarBlocks(cal, events)
	if err != nil {
		return 0, fmt.Errorf("store blocks: %w", err)
	}

	if err := s.Store.StampSynced(cal.ID, time.Now()); err != nil {
		s.Logger.Printf("⚠️  could not stamp lastSyncedAt for %s: %v", cal.Name, err)
	}
	return count, nil
}

func (s *CalendarSync) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// GormBlockStore is the production BlockStore.
type GormBlockStore struct {
	DB *gorm.DB
}

func (g *GormBlockStore) ListCalendars() ([]models.ExternalCalendar, error) {
	var calendars []models.ExternalCalendar
	err := g.DB.Find(&calendars).Error
	return calendars, err
}

// ReplaceCalendarBlocks upserts the freshly parsed events on
// (calendar_id, external_id) and deletes rows the feed no longer contains.
func (g *GormBlockStore) ReplaceCalendarBlocks(cal models.ExternalCalendar, events []CalendarEvent) (int, error) {
	now := time.Now()

	uids := make([]string, 0, len(events))
	rows := make([]models.ExternalBlockedDate, 0, len(events))
	for _, ev := range events {
		uids = append(uids, ev.UID)
		rows = append(rows, models.ExternalBlockedDate{
			CalendarID: cal.ID,
			ExternalID: ev.UID,
			RoomType:   cal.RoomType,
			StartDate:  ev.Start,
			EndDate:    ev.End,
			Source:     cal.Source,
			SyncedAt:   now,
		})
	}

	err := g.DB.Transaction(func(tx *gorm.DB) error {
		if len(rows) > 0 {
			if err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "calendar_id"}, {Name: "external_id"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"room_type", "start_date", "end_date", "source", "synced_at", "updated_at",
				}),
			}).Create(&rows).Error; err != nil {
				return err
			}
		}

		del := tx.Where("calendar_id = ?", cal.ID)
		if len(uids) > 0 {
			del = del.Where("external_id NOT IN ?", uids)
		}
		return del.Delete(&models.ExternalBlockedDate{}).Error
	})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (g *GormBlockStore) StampSynced(calendarID uint, at time.Time) error {
	return g.DB.Model(&models.ExternalCalendar{}).
		Where("id = ?", calendarID).
		Update("last_synced_at", at).Error
}
