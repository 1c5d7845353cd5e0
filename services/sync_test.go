package services

import (
	"context"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"casa-tiana-server/models"
)

// fakeBlockStore records what the synchronizer stores, per calendar.
type fakeBlockStore struct {
	calendars []models.ExternalCalendar
	replaced  map[uint][]CalendarEvent
	stamped   map[uint]time.Time
}

func newFakeBlockStore(calendars ...models.ExternalCalendar) *fakeBlockStore {
	return &fakeBlockStore{
		calendars: calendars,
		replaced:  make(map[uint][]CalendarEvent),
		stamped:   make(map[uint]time.Time),
	}
}

func (f *fakeBlockStore) ListCalendars() ([]models.ExternalCalendar, error) {
	return f.calendars, nil
}

func (f *fakeBlockStore) ReplaceCalendarBlocks(cal models.ExternalCalendar, events []CalendarEvent) (int, error) {
	f.replaced[cal.ID] = events
	return len(events), nil
}

func (f *fakeBlockStore) StampSynced(calendarID uint, at time.Time) error {
	f.stamped[calendarID] = at
	return nil
}

func testCalendar(id uint, room, name, url string) models.ExternalCalendar {
	cal := models.ExternalCalendar{RoomType: room, Name: name, Source: "booking.com", FeedURL: url}
	cal.ID = id
	return cal
}

func quietLogger() *log.Logger {
	return log.New(os.Stderr, "[sync-test] ", 0)
}

func TestSyncAllPartialFailure(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleFeed)) // carries 2 events
	}))
	defer good.Close()
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>This is not iCal</html>"))
	}))
	defer bad.Close()

	store := newFakeBlockStore(
		testCalendar(1, string(models.RoomSuite), "Booking Suite", good.URL),
		testCalendar(2, string(models.RoomJardim), "Airbnb Jardim", bad.URL),
	)
	sync := NewCalendarSync(store, quietLogger())

	report := sync.SyncAll(context.Background())

	// The malformed feed must not abort the batch: the valid calendar's
	// events are counted, the broken one is reported by name.
	if report.Synced != 2 {
		t.Errorf("Synced = %d, want 2 (events from the valid calendar only)", report.Synced)
	}
	if len(report.Failed) != 1 || report.Failed[0] != "Airbnb Jardim" {
		t.Errorf("Failed = %v, want the broken calendar only", report.Failed)
	}
	if len(store.replaced[1]) != 2 {
		t.Errorf("valid calendar stored %d events, want 2", len(store.replaced[1]))
	}
	if _, stamped := store.stamped[2]; stamped {
		t.Error("failed calendar must not get a lastSyncedAt stamp")
	}
}

func TestSyncCalendarUnreachableFeed(t *testing.T) {
	store := newFakeBlockStore()
	sync := NewCalendarSync(store, quietLogger())

	cal := testCalendar(7, string(models.RoomSuite), "Dead feed", "http://127.0.0.1:1/ical")
	if _, err := sync.SyncCalendar(context.Background(), cal); err == nil {
		t.Fatal("expected an error for an unreachable feed")
	}
	if len(store.replaced) != 0 {
		t.Fatal("nothing should be stored when the fetch fails")
	}
}

func TestSyncCalendarHTTPErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	sync := NewCalendarSync(newFakeBlockStore(), quietLogger())
	if _, err := sync.SyncCalendar(context.Background(), testCalendar(3, string(models.RoomSuite), "Gone", srv.URL)); err == nil {
		t.Fatal("expected an error for a non-200 feed response")
	}
}

func TestSyncCalendarStampsLastSynced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	store := newFakeBlockStore()
	sync := NewCalendarSync(store, quietLogger())

	count, err := sync.SyncCalendar(context.Background(), testCalendar(4, string(models.RoomSuite), "OK", srv.URL))
	if err != nil {
		t.Fatalf("SyncCalendar: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
	if _, ok := store.stamped[4]; !ok {
		t.Error("successful sync must stamp lastSyncedAt")
	}
}
