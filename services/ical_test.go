package services

import (
	"strings"
	"testing"
	"time"

	"casa-tiana-server/models"
)

const sampleFeed = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//Booking.com//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:abc-123@booking.com\r\n" +
	"DTSTART;VALUE=DATE:20261010\r\n" +
	"DTEND;VALUE=DATE:20261013\r\n" +
	"SUMMARY:CLOSED - Not available\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:def-456@booking.com\r\n" +
	"DTSTART;VALUE=DATE:20261101\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func TestParseCalendar(t *testing.T) {
	events, err := ParseCalendar([]byte(sampleFeed))
	if err != nil {
		t.Fatalf("ParseCalendar: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}

	first := events[0]
	if first.UID != "abc-123@booking.com" {
		t.Errorf("UID = %q", first.UID)
	}
	if !first.Start.Equal(date(2026, 10, 10)) || !first.End.Equal(date(2026, 10, 13)) {
		t.Errorf("range = [%s, %s)", first.Start, first.End)
	}

	// Missing DTEND defaults to a one-day event.
	second := events[1]
	if !second.End.Equal(second.Start.AddDate(0, 0, 1)) {
		t.Errorf("event without DTEND should cover one day, got end %s", second.End)
	}
}

func TestParseCalendarFoldedLines(t *testing.T) {
	feed := "BEGIN:VCALENDAR\r\n" +
		"BEGIN:VEVENT\r\n" +
		"UID:folded-\r\n" +
		" event-uid\r\n" +
		"DTSTART:20260501T140000Z\r\n" +
		"DTEND:20260503T110000Z\r\n" +
		"END:VEVENT\r\n" +
		"END:VCALENDAR\r\n"

	events, err := ParseCalendar([]byte(feed))
	if err != nil {
		t.Fatalf("ParseCalendar: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].UID != "folded-event-uid" {
		t.Errorf("folded UID = %q", events[0].UID)
	}
	// Timed stamps are truncated to whole days.
	if !events[0].Start.Equal(date(2026, 5, 1)) || !events[0].End.Equal(date(2026, 5, 3)) {
		t.Errorf("range = [%s, %s)", events[0].Start, events[0].End)
	}
}

func TestParseCalendarRejectsNonICal(t *testing.T) {
	if _, err := ParseCalendar([]byte("<html>Not Found</html>")); err == nil {
		t.Fatal("expected an error for a non-iCal body")
	}
}

func TestParseCalendarDropsInvertedRanges(t *testing.T) {
	feed := "BEGIN:VCALENDAR\r\n" +
		"BEGIN:VEVENT\r\n" +
		"UID:bad\r\n" +
		"DTSTART;VALUE=DATE:20260510\r\n" +
		"DTEND;VALUE=DATE:20260508\r\n" +
		"END:VEVENT\r\n" +
		"END:VCALENDAR\r\n"
	events, err := ParseCalendar([]byte(feed))
	if err != nil {
		t.Fatalf("ParseCalendar: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("inverted range should be dropped, got %d events", len(events))
	}
}

func TestBuildRoomCalendar(t *testing.T) {
	room := models.FindRoom(string(models.RoomSuite))
	res := []models.Reservation{{
		ReservationNumber: "CT-TEST-AB12",
		RoomType:          string(models.RoomSuite),
		CheckIn:           date(2026, 10, 10),
		CheckOut:          date(2026, 10, 13),
		CreatedAt:         time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC),
	}}

	feed := BuildRoomCalendar(room, res)
	for _, want := range []string{
		"BEGIN:VCALENDAR",
		"UID:CT-TEST-AB12@casatiana.cv",
		"DTSTART;VALUE=DATE:20261010",
		"DTEND;VALUE=DATE:20261013",
		"END:VCALENDAR",
	} {
		if !strings.Contains(feed, want) {
			t.Errorf("feed missing %q", want)
		}
	}

	// The export must round-trip through our own parser.
	events, err := ParseCalendar([]byte(feed))
	if err != nil {
		t.Fatalf("exported feed does not parse: %v", err)
	}
	if len(events) != 1 || !events[0].End.Equal(date(2026, 10, 13)) {
		t.Fatalf("round-trip mismatch: %+v", events)
	}
}
