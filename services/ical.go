package services

import (
	"fmt"
	"strings"
	"time"

	"casa-tiana-server/models"
)

// CalendarEvent is one parsed VEVENT: a half-open [Start, End) date range.
// End follows iCal DTEND semantics and is exclusive.
type CalendarEvent struct {
	UID   string
	Start time.Time
	End   time.Time
}

// ParseCalendar extracts VEVENT date ranges from raw iCal data. It is
// deliberately tolerant: unknown properties are skipped, events without a
// usable date range are dropped. Feeds that are not iCal at all are rejected.
func ParseCalendar(data []byte) ([]CalendarEvent, error) {
	lines := unfoldLines(string(data))
	if !containsLine(lines, "BEGIN:VCALENDAR") {
		return nil, fmt.Errorf("not an iCal feed: missing BEGIN:VCALENDAR")
	}

	var events []CalendarEvent
	var cur *CalendarEvent
	for _, line := range lines {
		switch {
		case line == "BEGIN:VEVENT":
			cur = &CalendarEvent{}
		case line == "END:VEVENT":
			if cur != nil && !cur.Start.IsZero() {
				ev := *cur
				if ev.End.IsZero() {
					// All-day events may omit DTEND; it defaults to one day.
					ev.End = ev.Start.AddDate(0, 0, 1)
				}
				if ev.End.After(ev.Start) {
					if ev.UID == "" {
						ev.UID = fmt.Sprintf("%s-%s", ev.Start.Format("20060102"), ev.End.Format("20060102"))
					}
					events = append(events, ev)
				}
			}
			cur = nil
		case cur == nil:
			continue
		case strings.HasPrefix(line, "UID"):
			cur.UID = propertyValue(line)
		case strings.HasPrefix(line, "DTSTART"):
			if t, ok := parseICalDate(propertyValue(line)); ok {
				cur.Start = t
			}
		case strings.HasPrefix(line, "DTEND"):
			if t, ok := parseICalDate(propertyValue(line)); ok {
				cur.End = t
			}
		}
	}
	return events, nil
}

// unfoldLines normalizes line endings and joins folded lines (continuations
// start with a space or tab, per RFC 5545).
func unfoldLines(data string) []string {
	raw := strings.Split(strings.ReplaceAll(data, "\r\n", "\n"), "\n")
	var lines []string
	for _, l := range raw {
		if (strings.HasPrefix(l, " ") || strings.HasPrefix(l, "\t")) && len(lines) > 0 {
			lines[len(lines)-1] += strings.TrimLeft(l, " \t")
			continue
		}
		lines = append(lines, strings.TrimRight(l, "\r"))
	}
	return lines
}

func containsLine(lines []string, want string) bool {
	for _, l := range lines {
		if l == want {
			return true
		}
	}
	return false
}

// propertyValue splits "NAME;PARAM=X:VALUE" and returns VALUE.
func propertyValue(line string) string {
	if i := strings.Index(line, ":"); i >= 0 {
		return strings.TrimSpace(line[i+1:])
	}
	return ""
}

func parseICalDate(v string) (time.Time, bool) {
	for _, layout := range []string{"20060102", "20060102T150405Z", "20060102T150405"} {
		if t, err := time.Parse(layout, v); err == nil {
			return DateOnly(t), true
		}
	}
	return time.Time{}, false
}

// BuildRoomCalendar renders the room's own reservations as an iCal feed so
// OTAs can import this system's bookings (inverse direction of the sync).
// Events are all-day with exclusive DTEND, matching the reservation's
// [CheckIn, CheckOut) semantics.
func BuildRoomCalendar(room *models.Room, reservations []models.Reservation) string {
	var b strings.Builder
	writeLine := func(s string) {
		b.WriteString(s)
		b.WriteString("\r\n")
	}

	writeLine("BEGIN:VCALENDAR")
	writeLine("VERSION:2.0")
	writeLine("PRODID:-//Casa Tiana//Booking//PT")
	writeLine("CALSCALE:GREGORIAN")
	for _, r := range reservations {
		writeLine("BEGIN:VEVENT")
		writeLine("UID:" + r.ReservationNumber + "@casatiana.cv")
		writeLine("DTSTAMP:" + r.CreatedAt.UTC().Format("20060102T150405Z"))
		writeLine("DTSTART;VALUE=DATE:" + DateOnly(r.CheckIn).Format("20060102"))
		writeLine("DTEND;VALUE=DATE:" + DateOnly(r.CheckOut).Format("20060102"))
		writeLine("SUMMARY:Reserved - " + room.Name)
		writeLine("END:VEVENT")
	}
	writeLine("END:VCALENDAR")
	return b.String()
}
