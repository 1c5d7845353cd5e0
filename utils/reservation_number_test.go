package utils

import (
	"regexp"
	"testing"
)

var reservationNumberPattern = regexp.MustCompile(`^CT-[A-Z0-9]+-[A-Z0-9]{4}$`)

func TestGenerateReservationNumberFormat(t *testing.T) {
	for i := 0; i < 100; i++ {
		n := GenerateReservationNumber()
		if !reservationNumberPattern.MatchString(n) {
			t.Fatalf("reservation number %q does not match expected format", n)
		}
	}
}

func TestGenerateReservationNumberUniqueness(t *testing.T) {
	// Generate a burst well inside a single millisecond window; the random
	// suffix must keep them distinct.
	seen := make(map[string]bool)
	for i := 0; i < 30; i++ {
		n := GenerateReservationNumber()
		if seen[n] {
			t.Fatalf("duplicate reservation number generated: %s", n)
		}
		seen[n] = true
	}
}
