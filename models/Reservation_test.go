package models

import (
	"testing"
	"time"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{ReservationPending, ReservationConfirmed, true},
		{ReservationPending, ReservationCancelled, true},
		{ReservationConfirmed, ReservationCompleted, true},
		{ReservationConfirmed, ReservationCancelled, true},
		{ReservationConfirmed, ReservationArchived, true},
		{ReservationCancelled, ReservationArchived, true},
		// Cancelled and completed bookings must never come back to life,
		// e.g. through a payment callback that arrives after the guest
		// cancelled or the pending window expired.
		{ReservationCancelled, ReservationConfirmed, false},
		{ReservationCancelled, ReservationPending, false},
		{ReservationCompleted, ReservationConfirmed, false},
		{ReservationArchived, ReservationPending, false},
		{ReservationPending, ReservationCompleted, false},
	}
	for _, c := range cases {
		if got := CanTransition(c.from, c.to); got != c.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestIsExpiredPending(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	pendingExpired := Reservation{Status: ReservationPending, ExpiresAt: now.Add(-time.Minute)}
	if !pendingExpired.IsExpiredPending(now) {
		t.Error("pending reservation past its deadline should be expired")
	}

	pendingLive := Reservation{Status: ReservationPending, ExpiresAt: now.Add(time.Minute)}
	if pendingLive.IsExpiredPending(now) {
		t.Error("pending reservation within its window should not be expired")
	}

	confirmed := Reservation{Status: ReservationConfirmed, ExpiresAt: now.Add(-time.Hour)}
	if confirmed.IsExpiredPending(now) {
		t.Error("confirmed reservations never expire")
	}
}
