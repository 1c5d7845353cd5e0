package utils

import (
	"crypto/rand"
	"strconv"
	"strings"
	"time"
)

const reservationSuffixCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateReservationNumber builds a human-facing booking reference:
// "CT-" + base36 millisecond timestamp + "-" + 4 random [A-Z0-9] characters.
// The random suffix keeps two numbers generated in the same millisecond
// distinct.
func GenerateReservationNumber() string {
	ts := strings.ToUpper(strconv.FormatInt(time.Now().UnixMilli(), 36))
	return "CT-" + ts + "-" + randomSuffix(4)
}

func randomSuffix(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing means the process is in serious trouble;
		// fall back to a timestamp-derived suffix rather than panic.
		fallback := strings.ToUpper(strconv.FormatInt(time.Now().UnixNano()%1679616, 36))
		for len(fallback) < n {
			fallback = "0" + fallback
		}
		return fallback[:n]
	}
	out := make([]byte, n)
	for i, v := range b {
		out[i] = reservationSuffixCharset[int(v)%len(reservationSuffixCharset)]
	}
	return string(out)
}
