package storeauth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// dateLayout is the UTC calendar-day stamp baked into every token. The
// DD/MM/YYYY format and the dash-joined concatenation below are a wire
// contract shared with the system minting deep links; both sides must match
// byte-for-byte.
const dateLayout = "02/01/2006"

var (
	ErrEmptyStoreID = errors.New("store id must not be empty")
	ErrEmptySecret  = errors.New("secret phrase is not configured")
)

// DayStamp renders the UTC calendar day of t in the token date format.
func DayStamp(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

// Derive computes the day token for storeID on the calendar day of `day`:
// lowercase hex SHA-256 over "storeID-DD/MM/YYYY-secret". It is a pure
// function of its inputs, which is what lets a separate system mint a link
// without a database round trip.
func Derive(storeID, secret string, day time.Time) (string, error) {
	if storeID == "" {
		return "", ErrEmptyStoreID
	}
	if secret == "" {
		return "", ErrEmptySecret
	}
	payload := fmt.Sprintf("%s-%s-%s", storeID, DayStamp(day), secret)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:]), nil
}

// ExpiresAt returns the instant the token derived for `day` stops being
// valid: 23:59:59.999 UTC of that same calendar day.
func ExpiresAt(day time.Time) time.Time {
	d := day.UTC()
	return time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, 999_000_000, time.UTC)
}

// Verify recomputes the token for storeID at `now` and compares it with the
// supplied one in constant time. A stale token simply fails equality; no
// revocation list is needed.
func Verify(storeID, secret, supplied string, now time.Time) (bool, error) {
	expected, err := Derive(storeID, secret, now)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(supplied)) == 1, nil
}
