// Package expiry converts the expiration chosen on the secret form into
// seconds and formats the time a secret has left.
package expiry

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Unit is the unit the expiration value is expressed in.
type Unit string

const (
	Seconds Unit = "seconds"
	Minutes Unit = "minutes"
	Days    Unit = "days"
)

var ErrUnknownUnit = errors.New("unknown expiration unit")

// Units lists the accepted units in display order.
func Units() []Unit {
	return []Unit{Seconds, Minutes, Days}
}

// ParseUnit accepts a unit name, case-insensitively. Singular forms and the
// short forms s, m and d are also accepted.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "s", "sec", "second", "seconds":
		return Seconds, nil
	case "m", "min", "minute", "minutes":
		return Minutes, nil
	case "d", "day", "days":
		return Days, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownUnit, s)
}

// Duration returns the length of one unit.
func (u Unit) Duration() time.Duration {
	switch u {
	case Minutes:
		return time.Minute
	case Days:
		return 24 * time.Hour
	default:
		return time.Second
	}
}

// ToSeconds converts value in unit u to seconds.
func ToSeconds(value int, u Unit) int64 {
	return int64(value) * int64(u.Duration()/time.Second)
}

// FormatRemaining describes how long remains until expiresAt. Under a minute
// the remainder is given in seconds, otherwise in whole minutes.
func FormatRemaining(expiresAt, now time.Time) string {
	left := expiresAt.Sub(now)
	if left <= 0 {
		return "Expired"
	}

	total := int(left / time.Second)
	minutes := total / 60
	if minutes <= 0 {
		return fmt.Sprintf("%d seconds", total%60)
	}
	return fmt.Sprintf("%d minutes", minutes)
}
