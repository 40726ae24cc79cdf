package timezone

import (
	"fmt"
	"sync/atomic"
	"time"
)

const DefaultTimezone = "America/New_York"

var business atomic.Pointer[time.Location]

func IsValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

// Configure sets the business timezone used by Location and Now.
func Configure(tz string) error {
	if !IsValid(tz) {
		return fmt.Errorf("invalid timezone %q", tz)
	}
	loc, _ := time.LoadLocation(tz)
	business.Store(loc)
	return nil
}

// Location returns the business timezone, falling back to DefaultTimezone
// (or UTC when tzdata is missing).
func Location() *time.Location {
	if loc := business.Load(); loc != nil {
		return loc
	}
	if loc, err := time.LoadLocation(DefaultTimezone); err == nil {
		return loc
	}
	return time.UTC
}

func Now() time.Time {
	return time.Now().In(Location())
}

// Today returns midnight of t's calendar day in the business timezone.
func Today(t time.Time) time.Time {
	t = t.In(Location())
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, Location())
}
