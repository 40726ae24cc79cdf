package appointment

import (
	"strings"
	"time"

	"github.com/BruksfildServices01/barber-assistant/internal/apperr"
	"github.com/BruksfildServices01/barber-assistant/internal/models"
	"github.com/BruksfildServices01/barber-assistant/internal/validators"
)

// Weekdays in display order.
var Weekdays = []time.Weekday{
	time.Monday,
	time.Tuesday,
	time.Wednesday,
	time.Thursday,
	time.Friday,
	time.Saturday,
	time.Sunday,
}

func WeekdayName(d time.Weekday) string {
	return strings.ToLower(d.String())
}

// Window is a half-open [Start, End) range in minutes after midnight.
type Window struct {
	Start int
	End   int
}

func (w Window) Contains(minute int) bool {
	return minute >= w.Start && minute < w.End
}

func ParseWindow(start, end string) (Window, error) {
	s, err := validators.ParseClock(start)
	if err != nil {
		return Window{}, apperr.Validation("invalid_working_hours")
	}
	e, err := validators.ParseClock(end)
	if err != nil {
		return Window{}, apperr.Validation("invalid_working_hours")
	}
	if s >= e {
		return Window{}, apperr.Validation("invalid_working_hours")
	}
	return Window{Start: s, End: e}, nil
}

// ValidateWorkingHours checks weekday keys and each start < end pair.
func ValidateWorkingHours(hours map[string]*models.TimeRange) error {
	for day, tr := range hours {
		if !isWeekdayName(day) {
			return apperr.Validation("invalid_weekday")
		}
		if tr == nil {
			continue
		}
		if _, err := ParseWindow(tr.Start, tr.End); err != nil {
			return err
		}
	}
	return nil
}

// WorkingWindow resolves the barber's window for day. ok is false when
// the barber has a schedule that leaves day out.
func WorkingWindow(
	b models.Barber,
	day time.Weekday,
	def Window,
) (w Window, ok bool, err error) {

	if len(b.WorkingHours) == 0 {
		return def, true, nil
	}

	tr := b.WorkingHours[WeekdayName(day)]
	if tr == nil {
		return Window{}, false, nil
	}

	w, err = ParseWindow(tr.Start, tr.End)
	if err != nil {
		return Window{}, false, err
	}
	return w, true, nil
}

func isWeekdayName(s string) bool {
	for _, d := range Weekdays {
		if WeekdayName(d) == s {
			return true
		}
	}
	return false
}
