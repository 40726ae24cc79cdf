// Package availability derives bookable slots from barber working hours
// and the appointments already held.
package availability

import (
	"context"
	"sort"
	"time"

	"github.com/BruksfildServices01/barber-assistant/internal/apperr"
	domain "github.com/BruksfildServices01/barber-assistant/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-assistant/internal/models"
	"github.com/BruksfildServices01/barber-assistant/internal/validators"
)

// SlotStep is the booking cadence.
const SlotStep = 30

type Reason string

const (
	ReasonNone             Reason = ""
	ReasonBarberNotWorking Reason = "barber_not_working"
	ReasonBarberInactive   Reason = "barber_inactive"
	ReasonFullyBooked      Reason = "fully_booked"
	ReasonNoBarbers        Reason = "no_barbers"
)

type OpenSlots struct {
	Date     string   `json:"date"`
	BarberID string   `json:"barber_id,omitempty"`
	Slots    []string `json:"slots"`
	Reason   Reason   `json:"reason,omitempty"`
}

// Reader is the slice of the directory the engine needs.
type Reader interface {
	GetBarber(ctx context.Context, id string) (models.Barber, error)
	ListBarbers(ctx context.Context) ([]models.Barber, error)
	ListAppointmentsByDate(ctx context.Context, date string) ([]models.Appointment, error)
}

type Engine struct {
	store  Reader
	window domain.Window
}

// NewEngine builds an engine whose default window applies to barbers
// without their own schedule.
func NewEngine(store Reader, open, close string) (*Engine, error) {
	w, err := domain.ParseWindow(open, close)
	if err != nil {
		return nil, err
	}
	return &Engine{store: store, window: w}, nil
}

func (e *Engine) DefaultWindow() domain.Window {
	return e.window
}

// ======================================================
// QUERIES
// ======================================================

// IsSlotFree with a barber reports whether that barber has no scheduled
// appointment at date/clock. Without a barber it reports whether at least
// one active barber works at that time and is unbooked.
func (e *Engine) IsSlotFree(
	ctx context.Context,
	date string,
	clock string,
	barberID string,
) (bool, error) {

	day, clock, err := normalize(date, clock)
	if err != nil {
		return false, err
	}

	booked, err := e.bookedByBarber(ctx, date)
	if err != nil {
		return false, err
	}

	if barberID != "" {
		return !booked[barberID][clock], nil
	}

	free, err := e.freeBarbers(ctx, day, clock, booked)
	if err != nil {
		return false, err
	}
	return len(free) > 0, nil
}

// FreeBarbers lists active barbers working and unbooked at date/clock.
func (e *Engine) FreeBarbers(
	ctx context.Context,
	date string,
	clock string,
) ([]models.Barber, error) {

	day, clock, err := normalize(date, clock)
	if err != nil {
		return nil, err
	}

	booked, err := e.bookedByBarber(ctx, date)
	if err != nil {
		return nil, err
	}
	return e.freeBarbers(ctx, day, clock, booked)
}

// ListOpenSlots returns the free 30-minute starts for date, for one
// barber or across all active barbers. Slots is never nil; Reason
// explains an empty list.
func (e *Engine) ListOpenSlots(
	ctx context.Context,
	date string,
	barberID string,
) (OpenSlots, error) {

	out := OpenSlots{Date: date, BarberID: barberID, Slots: []string{}}

	if !validators.IsDate(date) {
		return out, apperr.Validation("invalid_date")
	}
	day, _ := time.Parse(validators.DateLayout, date)

	booked, err := e.bookedByBarber(ctx, date)
	if err != nil {
		return out, err
	}

	var barbers []models.Barber
	if barberID != "" {
		b, err := e.store.GetBarber(ctx, barberID)
		if err != nil {
			return out, err
		}
		if !b.Active {
			out.Reason = ReasonBarberInactive
			return out, nil
		}
		barbers = []models.Barber{b}
	} else {
		barbers, err = e.activeBarbers(ctx)
		if err != nil {
			return out, err
		}
		if len(barbers) == 0 {
			out.Reason = ReasonNoBarbers
			return out, nil
		}
	}

	union := make(map[int]bool)
	working := false

	for _, b := range barbers {
		w, ok, err := domain.WorkingWindow(b, day.Weekday(), e.window)
		if err != nil {
			return out, err
		}
		if !ok {
			continue
		}
		working = true

		for m := w.Start; m < w.End; m += SlotStep {
			if !booked[b.ID][validators.FormatClock(m)] {
				union[m] = true
			}
		}
	}

	if !working {
		out.Reason = ReasonBarberNotWorking
		return out, nil
	}

	starts := make([]int, 0, len(union))
	for m := range union {
		starts = append(starts, m)
	}
	sort.Ints(starts)
	for _, m := range starts {
		out.Slots = append(out.Slots, validators.FormatClock(m))
	}

	if len(out.Slots) == 0 {
		out.Reason = ReasonFullyBooked
	}
	return out, nil
}

// BarberWorksAt reports whether clock on date falls inside the barber's
// window and on the slot grid.
func (e *Engine) BarberWorksAt(b models.Barber, date, clock string) (bool, error) {
	day, clock, err := normalize(date, clock)
	if err != nil {
		return false, err
	}
	return e.worksAt(b, day, clock)
}

// ======================================================
// internals
// ======================================================

func (e *Engine) worksAt(b models.Barber, day time.Time, clock string) (bool, error) {
	w, ok, err := domain.WorkingWindow(b, day.Weekday(), e.window)
	if err != nil || !ok {
		return false, err
	}

	m, err := validators.ParseClock(clock)
	if err != nil {
		return false, apperr.Validation("invalid_time")
	}
	return w.Contains(m) && (m-w.Start)%SlotStep == 0, nil
}

func (e *Engine) freeBarbers(
	ctx context.Context,
	day time.Time,
	clock string,
	booked map[string]map[string]bool,
) ([]models.Barber, error) {

	barbers, err := e.activeBarbers(ctx)
	if err != nil {
		return nil, err
	}

	free := make([]models.Barber, 0, len(barbers))
	for _, b := range barbers {
		ok, err := e.worksAt(b, day, clock)
		if err != nil {
			return nil, err
		}
		if ok && !booked[b.ID][clock] {
			free = append(free, b)
		}
	}
	return free, nil
}

func (e *Engine) activeBarbers(ctx context.Context) ([]models.Barber, error) {
	all, err := e.store.ListBarbers(ctx)
	if err != nil {
		return nil, err
	}

	active := all[:0]
	for _, b := range all {
		if b.Active {
			active = append(active, b)
		}
	}
	return active, nil
}

// bookedByBarber indexes scheduled appointments on date by barber and
// start time.
func (e *Engine) bookedByBarber(ctx context.Context, date string) (map[string]map[string]bool, error) {
	aps, err := e.store.ListAppointmentsByDate(ctx, date)
	if err != nil {
		return nil, err
	}

	booked := make(map[string]map[string]bool)
	for _, ap := range aps {
		if !domain.Status(ap.Status).Blocks() {
			continue
		}
		if booked[ap.BarberID] == nil {
			booked[ap.BarberID] = make(map[string]bool)
		}
		booked[ap.BarberID][ap.Time] = true
	}
	return booked, nil
}

func normalize(date, clock string) (time.Time, string, error) {
	day, err := time.Parse(validators.DateLayout, date)
	if err != nil {
		return time.Time{}, "", apperr.Validation("invalid_date")
	}
	clock, err = validators.NormalizeClock(clock)
	if err != nil {
		return time.Time{}, "", apperr.Validation("invalid_time")
	}
	return day, clock, nil
}
