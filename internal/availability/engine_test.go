package availability

import (
	"context"
	"testing"
	"time"

	"github.com/BruksfildServices01/barber-assistant/internal/apperr"
	"github.com/BruksfildServices01/barber-assistant/internal/directory"
	domain "github.com/BruksfildServices01/barber-assistant/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-assistant/internal/models"
)

// 2026-10-19 is a Monday.
const monday = "2026-10-19"

type env struct {
	store    *directory.MemoryStore
	engine   *Engine
	customer models.Customer
	service  models.Service
}

func newEnv(t *testing.T) env {
	t.Helper()
	ctx := context.Background()

	store, err := directory.NewMemoryStore()
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	engine, err := NewEngine(store, "09:00", "17:00")
	if err != nil {
		t.Fatalf("engine: %v", err)
	}

	c, _ := store.CreateCustomer(ctx, models.Customer{Phone: "+15550003333"})
	svc, _ := store.CreateService(ctx, models.Service{Name: "Haircut", DurationMin: 30, Active: true})

	return env{store: store, engine: engine, customer: c, service: svc}
}

func (e env) barber(t *testing.T, b models.Barber) models.Barber {
	t.Helper()
	created, err := e.store.CreateBarber(context.Background(), b)
	if err != nil {
		t.Fatalf("CreateBarber: %v", err)
	}
	return created
}

func (e env) book(t *testing.T, barberID, date, clock string) {
	t.Helper()
	_, err := e.store.ClaimSlot(context.Background(), models.Appointment{
		CustomerID:  e.customer.ID,
		BarberID:    barberID,
		ServiceID:   e.service.ID,
		Date:        date,
		Time:        clock,
		DurationMin: 30,
	})
	if err != nil {
		t.Fatalf("ClaimSlot: %v", err)
	}
}

func contains(slots []string, s string) bool {
	for _, v := range slots {
		if v == s {
			return true
		}
	}
	return false
}

func TestDefaultWindowIsHalfOpen(t *testing.T) {
	e := newEnv(t)
	b := e.barber(t, models.Barber{Name: "Mike", Active: true})

	got, err := e.engine.ListOpenSlots(context.Background(), monday, b.ID)
	if err != nil {
		t.Fatalf("ListOpenSlots: %v", err)
	}

	if len(got.Slots) != 16 {
		t.Fatalf("expected 16 slots, got %d: %v", len(got.Slots), got.Slots)
	}
	if got.Slots[0] != "09:00" || got.Slots[15] != "16:30" {
		t.Fatalf("unexpected bounds %v", got.Slots)
	}
	if contains(got.Slots, "17:00") {
		t.Fatalf("closing time must not be offered")
	}
}

func TestBookedSlotIsExcluded(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	b := e.barber(t, models.Barber{Name: "Mike", Active: true})

	e.book(t, b.ID, monday, "10:00")

	got, _ := e.engine.ListOpenSlots(ctx, monday, b.ID)
	if contains(got.Slots, "10:00") {
		t.Fatalf("booked slot offered: %v", got.Slots)
	}

	free, err := e.engine.IsSlotFree(ctx, monday, "10:00", b.ID)
	if err != nil || free {
		t.Fatalf("IsSlotFree = %v, %v", free, err)
	}
	free, _ = e.engine.IsSlotFree(ctx, monday, "10:30", b.ID)
	if !free {
		t.Fatalf("10:30 should be free")
	}
}

func TestIsSlotFreeTogglesWithCancellation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	b := e.barber(t, models.Barber{Name: "Mike", Active: true})

	check := func(want bool) {
		t.Helper()
		for _, barberID := range []string{b.ID, ""} {
			free, err := e.engine.IsSlotFree(ctx, monday, "10:00", barberID)
			if err != nil || free != want {
				t.Fatalf("IsSlotFree(barber=%q) = %v, %v; want %v", barberID, free, err, want)
			}
		}
		open, err := e.engine.ListOpenSlots(ctx, monday, "")
		if err != nil || contains(open.Slots, "10:00") != want {
			t.Fatalf("ListOpenSlots offers 10:00 = %v, %v; want %v", contains(open.Slots, "10:00"), err, want)
		}
	}

	check(true)

	e.book(t, b.ID, monday, "10:00")
	check(false)

	aps, err := e.store.ListAppointmentsByDate(ctx, monday)
	if err != nil || len(aps) != 1 {
		t.Fatalf("expected one appointment, got %d %v", len(aps), err)
	}
	if _, err := e.store.UpdateAppointmentStatus(ctx, aps[0].ID, domain.StatusScheduled, domain.StatusCancelled, time.Now()); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	check(true)
}

func TestBarberNotWorkingReason(t *testing.T) {
	e := newEnv(t)
	b := e.barber(t, models.Barber{
		Name:   "Mike",
		Active: true,
		WorkingHours: map[string]*models.TimeRange{
			"tuesday": {Start: "10:00", End: "12:00"},
		},
	})

	got, err := e.engine.ListOpenSlots(context.Background(), monday, b.ID)
	if err != nil {
		t.Fatalf("ListOpenSlots: %v", err)
	}
	if len(got.Slots) != 0 || got.Reason != ReasonBarberNotWorking {
		t.Fatalf("unexpected result %+v", got)
	}

	tuesday, _ := e.engine.ListOpenSlots(context.Background(), "2026-10-20", b.ID)
	if len(tuesday.Slots) != 4 || tuesday.Slots[3] != "11:30" {
		t.Fatalf("unexpected tuesday slots %v", tuesday.Slots)
	}
}

func TestUnionAcrossBarbers(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.barber(t, models.Barber{Name: "A", Active: true})
	b := e.barber(t, models.Barber{Name: "B", Active: true})

	e.book(t, a.ID, monday, "09:00")

	got, _ := e.engine.ListOpenSlots(ctx, monday, "")
	if !contains(got.Slots, "09:00") {
		t.Fatalf("09:00 still free with barber B: %v", got.Slots)
	}
	free, _ := e.engine.IsSlotFree(ctx, monday, "09:00", "")
	if !free {
		t.Fatalf("expected free with one barber remaining")
	}

	e.book(t, b.ID, monday, "09:00")

	got, _ = e.engine.ListOpenSlots(ctx, monday, "")
	if contains(got.Slots, "09:00") {
		t.Fatalf("09:00 fully booked but offered: %v", got.Slots)
	}
	free, _ = e.engine.IsSlotFree(ctx, monday, "09:00", "")
	if free {
		t.Fatalf("expected no free barber at 09:00")
	}
}

func TestInactiveBarbersIgnored(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	b := e.barber(t, models.Barber{Name: "Off", Active: false})

	got, _ := e.engine.ListOpenSlots(ctx, monday, "")
	if got.Reason != ReasonNoBarbers || len(got.Slots) != 0 {
		t.Fatalf("unexpected result %+v", got)
	}

	got, _ = e.engine.ListOpenSlots(ctx, monday, b.ID)
	if got.Reason != ReasonBarberInactive {
		t.Fatalf("unexpected reason %q", got.Reason)
	}
}

func TestFullyBooked(t *testing.T) {
	e := newEnv(t)
	b := e.barber(t, models.Barber{
		Name:         "Mike",
		Active:       true,
		WorkingHours: map[string]*models.TimeRange{"monday": {Start: "09:00", End: "10:00"}},
	})
	e.book(t, b.ID, monday, "09:00")
	e.book(t, b.ID, monday, "09:30")

	got, _ := e.engine.ListOpenSlots(context.Background(), monday, b.ID)
	if got.Reason != ReasonFullyBooked || got.Slots == nil || len(got.Slots) != 0 {
		t.Fatalf("unexpected result %+v", got)
	}
}

func TestFreeBarbersRespectsHours(t *testing.T) {
	e := newEnv(t)
	e.barber(t, models.Barber{Name: "Early", Active: true, WorkingHours: map[string]*models.TimeRange{"monday": {Start: "08:00", End: "12:00"}}})
	late := e.barber(t, models.Barber{Name: "Late", Active: true, WorkingHours: map[string]*models.TimeRange{"monday": {Start: "12:00", End: "20:00"}}})

	free, err := e.engine.FreeBarbers(context.Background(), monday, "18:00")
	if err != nil {
		t.Fatalf("FreeBarbers: %v", err)
	}
	if len(free) != 1 || free[0].ID != late.ID {
		t.Fatalf("unexpected free barbers %+v", free)
	}
}

func TestBarberWorksAt(t *testing.T) {
	e := newEnv(t)
	b := e.barber(t, models.Barber{Name: "Mike", Active: true})

	cases := map[string]bool{"09:00": true, "16:30": true, "17:00": false, "08:30": false, "09:15": false}
	for clock, want := range cases {
		got, err := e.engine.BarberWorksAt(b, monday, clock)
		if err != nil || got != want {
			t.Fatalf("BarberWorksAt(%s) = %v, %v; want %v", clock, got, err, want)
		}
	}
}

func TestMalformedInput(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	if _, err := e.engine.ListOpenSlots(ctx, "10/19/2026", ""); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := e.engine.IsSlotFree(ctx, monday, "25:00", ""); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestNewEngineRejectsBadWindow(t *testing.T) {
	if _, err := NewEngine(nil, "17:00", "09:00"); err == nil {
		t.Fatalf("expected error for inverted window")
	}
}
