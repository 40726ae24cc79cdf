package conversation

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-assistant/internal/audit"
	"github.com/BruksfildServices01/barber-assistant/internal/availability"
	"github.com/BruksfildServices01/barber-assistant/internal/directory"
	domain "github.com/BruksfildServices01/barber-assistant/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-assistant/internal/models"
	"github.com/BruksfildServices01/barber-assistant/internal/notifier"
	"github.com/BruksfildServices01/barber-assistant/internal/timezone"
	ucAppointment "github.com/BruksfildServices01/barber-assistant/internal/usecase/appointment"
)

type nopAudit struct{}

func (nopAudit) Dispatch(audit.Event) {}

type nopNotify struct{}

func (nopNotify) Dispatch(notifier.Event) {}

type harness struct {
	machine  *Machine
	store    *directory.MemoryStore
	customer models.Customer
	barber   models.Barber
	services []models.Service
}

// Thursday, 2026-10-15, noon business time.
func fixedNow() time.Time {
	return time.Date(2026, 10, 15, 12, 0, 0, 0, timezone.Location())
}

func newHarness(t *testing.T) harness {
	t.Helper()
	ctx := context.Background()

	store, err := directory.NewMemoryStore()
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	slots, err := availability.NewEngine(store, "09:00", "17:00")
	if err != nil {
		t.Fatalf("engine: %v", err)
	}

	h := harness{store: store}

	h.customer, err = store.CreateCustomer(ctx, models.Customer{Name: "Ana", Phone: "+15550001111"})
	if err != nil {
		t.Fatalf("customer: %v", err)
	}
	h.barber, err = store.CreateBarber(ctx, models.Barber{Name: "Mike", Active: true, Specialties: []string{"fade"}})
	if err != nil {
		t.Fatalf("barber: %v", err)
	}
	for _, s := range []models.Service{
		{Name: "Haircut", Price: 25, DurationMin: 45, Active: true},
		{Name: "Beard Trim", Price: 15, DurationMin: 30, Active: true},
		{Name: "Hot Towel Shave", Price: 30, DurationMin: 30, Active: true},
	} {
		created, err := store.CreateService(ctx, s)
		if err != nil {
			t.Fatalf("service: %v", err)
		}
		h.services = append(h.services, created)
	}

	h.machine = NewMachine(
		store,
		slots,
		ucAppointment.NewBookAppointment(store, slots, nopAudit{}, nopNotify{}),
		ucAppointment.NewCancelAppointment(store, nopAudit{}, nopNotify{}),
		ucAppointment.NewListUpcoming(store),
		Settings{BusinessName: "Test Barbers"},
		fixedNow,
		zap.NewNop(),
	)
	return h
}

func (h harness) send(t *testing.T, st *State, text string) string {
	t.Helper()
	out, err := h.machine.Handle(context.Background(), Turn{Customer: h.customer, Text: text}, st)
	if err != nil {
		t.Fatalf("Handle(%q) in %s: %v", text, st.Step, err)
	}
	if len(out) != 1 {
		t.Fatalf("expected one reply, got %d", len(out))
	}
	return out[0]
}

// toConfirmation walks a fresh state to booking_confirmation for
// 2026-10-17 at 09:00 with the first service.
func (h harness) toConfirmation(t *testing.T) *State {
	t.Helper()
	st := NewState(h.customer.Phone)

	if _, err := h.machine.StartBooking(context.Background(), &st); err != nil {
		t.Fatalf("StartBooking: %v", err)
	}
	h.send(t, &st, "1")
	h.send(t, &st, "10/17/2026")
	h.send(t, &st, "1")
	h.send(t, &st, "1")

	if st.Step != StepBookingConfirmation {
		t.Fatalf("expected booking_confirmation, got %s", st.Step)
	}
	return &st
}

func TestBookingFlowCreatesAppointment(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	st := NewState(h.customer.Phone)

	out, err := h.machine.StartBooking(ctx, &st)
	if err != nil {
		t.Fatalf("StartBooking: %v", err)
	}
	if st.Step != StepBookingService || !strings.Contains(out[0], "1. Haircut") {
		t.Fatalf("unexpected start: %s %q", st.Step, out[0])
	}

	if msg := h.send(t, &st, "1"); st.Step != StepBookingDate || !strings.Contains(msg, "You selected: Haircut ($25.00)") {
		t.Fatalf("unexpected service reply: %s %q", st.Step, msg)
	}

	if msg := h.send(t, &st, "10/17/2026"); st.Step != StepBookingTime || !strings.Contains(msg, "1. 09:00") {
		t.Fatalf("unexpected date reply: %s %q", st.Step, msg)
	}

	if msg := h.send(t, &st, "1"); st.Step != StepBookingBarber || !strings.Contains(msg, "1. Mike") {
		t.Fatalf("unexpected time reply: %s %q", st.Step, msg)
	}

	if msg := h.send(t, &st, "1"); st.Step != StepBookingConfirmation || !strings.Contains(msg, "CONFIRM") {
		t.Fatalf("unexpected barber reply: %s %q", st.Step, msg)
	}

	if msg := h.send(t, &st, "confirm"); !strings.Contains(msg, "has been booked") {
		t.Fatalf("unexpected confirmation reply: %q", msg)
	}
	if st.Step != StepIdle || st.Data.ServiceID != "" {
		t.Fatalf("expected reset to idle, got %+v", st)
	}

	aps, _ := h.store.ListAppointmentsByCustomer(ctx, h.customer.ID)
	if len(aps) != 1 {
		t.Fatalf("expected 1 appointment, got %d", len(aps))
	}
	ap := aps[0]
	if ap.Date != "2026-10-17" || ap.Time != "09:00" || ap.DurationMin != 45 || ap.Status != string(domain.StatusScheduled) {
		t.Fatalf("unexpected appointment %+v", ap)
	}
}

func TestBookingServiceOutOfRangeReprompts(t *testing.T) {
	h := newHarness(t)
	st := NewState(h.customer.Phone)
	h.machine.StartBooking(context.Background(), &st)

	msg := h.send(t, &st, "99")
	if st.Step != StepBookingService {
		t.Fatalf("expected booking_service, got %s", st.Step)
	}
	if !strings.Contains(msg, "between 1 and 3") || !strings.Contains(msg, "3. Hot Towel Shave") {
		t.Fatalf("expected range hint and list, got %q", msg)
	}
}

func TestBookingServiceMatchesName(t *testing.T) {
	h := newHarness(t)
	st := NewState(h.customer.Phone)
	h.machine.StartBooking(context.Background(), &st)

	h.send(t, &st, "beard")
	if st.Step != StepBookingDate || st.Data.ServiceID != h.services[1].ID {
		t.Fatalf("expected Beard Trim selected, got %+v", st)
	}
}

func TestBookingDateBoundaries(t *testing.T) {
	cases := []struct {
		in     string
		accept bool
	}{
		{"10/15/2026", false}, // today
		{"10/14/2026", false},
		{"10/16/2026", true},
		{"11/14/2026", true}, // today + 30
		{"11/15/2026", false},
		{"2026-10-20", true},
		{"20-10-2026", true},
		{"next friday", false},
	}

	for _, tc := range cases {
		h := newHarness(t)
		st := NewState(h.customer.Phone)
		h.machine.StartBooking(context.Background(), &st)
		h.send(t, &st, "1")

		h.send(t, &st, tc.in)
		got := st.Step == StepBookingTime
		if got != tc.accept {
			t.Fatalf("%q: accepted=%v, want %v (step %s)", tc.in, got, tc.accept, st.Step)
		}
	}
}

func TestBookingDateClosedDayStays(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.barber.WorkingHours = map[string]*models.TimeRange{"monday": {Start: "09:00", End: "12:00"}}
	if _, err := h.store.UpdateBarber(ctx, h.barber); err != nil {
		t.Fatalf("UpdateBarber: %v", err)
	}

	st := NewState(h.customer.Phone)
	h.machine.StartBooking(ctx, &st)
	h.send(t, &st, "1")

	// 2026-10-20 is a Tuesday.
	msg := h.send(t, &st, "10/20/2026")
	if st.Step != StepBookingDate || !strings.Contains(msg, "closed") {
		t.Fatalf("expected closed-day re-prompt, got %s %q", st.Step, msg)
	}

	msg = h.send(t, &st, "10/19/2026")
	if st.Step != StepBookingTime || !strings.Contains(msg, "6. 11:30") {
		t.Fatalf("expected Monday slots, got %s %q", st.Step, msg)
	}
}

func TestBookingTimeRejectsStaleSelection(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	st := NewState(h.customer.Phone)

	h.machine.StartBooking(ctx, &st)
	h.send(t, &st, "1")
	h.send(t, &st, "10/17/2026")

	if _, err := h.store.ClaimSlot(ctx, models.Appointment{
		CustomerID: h.customer.ID, BarberID: h.barber.ID, ServiceID: h.services[0].ID,
		Date: "2026-10-17", Time: "09:00", DurationMin: 45,
	}); err != nil {
		t.Fatalf("ClaimSlot: %v", err)
	}

	msg := h.send(t, &st, "1")
	if st.Step != StepBookingTime {
		t.Fatalf("expected booking_time, got %s", st.Step)
	}
	if !strings.Contains(msg, "09:00 is no longer available") || st.Data.Slots[0] != "09:30" {
		t.Fatalf("expected fresh list, got %q %v", msg, st.Data.Slots)
	}

	h.send(t, &st, "10:00")
	if st.Step != StepBookingBarber || st.Data.Time != "10:00" {
		t.Fatalf("expected typed time accepted, got %+v", st)
	}
}

func TestBookingTimeOutOfRangeIndex(t *testing.T) {
	h := newHarness(t)
	st := NewState(h.customer.Phone)

	h.machine.StartBooking(context.Background(), &st)
	h.send(t, &st, "1")
	h.send(t, &st, "10/17/2026")

	msg := h.send(t, &st, "40")
	if st.Step != StepBookingTime || !strings.Contains(msg, "between 1 and 16") {
		t.Fatalf("expected range re-prompt, got %s %q", st.Step, msg)
	}
}

func TestConfirmConflictReturnsToTime(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	st := h.toConfirmation(t)

	if _, err := h.store.ClaimSlot(ctx, models.Appointment{
		CustomerID: h.customer.ID, BarberID: h.barber.ID, ServiceID: h.services[1].ID,
		Date: "2026-10-17", Time: "09:00", DurationMin: 30,
	}); err != nil {
		t.Fatalf("ClaimSlot: %v", err)
	}

	msg := h.send(t, st, "CONFIRM")
	if st.Step != StepBookingTime {
		t.Fatalf("expected booking_time, got %s", st.Step)
	}
	if !strings.Contains(msg, "just booked by someone else") || st.Data.Slots[0] != "09:30" {
		t.Fatalf("unexpected conflict reply %q %v", msg, st.Data.Slots)
	}

	aps, _ := h.store.ListAppointmentsByDate(ctx, "2026-10-17")
	if len(aps) != 1 {
		t.Fatalf("expected only the competing appointment, got %d", len(aps))
	}
}

func TestConfirmationRepromptsAndAborts(t *testing.T) {
	h := newHarness(t)
	st := h.toConfirmation(t)

	h.send(t, st, "maybe")
	if st.Step != StepBookingConfirmation {
		t.Fatalf("expected re-prompt, got %s", st.Step)
	}

	h.send(t, st, "cancel")
	if st.Step != StepIdle {
		t.Fatalf("expected idle, got %s", st.Step)
	}
	aps, _ := h.store.ListAppointments(context.Background())
	if len(aps) != 0 {
		t.Fatalf("expected no appointment, got %d", len(aps))
	}
}

func TestCancelAbortsEarlyBookingSteps(t *testing.T) {
	h := newHarness(t)
	st := NewState(h.customer.Phone)
	h.machine.StartBooking(context.Background(), &st)
	h.send(t, &st, "1")

	h.send(t, &st, " Cancel ")
	if st.Step != StepIdle || st.Data.ServiceID != "" {
		t.Fatalf("expected idle, got %+v", st)
	}
}

func TestStartBookingWithIndex(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	st := NewState(h.customer.Phone)
	if _, err := h.machine.StartBookingWith(ctx, &st, 2); err != nil {
		t.Fatalf("StartBookingWith: %v", err)
	}
	if st.Step != StepBookingDate || st.Data.ServiceID != h.services[1].ID {
		t.Fatalf("expected jump to booking_date, got %+v", st)
	}

	st = NewState(h.customer.Phone)
	out, _ := h.machine.StartBookingWith(ctx, &st, 99)
	if st.Step != StepIdle || !strings.Contains(out[0], "between 1 and 3") {
		t.Fatalf("expected idle with range hint, got %s %q", st.Step, out[0])
	}
}

func TestStartBookingWithoutServices(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	for _, s := range h.services {
		h.store.DeleteService(ctx, s.ID)
	}

	st := NewState(h.customer.Phone)
	out, err := h.machine.StartBooking(ctx, &st)
	if err != nil {
		t.Fatalf("StartBooking: %v", err)
	}
	if st.Step != StepIdle || !strings.Contains(out[0], "don't have any services") {
		t.Fatalf("expected idle apology, got %s %q", st.Step, out[0])
	}
}

func TestStartCancelWithoutAppointments(t *testing.T) {
	h := newHarness(t)
	st := NewState(h.customer.Phone)

	out, err := h.machine.StartCancel(context.Background(), h.customer, &st)
	if err != nil {
		t.Fatalf("StartCancel: %v", err)
	}
	if st.Step != StepIdle || !strings.Contains(out[0], "don't have any upcoming appointments") {
		t.Fatalf("expected informational reply, got %s %q", st.Step, out[0])
	}
}

func TestCancelFlow(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	ap, err := h.store.ClaimSlot(ctx, models.Appointment{
		CustomerID: h.customer.ID, BarberID: h.barber.ID, ServiceID: h.services[0].ID,
		Date: "2026-10-20", Time: "10:00", DurationMin: 45,
	})
	if err != nil {
		t.Fatalf("ClaimSlot: %v", err)
	}

	st := NewState(h.customer.Phone)
	out, err := h.machine.StartCancel(ctx, h.customer, &st)
	if err != nil {
		t.Fatalf("StartCancel: %v", err)
	}
	if st.Step != StepCancelSelect || !strings.Contains(out[0], "Tuesday, October 20, 2026 at 10:00") {
		t.Fatalf("unexpected snapshot %s %q", st.Step, out[0])
	}

	if msg := h.send(t, &st, "5"); st.Step != StepCancelSelect || !strings.Contains(msg, "1. Tuesday") {
		t.Fatalf("expected snapshot re-presented, got %s %q", st.Step, msg)
	}

	h.send(t, &st, "1")
	if st.Step != StepCancelConfirmation || st.Data.AppointmentID != ap.ID {
		t.Fatalf("expected cancel_confirmation, got %+v", st)
	}

	h.send(t, &st, "hmm")
	if st.Step != StepCancelConfirmation {
		t.Fatalf("expected re-prompt, got %s", st.Step)
	}

	if msg := h.send(t, &st, "y"); !strings.Contains(msg, "has been cancelled") {
		t.Fatalf("unexpected reply %q", msg)
	}
	if st.Step != StepIdle {
		t.Fatalf("expected idle, got %s", st.Step)
	}

	got, _ := h.store.GetAppointment(ctx, ap.ID)
	if got.Status != string(domain.StatusCancelled) || got.CancelledAt == nil {
		t.Fatalf("expected cancelled appointment, got %+v", got)
	}
}

func TestCancelSnapshotSkipsStartedAppointments(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	// the clock reads 12:00 on 2026-10-15
	for _, clock := range []string{"10:00", "14:00"} {
		if _, err := h.store.ClaimSlot(ctx, models.Appointment{
			CustomerID: h.customer.ID, BarberID: h.barber.ID, ServiceID: h.services[0].ID,
			Date: "2026-10-15", Time: clock, DurationMin: 45,
		}); err != nil {
			t.Fatalf("ClaimSlot %s: %v", clock, err)
		}
	}

	st := NewState(h.customer.Phone)
	if _, err := h.machine.StartCancel(ctx, h.customer, &st); err != nil {
		t.Fatalf("StartCancel: %v", err)
	}
	if len(st.Data.Appointments) != 1 || st.Data.Appointments[0].Time != "14:00" {
		t.Fatalf("expected only the 14:00 appointment, got %+v", st.Data.Appointments)
	}
}

func TestCancelKeepLeavesAppointment(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	ap, _ := h.store.ClaimSlot(ctx, models.Appointment{
		CustomerID: h.customer.ID, BarberID: h.barber.ID, ServiceID: h.services[0].ID,
		Date: "2026-10-20", Time: "10:00", DurationMin: 45,
	})

	st := NewState(h.customer.Phone)
	h.machine.StartCancel(ctx, h.customer, &st)
	h.send(t, &st, "1")
	h.send(t, &st, "KEEP")

	if st.Step != StepIdle {
		t.Fatalf("expected idle, got %s", st.Step)
	}
	got, _ := h.store.GetAppointment(ctx, ap.ID)
	if got.Status != string(domain.StatusScheduled) {
		t.Fatalf("expected appointment kept, got %s", got.Status)
	}
}

func TestCancelAlreadyCancelledResets(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	ap, _ := h.store.ClaimSlot(ctx, models.Appointment{
		CustomerID: h.customer.ID, BarberID: h.barber.ID, ServiceID: h.services[0].ID,
		Date: "2026-10-20", Time: "10:00", DurationMin: 45,
	})

	st := NewState(h.customer.Phone)
	h.machine.StartCancel(ctx, h.customer, &st)
	h.send(t, &st, "1")

	if _, err := h.store.UpdateAppointmentStatus(ctx, ap.ID, domain.StatusScheduled, domain.StatusCancelled, fixedNow()); err != nil {
		t.Fatalf("UpdateAppointmentStatus: %v", err)
	}

	msg := h.send(t, &st, "YES")
	if st.Step != StepIdle || !strings.Contains(msg, "may have already been cancelled") {
		t.Fatalf("unexpected reply %s %q", st.Step, msg)
	}
}

func TestHoursUsesSettings(t *testing.T) {
	h := newHarness(t)
	h.machine.settings.Hours = map[string]string{"monday": "9:00 AM - 5:00 PM"}

	out := h.machine.Hours()[0]
	if !strings.Contains(out, "Monday: 9:00 AM - 5:00 PM") || !strings.Contains(out, "Sunday: Closed") {
		t.Fatalf("unexpected hours %q", out)
	}

	h.machine.settings.Hours = nil
	if out := h.machine.Hours()[0]; !strings.Contains(out, "Tuesday: 09:00 - 17:00") {
		t.Fatalf("unexpected default hours %q", out)
	}
}
