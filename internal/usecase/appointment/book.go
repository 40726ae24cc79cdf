package appointment

import (
	"context"

	"github.com/BruksfildServices01/barber-assistant/internal/apperr"
	"github.com/BruksfildServices01/barber-assistant/internal/audit"
	"github.com/BruksfildServices01/barber-assistant/internal/availability"
	"github.com/BruksfildServices01/barber-assistant/internal/directory"
	domain "github.com/BruksfildServices01/barber-assistant/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-assistant/internal/models"
	"github.com/BruksfildServices01/barber-assistant/internal/notifier"
)

// ======================================================
// INPUT
// ======================================================

type BookAppointmentInput struct {
	CustomerID string
	ServiceID  string
	BarberID   string

	Date  string
	Time  string
	Notes string
}

// ======================================================
// USE CASE
// ======================================================

type BookAppointment struct {
	store  directory.Store
	slots  *availability.Engine
	audit  Auditor
	notify Publisher
}

func NewBookAppointment(
	store directory.Store,
	slots *availability.Engine,
	audit Auditor,
	notify Publisher,
) *BookAppointment {
	return &BookAppointment{
		store:  store,
		slots:  slots,
		audit:  audit,
		notify: notify,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *BookAppointment) Execute(
	ctx context.Context,
	in BookAppointmentInput,
) (Details, error) {

	// --------------------------------------------------
	// 1. Service
	// --------------------------------------------------
	service, err := uc.store.GetService(ctx, in.ServiceID)
	if err != nil {
		return Details{}, err
	}
	if !service.Active {
		return Details{}, apperr.NotFound("service")
	}

	// --------------------------------------------------
	// 2. Barber
	// --------------------------------------------------
	barber, err := uc.store.GetBarber(ctx, in.BarberID)
	if err != nil {
		return Details{}, err
	}
	if !barber.Active {
		return Details{}, apperr.NotFound("barber")
	}

	// --------------------------------------------------
	// 3. Working hours
	// --------------------------------------------------
	ok, err := uc.slots.BarberWorksAt(barber, in.Date, in.Time)
	if err != nil {
		return Details{}, err
	}
	if !ok {
		return Details{}, apperr.Conflict("outside_working_hours")
	}

	customer, err := uc.store.GetCustomer(ctx, in.CustomerID)
	if err != nil {
		return Details{}, err
	}

	// --------------------------------------------------
	// 4. Claim (conflict check and insert are one step)
	// --------------------------------------------------
	ap, err := uc.store.ClaimSlot(ctx, models.Appointment{
		CustomerID:  customer.ID,
		BarberID:    barber.ID,
		ServiceID:   service.ID,
		Date:        in.Date,
		Time:        in.Time,
		DurationMin: service.DurationMin,
		Status:      string(domain.InitialStatus()),
		Notes:       in.Notes,
	})
	if err != nil {
		return Details{}, err
	}

	d := Details{
		Appointment: ap,
		Customer:    customer,
		Barber:      barber,
		Service:     service,
	}

	// --------------------------------------------------
	// 5. Audit + notification
	// --------------------------------------------------
	uc.audit.Dispatch(audit.Event{
		Action:   "appointment_created",
		Entity:   "appointment",
		EntityID: ap.ID,
		Actor:    "customer:" + customer.ID,
		Metadata: map[string]string{"date": ap.Date, "time": ap.Time, "barber_id": ap.BarberID},
	})
	uc.notify.Dispatch(d.event(notifier.KindBooked, notifier.OriginChat))

	return d, nil
}
