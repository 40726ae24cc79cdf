package appointment

import (
	"context"

	"github.com/BruksfildServices01/barber-assistant/internal/apperr"
	"github.com/BruksfildServices01/barber-assistant/internal/audit"
	"github.com/BruksfildServices01/barber-assistant/internal/directory"
	domain "github.com/BruksfildServices01/barber-assistant/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-assistant/internal/notifier"
	"github.com/BruksfildServices01/barber-assistant/internal/timezone"
)

type CancelAppointmentInput struct {
	AppointmentID string

	// CustomerID, when set, must own the appointment.
	CustomerID string

	Origin string
	Actor  string
}

type CancelAppointment struct {
	store  directory.Store
	audit  Auditor
	notify Publisher
}

func NewCancelAppointment(
	store directory.Store,
	audit Auditor,
	notify Publisher,
) *CancelAppointment {
	return &CancelAppointment{
		store:  store,
		audit:  audit,
		notify: notify,
	}
}

func (uc *CancelAppointment) Execute(
	ctx context.Context,
	in CancelAppointmentInput,
) (Details, error) {

	ap, err := uc.store.GetAppointment(ctx, in.AppointmentID)
	if err != nil {
		return Details{}, err
	}
	if in.CustomerID != "" && ap.CustomerID != in.CustomerID {
		return Details{}, apperr.NotFound("appointment")
	}

	ap, err = uc.store.UpdateAppointmentStatus(
		ctx,
		ap.ID,
		domain.StatusScheduled,
		domain.StatusCancelled,
		timezone.Now(),
	)
	if err != nil {
		return Details{}, err
	}

	uc.audit.Dispatch(audit.Event{
		Action:   "appointment_cancelled",
		Entity:   "appointment",
		EntityID: ap.ID,
		Actor:    in.Actor,
	})

	// the cancellation is already committed; only the notice depends on this
	d, err := describe(ctx, uc.store, ap)
	if err != nil {
		return Details{Appointment: ap}, err
	}
	uc.notify.Dispatch(d.event(notifier.KindCancelled, in.Origin))

	return d, nil
}
