package appointment

import (
	"context"
	"fmt"

	"github.com/BruksfildServices01/barber-assistant/internal/apperr"
	"github.com/BruksfildServices01/barber-assistant/internal/audit"
	"github.com/BruksfildServices01/barber-assistant/internal/directory"
	"github.com/BruksfildServices01/barber-assistant/internal/models"
	"github.com/BruksfildServices01/barber-assistant/internal/notifier"
)

// Auditor and Publisher are satisfied by the async dispatchers.
type Auditor interface {
	Dispatch(ev audit.Event)
}

type Publisher interface {
	Dispatch(ev notifier.Event)
}

// Details is an appointment with the names a human needs to read it.
type Details struct {
	Appointment models.Appointment
	Customer    models.Customer
	Barber      models.Barber
	Service     models.Service
}

// describe loads the related records. Missing references are left
// zero-valued; an appointment outlives a deleted barber. Any other lookup
// failure is returned.
func describe(
	ctx context.Context,
	store directory.Store,
	ap models.Appointment,
) (Details, error) {

	d := Details{Appointment: ap}
	var err error

	if d.Customer, err = store.GetCustomer(ctx, ap.CustomerID); lookupFailed(err) {
		return Details{}, fmt.Errorf("load customer %s: %w", ap.CustomerID, err)
	}
	if d.Barber, err = store.GetBarber(ctx, ap.BarberID); lookupFailed(err) {
		return Details{}, fmt.Errorf("load barber %s: %w", ap.BarberID, err)
	}
	if d.Service, err = store.GetService(ctx, ap.ServiceID); lookupFailed(err) {
		return Details{}, fmt.Errorf("load service %s: %w", ap.ServiceID, err)
	}
	return d, nil
}

// lookupFailed reports a lookup error that is not a plain not-found.
func lookupFailed(err error) bool {
	return err != nil && !apperr.IsKind(err, apperr.KindNotFound)
}

func (d Details) event(kind notifier.Kind, origin string) notifier.Event {
	return notifier.Event{
		Kind:          kind,
		Origin:        origin,
		AppointmentID: d.Appointment.ID,
		Phone:         d.Customer.Phone,
		CustomerName:  d.Customer.Name,
		ServiceName:   d.Service.Name,
		BarberName:    d.Barber.Name,
		Date:          d.Appointment.Date,
		Time:          d.Appointment.Time,
	}
}
