package appointment

import (
	"context"

	"github.com/BruksfildServices01/barber-assistant/internal/audit"
	"github.com/BruksfildServices01/barber-assistant/internal/directory"
	domain "github.com/BruksfildServices01/barber-assistant/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-assistant/internal/models"
	"github.com/BruksfildServices01/barber-assistant/internal/timezone"
)

// CompleteAppointment closes a scheduled appointment as completed or
// no-show. Completion also records the customer's last visit.
type CompleteAppointment struct {
	store directory.Store
	audit Auditor
}

func NewCompleteAppointment(
	store directory.Store,
	audit Auditor,
) *CompleteAppointment {
	return &CompleteAppointment{
		store: store,
		audit: audit,
	}
}

func (uc *CompleteAppointment) Execute(
	ctx context.Context,
	appointmentID string,
	actor string,
) (models.Appointment, error) {
	return uc.close(ctx, appointmentID, domain.StatusCompleted, actor)
}

func (uc *CompleteAppointment) MarkNoShow(
	ctx context.Context,
	appointmentID string,
	actor string,
) (models.Appointment, error) {
	return uc.close(ctx, appointmentID, domain.StatusNoShow, actor)
}

func (uc *CompleteAppointment) close(
	ctx context.Context,
	appointmentID string,
	to domain.Status,
	actor string,
) (models.Appointment, error) {

	now := timezone.Now()

	ap, err := uc.store.UpdateAppointmentStatus(
		ctx,
		appointmentID,
		domain.StatusScheduled,
		to,
		now,
	)
	if err != nil {
		return models.Appointment{}, err
	}

	if to == domain.StatusCompleted {
		if c, err := uc.store.GetCustomer(ctx, ap.CustomerID); err == nil {
			c.LastVisit = &now
			if _, err := uc.store.UpdateCustomer(ctx, c); err != nil {
				return ap, err
			}
		}
	}

	uc.audit.Dispatch(audit.Event{
		Action:   "appointment_" + string(to),
		Entity:   "appointment",
		EntityID: ap.ID,
		Actor:    actor,
	})

	return ap, nil
}
