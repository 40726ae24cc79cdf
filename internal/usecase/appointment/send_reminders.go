package appointment

import (
	"context"

	"github.com/BruksfildServices01/barber-assistant/internal/apperr"
	"github.com/BruksfildServices01/barber-assistant/internal/directory"
	domain "github.com/BruksfildServices01/barber-assistant/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-assistant/internal/notifier"
	"github.com/BruksfildServices01/barber-assistant/internal/validators"
)

// SendReminders queues a reminder for every scheduled appointment on a
// date. It is triggered from outside (operator endpoint or cron).
type SendReminders struct {
	store  directory.Store
	notify Publisher
}

func NewSendReminders(
	store directory.Store,
	notify Publisher,
) *SendReminders {
	return &SendReminders{
		store:  store,
		notify: notify,
	}
}

func (uc *SendReminders) Execute(
	ctx context.Context,
	date string,
) (int, error) {

	if !validators.IsDate(date) {
		return 0, apperr.Validation("invalid_date")
	}

	aps, err := uc.store.ListAppointmentsByDate(ctx, date)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, ap := range aps {
		if !domain.Status(ap.Status).Blocks() {
			continue
		}
		d, err := describe(ctx, uc.store, ap)
		if err != nil {
			return sent, err
		}
		uc.notify.Dispatch(d.event(notifier.KindReminder, notifier.OriginOperator))
		sent++
	}
	return sent, nil
}
