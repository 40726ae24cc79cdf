package appointment

import (
	"context"
	"sort"
	"time"

	"github.com/BruksfildServices01/barber-assistant/internal/directory"
	domain "github.com/BruksfildServices01/barber-assistant/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-assistant/internal/timezone"
	"github.com/BruksfildServices01/barber-assistant/internal/validators"
)

// ListUpcoming returns a customer's scheduled appointments that start at
// or after from, earliest first.
type ListUpcoming struct {
	store directory.Store
}

func NewListUpcoming(store directory.Store) *ListUpcoming {
	return &ListUpcoming{store: store}
}

func (uc *ListUpcoming) Execute(
	ctx context.Context,
	customerID string,
	from time.Time,
) ([]Details, error) {

	local := from.In(timezone.Location())
	fromDate := local.Format(validators.DateLayout)
	fromClock := local.Format(validators.ClockLayout)

	aps, err := uc.store.ListAppointmentsByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	out := make([]Details, 0, len(aps))
	for _, ap := range aps {
		if !domain.Status(ap.Status).Blocks() {
			continue
		}
		if ap.Date < fromDate || (ap.Date == fromDate && ap.Time < fromClock) {
			continue
		}
		d, err := describe(ctx, uc.store, ap)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Appointment, out[j].Appointment
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		return a.Time < b.Time
	})
	return out, nil
}
