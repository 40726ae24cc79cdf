package appointment

import (
	"context"
	"sort"

	"github.com/BruksfildServices01/barber-assistant/internal/apperr"
	"github.com/BruksfildServices01/barber-assistant/internal/directory"
	"github.com/BruksfildServices01/barber-assistant/internal/dto"
	"github.com/BruksfildServices01/barber-assistant/internal/validators"
)

type ListAppointmentsByDate struct {
	store directory.Store
}

func NewListAppointmentsByDate(
	store directory.Store,
) *ListAppointmentsByDate {
	return &ListAppointmentsByDate{
		store: store,
	}
}

func (uc *ListAppointmentsByDate) Execute(
	ctx context.Context,
	date string,
) ([]dto.AppointmentListDTO, error) {

	if !validators.IsDate(date) {
		return nil, apperr.Validation("invalid_date")
	}

	appointments, err := uc.store.ListAppointmentsByDate(ctx, date)
	if err != nil {
		return nil, err
	}

	out := make([]dto.AppointmentListDTO, 0, len(appointments))
	for _, ap := range appointments {
		d, err := describe(ctx, uc.store, ap)
		if err != nil {
			return nil, err
		}
		out = append(out, dto.AppointmentListDTO{
			ID:            ap.ID,
			Date:          ap.Date,
			Time:          ap.Time,
			DurationMin:   ap.DurationMin,
			Status:        ap.Status,
			CustomerName:  d.Customer.Name,
			CustomerPhone: d.Customer.Phone,
			BarberName:    d.Barber.Name,
			ServiceName:   d.Service.Name,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Time < out[j].Time
	})
	return out, nil
}
