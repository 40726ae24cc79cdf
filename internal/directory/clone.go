package directory

import (
	"time"

	"github.com/BruksfildServices01/barber-assistant/internal/models"
)

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneCustomer(c models.Customer) models.Customer {
	c.LastVisit = cloneTime(c.LastVisit)
	return c
}

func cloneBarber(b models.Barber) models.Barber {
	if b.Specialties != nil {
		b.Specialties = append([]string(nil), b.Specialties...)
	}
	if b.WorkingHours != nil {
		hours := make(map[string]*models.TimeRange, len(b.WorkingHours))
		for day, tr := range b.WorkingHours {
			if tr == nil {
				hours[day] = nil
				continue
			}
			v := *tr
			hours[day] = &v
		}
		b.WorkingHours = hours
	}
	return b
}

func cloneService(s models.Service) models.Service {
	return s
}

func cloneAppointment(ap models.Appointment) models.Appointment {
	ap.CancelledAt = cloneTime(ap.CancelledAt)
	ap.CompletedAt = cloneTime(ap.CompletedAt)
	return ap
}
