package directory

import (
	"strings"

	"github.com/BruksfildServices01/barber-assistant/internal/apperr"
	domain "github.com/BruksfildServices01/barber-assistant/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-assistant/internal/models"
	"github.com/BruksfildServices01/barber-assistant/internal/validators"
)

// --------------------------------------------------
// Boundary validation shared by every Store
// --------------------------------------------------

func validateCustomer(c *models.Customer) error {
	c.Phone = strings.TrimSpace(c.Phone)
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)

	if !validators.IsPhone(c.Phone) {
		return apperr.Validation("invalid_phone")
	}
	if c.Email != "" && !validators.IsEmail(c.Email) {
		return apperr.Validation("invalid_email")
	}
	return nil
}

func validateBarber(b *models.Barber) error {
	b.Name = strings.TrimSpace(b.Name)
	if b.Name == "" {
		return apperr.Validation("missing_name")
	}
	if b.Email != "" && !validators.IsEmail(b.Email) {
		return apperr.Validation("invalid_email")
	}
	return domain.ValidateWorkingHours(b.WorkingHours)
}

func validateService(s *models.Service) error {
	s.Name = strings.TrimSpace(s.Name)
	if s.Name == "" {
		return apperr.Validation("missing_name")
	}
	if s.Price < 0 {
		return apperr.Validation("invalid_price")
	}
	if s.DurationMin <= 0 {
		return apperr.Validation("invalid_duration")
	}
	return nil
}

func validateAppointment(ap *models.Appointment) error {
	if ap.CustomerID == "" || ap.BarberID == "" || ap.ServiceID == "" {
		return apperr.Validation("missing_reference")
	}
	if !validators.IsDate(ap.Date) {
		return apperr.Validation("invalid_date")
	}

	clock, err := validators.NormalizeClock(ap.Time)
	if err != nil {
		return apperr.Validation("invalid_time")
	}
	ap.Time = clock

	if ap.DurationMin <= 0 {
		return apperr.Validation("invalid_duration")
	}

	if ap.Status == "" {
		ap.Status = string(domain.InitialStatus())
	}
	if !domain.Status(ap.Status).Valid() {
		return apperr.Validation("invalid_status")
	}
	return nil
}

// sameSlot reports whether a and b compete for the same chair.
func sameSlot(a, b models.Appointment) bool {
	return a.BarberID == b.BarberID && a.Date == b.Date && a.Time == b.Time
}
