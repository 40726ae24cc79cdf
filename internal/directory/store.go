// Package directory holds customers, barbers, services and appointments.
// Every read returns a copy; callers never share memory with the store.
package directory

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/barber-assistant/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-assistant/internal/models"
)

type Store interface {
	// -------- Customer --------
	CreateCustomer(ctx context.Context, c models.Customer) (models.Customer, error)
	GetCustomer(ctx context.Context, id string) (models.Customer, error)
	GetCustomerByPhone(ctx context.Context, phone string) (models.Customer, error)
	UpdateCustomer(ctx context.Context, c models.Customer) (models.Customer, error)
	DeleteCustomer(ctx context.Context, id string) error
	ListCustomers(ctx context.Context) ([]models.Customer, error)

	// -------- Barber --------
	CreateBarber(ctx context.Context, b models.Barber) (models.Barber, error)
	GetBarber(ctx context.Context, id string) (models.Barber, error)
	UpdateBarber(ctx context.Context, b models.Barber) (models.Barber, error)
	DeleteBarber(ctx context.Context, id string) error
	ListBarbers(ctx context.Context) ([]models.Barber, error)

	// -------- Service --------
	CreateService(ctx context.Context, s models.Service) (models.Service, error)
	GetService(ctx context.Context, id string) (models.Service, error)
	UpdateService(ctx context.Context, s models.Service) (models.Service, error)
	DeleteService(ctx context.Context, id string) error
	ListServices(ctx context.Context) ([]models.Service, error)

	// -------- Appointment --------

	// ClaimSlot inserts ap unless a scheduled appointment already holds
	// (barber, date, time), in which case it fails with conflict
	// "slot_taken". It is the only way to create an appointment.
	ClaimSlot(ctx context.Context, ap models.Appointment) (models.Appointment, error)

	GetAppointment(ctx context.Context, id string) (models.Appointment, error)
	UpdateAppointment(ctx context.Context, ap models.Appointment) (models.Appointment, error)
	DeleteAppointment(ctx context.Context, id string) error
	ListAppointments(ctx context.Context) ([]models.Appointment, error)
	ListAppointmentsByCustomer(ctx context.Context, customerID string) ([]models.Appointment, error)
	ListAppointmentsByBarber(ctx context.Context, barberID string) ([]models.Appointment, error)
	ListAppointmentsByDate(ctx context.Context, date string) ([]models.Appointment, error)

	// UpdateAppointmentStatus changes status only if it currently equals
	// from; otherwise it fails with conflict "invalid_state".
	UpdateAppointmentStatus(
		ctx context.Context,
		id string,
		from domain.Status,
		to domain.Status,
		at time.Time,
	) (models.Appointment, error)
}
