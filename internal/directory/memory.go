package directory

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/barber-assistant/internal/apperr"
	domain "github.com/BruksfildServices01/barber-assistant/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-assistant/internal/models"
)

// MemoryStore keeps every collection in memory behind its own lock and,
// when a data dir is set, mirrors each collection to <dir>/<name>.json.
type MemoryStore struct {
	customers    *collection[models.Customer]
	barbers      *collection[models.Barber]
	services     *collection[models.Service]
	appointments *collection[models.Appointment]

	now func() time.Time
}

type MemoryOption func(*memoryOptions)

type memoryOptions struct {
	dir string
	now func() time.Time
}

// WithDataDir enables JSON file persistence under dir.
func WithDataDir(dir string) MemoryOption {
	return func(o *memoryOptions) { o.dir = dir }
}

func WithClock(now func() time.Time) MemoryOption {
	return func(o *memoryOptions) { o.now = now }
}

func NewMemoryStore(opts ...MemoryOption) (*MemoryStore, error) {
	o := memoryOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	if o.dir != "" {
		if err := os.MkdirAll(o.dir, 0o755); err != nil {
			return nil, apperr.Persistence("create_data_dir", err)
		}
	}

	s := &MemoryStore{
		customers:    newCollection("customers", o.dir, func(c models.Customer) string { return c.ID }, cloneCustomer),
		barbers:      newCollection("barbers", o.dir, func(b models.Barber) string { return b.ID }, cloneBarber),
		services:     newCollection("services", o.dir, func(s models.Service) string { return s.ID }, cloneService),
		appointments: newCollection("appointments", o.dir, func(a models.Appointment) string { return a.ID }, cloneAppointment),
		now:          o.now,
	}

	for _, load := range []func() error{
		s.customers.load,
		s.barbers.load,
		s.services.load,
		s.appointments.load,
	} {
		if err := load(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

var _ Store = (*MemoryStore)(nil)

// --------------------------------------------------
// Customer
// --------------------------------------------------

func (s *MemoryStore) CreateCustomer(_ context.Context, c models.Customer) (models.Customer, error) {
	if err := validateCustomer(&c); err != nil {
		return models.Customer{}, err
	}

	s.customers.mu.Lock()
	defer s.customers.mu.Unlock()

	if _, taken := s.customerByPhone(c.Phone); taken {
		return models.Customer{}, apperr.Conflict("phone_taken")
	}

	now := s.now()
	c.ID = uuid.NewString()
	c.CreatedAt = now
	c.UpdatedAt = now

	if err := s.customers.commit(c.ID, &c); err != nil {
		return models.Customer{}, err
	}
	return cloneCustomer(c), nil
}

func (s *MemoryStore) GetCustomer(_ context.Context, id string) (models.Customer, error) {
	s.customers.mu.RLock()
	defer s.customers.mu.RUnlock()

	c, ok := s.customers.get(id)
	if !ok {
		return models.Customer{}, apperr.NotFound("customer")
	}
	return c, nil
}

func (s *MemoryStore) GetCustomerByPhone(_ context.Context, phone string) (models.Customer, error) {
	s.customers.mu.RLock()
	defer s.customers.mu.RUnlock()

	c, ok := s.customerByPhone(strings.TrimSpace(phone))
	if !ok {
		return models.Customer{}, apperr.NotFound("customer")
	}
	return c, nil
}

func (s *MemoryStore) UpdateCustomer(_ context.Context, c models.Customer) (models.Customer, error) {
	if err := validateCustomer(&c); err != nil {
		return models.Customer{}, err
	}

	s.customers.mu.Lock()
	defer s.customers.mu.Unlock()

	current, ok := s.customers.get(c.ID)
	if !ok {
		return models.Customer{}, apperr.NotFound("customer")
	}
	if other, taken := s.customerByPhone(c.Phone); taken && other.ID != c.ID {
		return models.Customer{}, apperr.Conflict("phone_taken")
	}

	c.CreatedAt = current.CreatedAt
	c.UpdatedAt = s.now()

	if err := s.customers.commit(c.ID, &c); err != nil {
		return models.Customer{}, err
	}
	return cloneCustomer(c), nil
}

func (s *MemoryStore) DeleteCustomer(_ context.Context, id string) error {
	s.customers.mu.Lock()
	defer s.customers.mu.Unlock()

	if _, ok := s.customers.get(id); !ok {
		return apperr.NotFound("customer")
	}
	return s.customers.commit(id, nil)
}

func (s *MemoryStore) ListCustomers(_ context.Context) ([]models.Customer, error) {
	s.customers.mu.RLock()
	defer s.customers.mu.RUnlock()

	return s.customers.list(nil), nil
}

// customerByPhone requires customers.mu.
func (s *MemoryStore) customerByPhone(phone string) (models.Customer, bool) {
	for _, id := range s.customers.order {
		if c := s.customers.items[id]; c.Phone == phone {
			return cloneCustomer(c), true
		}
	}
	return models.Customer{}, false
}

// --------------------------------------------------
// Barber
// --------------------------------------------------

func (s *MemoryStore) CreateBarber(_ context.Context, b models.Barber) (models.Barber, error) {
	if err := validateBarber(&b); err != nil {
		return models.Barber{}, err
	}

	s.barbers.mu.Lock()
	defer s.barbers.mu.Unlock()

	now := s.now()
	b.ID = uuid.NewString()
	b.CreatedAt = now
	b.UpdatedAt = now

	if err := s.barbers.commit(b.ID, &b); err != nil {
		return models.Barber{}, err
	}
	return cloneBarber(b), nil
}

func (s *MemoryStore) GetBarber(_ context.Context, id string) (models.Barber, error) {
	s.barbers.mu.RLock()
	defer s.barbers.mu.RUnlock()

	b, ok := s.barbers.get(id)
	if !ok {
		return models.Barber{}, apperr.NotFound("barber")
	}
	return b, nil
}

func (s *MemoryStore) UpdateBarber(_ context.Context, b models.Barber) (models.Barber, error) {
	if err := validateBarber(&b); err != nil {
		return models.Barber{}, err
	}

	s.barbers.mu.Lock()
	defer s.barbers.mu.Unlock()

	current, ok := s.barbers.get(b.ID)
	if !ok {
		return models.Barber{}, apperr.NotFound("barber")
	}

	b.CreatedAt = current.CreatedAt
	b.UpdatedAt = s.now()

	if err := s.barbers.commit(b.ID, &b); err != nil {
		return models.Barber{}, err
	}
	return cloneBarber(b), nil
}

func (s *MemoryStore) DeleteBarber(_ context.Context, id string) error {
	s.barbers.mu.Lock()
	defer s.barbers.mu.Unlock()

	if _, ok := s.barbers.get(id); !ok {
		return apperr.NotFound("barber")
	}
	return s.barbers.commit(id, nil)
}

func (s *MemoryStore) ListBarbers(_ context.Context) ([]models.Barber, error) {
	s.barbers.mu.RLock()
	defer s.barbers.mu.RUnlock()

	return s.barbers.list(nil), nil
}

// --------------------------------------------------
// Service
// --------------------------------------------------

func (s *MemoryStore) CreateService(_ context.Context, svc models.Service) (models.Service, error) {
	if err := validateService(&svc); err != nil {
		return models.Service{}, err
	}

	s.services.mu.Lock()
	defer s.services.mu.Unlock()

	now := s.now()
	svc.ID = uuid.NewString()
	svc.CreatedAt = now
	svc.UpdatedAt = now

	if err := s.services.commit(svc.ID, &svc); err != nil {
		return models.Service{}, err
	}
	return svc, nil
}

func (s *MemoryStore) GetService(_ context.Context, id string) (models.Service, error) {
	s.services.mu.RLock()
	defer s.services.mu.RUnlock()

	svc, ok := s.services.get(id)
	if !ok {
		return models.Service{}, apperr.NotFound("service")
	}
	return svc, nil
}

func (s *MemoryStore) UpdateService(_ context.Context, svc models.Service) (models.Service, error) {
	if err := validateService(&svc); err != nil {
		return models.Service{}, err
	}

	s.services.mu.Lock()
	defer s.services.mu.Unlock()

	current, ok := s.services.get(svc.ID)
	if !ok {
		return models.Service{}, apperr.NotFound("service")
	}

	svc.CreatedAt = current.CreatedAt
	svc.UpdatedAt = s.now()

	if err := s.services.commit(svc.ID, &svc); err != nil {
		return models.Service{}, err
	}
	return svc, nil
}

func (s *MemoryStore) DeleteService(_ context.Context, id string) error {
	s.services.mu.Lock()
	defer s.services.mu.Unlock()

	if _, ok := s.services.get(id); !ok {
		return apperr.NotFound("service")
	}
	return s.services.commit(id, nil)
}

func (s *MemoryStore) ListServices(_ context.Context) ([]models.Service, error) {
	s.services.mu.RLock()
	defer s.services.mu.RUnlock()

	return s.services.list(nil), nil
}

// --------------------------------------------------
// Appointment
// --------------------------------------------------

func (s *MemoryStore) ClaimSlot(ctx context.Context, ap models.Appointment) (models.Appointment, error) {
	if err := validateAppointment(&ap); err != nil {
		return models.Appointment{}, err
	}
	if err := s.checkReferences(ctx, ap); err != nil {
		return models.Appointment{}, err
	}

	s.appointments.mu.Lock()
	defer s.appointments.mu.Unlock()

	if domain.Status(ap.Status).Blocks() && s.slotHeld(ap, "") {
		return models.Appointment{}, apperr.Conflict("slot_taken")
	}

	now := s.now()
	ap.ID = uuid.NewString()
	ap.CreatedAt = now
	ap.UpdatedAt = now

	if err := s.appointments.commit(ap.ID, &ap); err != nil {
		return models.Appointment{}, err
	}
	return cloneAppointment(ap), nil
}

func (s *MemoryStore) GetAppointment(_ context.Context, id string) (models.Appointment, error) {
	s.appointments.mu.RLock()
	defer s.appointments.mu.RUnlock()

	ap, ok := s.appointments.get(id)
	if !ok {
		return models.Appointment{}, apperr.NotFound("appointment")
	}
	return ap, nil
}

func (s *MemoryStore) UpdateAppointment(ctx context.Context, ap models.Appointment) (models.Appointment, error) {
	if err := validateAppointment(&ap); err != nil {
		return models.Appointment{}, err
	}
	if err := s.checkReferences(ctx, ap); err != nil {
		return models.Appointment{}, err
	}

	s.appointments.mu.Lock()
	defer s.appointments.mu.Unlock()

	current, ok := s.appointments.get(ap.ID)
	if !ok {
		return models.Appointment{}, apperr.NotFound("appointment")
	}
	if domain.Status(ap.Status).Blocks() && s.slotHeld(ap, ap.ID) {
		return models.Appointment{}, apperr.Conflict("slot_taken")
	}

	ap.CreatedAt = current.CreatedAt
	ap.UpdatedAt = s.now()

	if err := s.appointments.commit(ap.ID, &ap); err != nil {
		return models.Appointment{}, err
	}
	return cloneAppointment(ap), nil
}

func (s *MemoryStore) DeleteAppointment(_ context.Context, id string) error {
	s.appointments.mu.Lock()
	defer s.appointments.mu.Unlock()

	if _, ok := s.appointments.get(id); !ok {
		return apperr.NotFound("appointment")
	}
	return s.appointments.commit(id, nil)
}

func (s *MemoryStore) ListAppointments(_ context.Context) ([]models.Appointment, error) {
	return s.listAppointments(nil), nil
}

func (s *MemoryStore) ListAppointmentsByCustomer(_ context.Context, customerID string) ([]models.Appointment, error) {
	return s.listAppointments(func(ap models.Appointment) bool {
		return ap.CustomerID == customerID
	}), nil
}

func (s *MemoryStore) ListAppointmentsByBarber(_ context.Context, barberID string) ([]models.Appointment, error) {
	return s.listAppointments(func(ap models.Appointment) bool {
		return ap.BarberID == barberID
	}), nil
}

func (s *MemoryStore) ListAppointmentsByDate(_ context.Context, date string) ([]models.Appointment, error) {
	return s.listAppointments(func(ap models.Appointment) bool {
		return ap.Date == date
	}), nil
}

func (s *MemoryStore) UpdateAppointmentStatus(
	_ context.Context,
	id string,
	from domain.Status,
	to domain.Status,
	at time.Time,
) (models.Appointment, error) {

	s.appointments.mu.Lock()
	defer s.appointments.mu.Unlock()

	ap, ok := s.appointments.get(id)
	if !ok {
		return models.Appointment{}, apperr.NotFound("appointment")
	}
	if domain.Status(ap.Status) != from {
		return models.Appointment{}, apperr.Conflict("invalid_state")
	}
	if err := domain.Transition(&ap, to, at); err != nil {
		return models.Appointment{}, err
	}

	if err := s.appointments.commit(ap.ID, &ap); err != nil {
		return models.Appointment{}, err
	}
	return cloneAppointment(ap), nil
}

func (s *MemoryStore) listAppointments(keep func(models.Appointment) bool) []models.Appointment {
	s.appointments.mu.RLock()
	defer s.appointments.mu.RUnlock()

	return s.appointments.list(keep)
}

// slotHeld requires appointments.mu. except skips the appointment being
// updated.
func (s *MemoryStore) slotHeld(ap models.Appointment, except string) bool {
	for _, id := range s.appointments.order {
		other := s.appointments.items[id]
		if id == except || !domain.Status(other.Status).Blocks() {
			continue
		}
		if sameSlot(other, ap) {
			return true
		}
	}
	return false
}

// checkReferences takes each collection's read lock in turn, never
// nested with appointments.mu.
func (s *MemoryStore) checkReferences(ctx context.Context, ap models.Appointment) error {
	if _, err := s.GetCustomer(ctx, ap.CustomerID); err != nil {
		return fmt.Errorf("appointment customer: %w", err)
	}
	if _, err := s.GetBarber(ctx, ap.BarberID); err != nil {
		return fmt.Errorf("appointment barber: %w", err)
	}
	if _, err := s.GetService(ctx, ap.ServiceID); err != nil {
		return fmt.Errorf("appointment service: %w", err)
	}
	return nil
}
