package directory

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BruksfildServices01/barber-assistant/internal/apperr"
	domain "github.com/BruksfildServices01/barber-assistant/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-assistant/internal/models"
)

const pgUniqueViolation = "23505"

// GormStore is the postgres-backed Store. Slot uniqueness is enforced by
// the partial index created in db.Migrate as well as by ClaimSlot's
// locking read.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

var _ Store = (*GormStore)(nil)

// translate maps driver errors onto the apperr taxonomy.
func translate(entity, op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(entity)
	}

	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		if strings.Contains(pgErr.ConstraintName, "phone") {
			return apperr.Conflict("phone_taken")
		}
		return apperr.Conflict("slot_taken")
	}
	return apperr.Persistence(op, err)
}

// --------------------------------------------------
// Customer
// --------------------------------------------------

func (s *GormStore) CreateCustomer(ctx context.Context, c models.Customer) (models.Customer, error) {
	if err := validateCustomer(&c); err != nil {
		return models.Customer{}, err
	}
	c.ID = uuid.NewString()

	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		return models.Customer{}, translate("customer", "create_customer", err)
	}
	return c, nil
}

func (s *GormStore) GetCustomer(ctx context.Context, id string) (models.Customer, error) {
	var c models.Customer
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return models.Customer{}, translate("customer", "get_customer", err)
	}
	return c, nil
}

func (s *GormStore) GetCustomerByPhone(ctx context.Context, phone string) (models.Customer, error) {
	var c models.Customer
	if err := s.db.WithContext(ctx).
		Where("phone = ?", strings.TrimSpace(phone)).
		First(&c).Error; err != nil {
		return models.Customer{}, translate("customer", "get_customer_by_phone", err)
	}
	return c, nil
}

func (s *GormStore) UpdateCustomer(ctx context.Context, c models.Customer) (models.Customer, error) {
	if err := validateCustomer(&c); err != nil {
		return models.Customer{}, err
	}
	if _, err := s.GetCustomer(ctx, c.ID); err != nil {
		return models.Customer{}, err
	}

	if err := s.db.WithContext(ctx).Omit("created_at").Save(&c).Error; err != nil {
		return models.Customer{}, translate("customer", "update_customer", err)
	}
	return s.GetCustomer(ctx, c.ID)
}

func (s *GormStore) DeleteCustomer(ctx context.Context, id string) error {
	return s.delete(ctx, "customer", &models.Customer{}, id)
}

func (s *GormStore) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	var out []models.Customer
	if err := s.ordered(ctx).Find(&out).Error; err != nil {
		return nil, translate("customer", "list_customers", err)
	}
	return out, nil
}

// --------------------------------------------------
// Barber
// --------------------------------------------------

func (s *GormStore) CreateBarber(ctx context.Context, b models.Barber) (models.Barber, error) {
	if err := validateBarber(&b); err != nil {
		return models.Barber{}, err
	}
	b.ID = uuid.NewString()

	if err := s.db.WithContext(ctx).Create(&b).Error; err != nil {
		return models.Barber{}, translate("barber", "create_barber", err)
	}
	return b, nil
}

func (s *GormStore) GetBarber(ctx context.Context, id string) (models.Barber, error) {
	var b models.Barber
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&b).Error; err != nil {
		return models.Barber{}, translate("barber", "get_barber", err)
	}
	return b, nil
}

func (s *GormStore) UpdateBarber(ctx context.Context, b models.Barber) (models.Barber, error) {
	if err := validateBarber(&b); err != nil {
		return models.Barber{}, err
	}
	if _, err := s.GetBarber(ctx, b.ID); err != nil {
		return models.Barber{}, err
	}

	if err := s.db.WithContext(ctx).Omit("created_at").Save(&b).Error; err != nil {
		return models.Barber{}, translate("barber", "update_barber", err)
	}
	return s.GetBarber(ctx, b.ID)
}

func (s *GormStore) DeleteBarber(ctx context.Context, id string) error {
	return s.delete(ctx, "barber", &models.Barber{}, id)
}

func (s *GormStore) ListBarbers(ctx context.Context) ([]models.Barber, error) {
	var out []models.Barber
	if err := s.ordered(ctx).Find(&out).Error; err != nil {
		return nil, translate("barber", "list_barbers", err)
	}
	return out, nil
}

// --------------------------------------------------
// Service
// --------------------------------------------------

func (s *GormStore) CreateService(ctx context.Context, svc models.Service) (models.Service, error) {
	if err := validateService(&svc); err != nil {
		return models.Service{}, err
	}
	svc.ID = uuid.NewString()

	if err := s.db.WithContext(ctx).Create(&svc).Error; err != nil {
		return models.Service{}, translate("service", "create_service", err)
	}
	return svc, nil
}

func (s *GormStore) GetService(ctx context.Context, id string) (models.Service, error) {
	var svc models.Service
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&svc).Error; err != nil {
		return models.Service{}, translate("service", "get_service", err)
	}
	return svc, nil
}

func (s *GormStore) UpdateService(ctx context.Context, svc models.Service) (models.Service, error) {
	if err := validateService(&svc); err != nil {
		return models.Service{}, err
	}
	if _, err := s.GetService(ctx, svc.ID); err != nil {
		return models.Service{}, err
	}

	if err := s.db.WithContext(ctx).Omit("created_at").Save(&svc).Error; err != nil {
		return models.Service{}, translate("service", "update_service", err)
	}
	return s.GetService(ctx, svc.ID)
}

func (s *GormStore) DeleteService(ctx context.Context, id string) error {
	return s.delete(ctx, "service", &models.Service{}, id)
}

func (s *GormStore) ListServices(ctx context.Context) ([]models.Service, error) {
	var out []models.Service
	if err := s.ordered(ctx).Find(&out).Error; err != nil {
		return nil, translate("service", "list_services", err)
	}
	return out, nil
}

// --------------------------------------------------
// Appointment
// --------------------------------------------------

func (s *GormStore) ClaimSlot(ctx context.Context, ap models.Appointment) (models.Appointment, error) {
	if err := validateAppointment(&ap); err != nil {
		return models.Appointment{}, err
	}
	ap.ID = uuid.NewString()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkReferences(tx, ap); err != nil {
			return err
		}

		if domain.Status(ap.Status).Blocks() {
			held, err := slotHeld(tx, ap, "")
			if err != nil {
				return err
			}
			if held {
				return apperr.Conflict("slot_taken")
			}
		}

		return tx.Create(&ap).Error
	})
	if err != nil {
		return models.Appointment{}, translate("appointment", "claim_slot", err)
	}
	return ap, nil
}

func (s *GormStore) GetAppointment(ctx context.Context, id string) (models.Appointment, error) {
	var ap models.Appointment
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&ap).Error; err != nil {
		return models.Appointment{}, translate("appointment", "get_appointment", err)
	}
	return ap, nil
}

func (s *GormStore) UpdateAppointment(ctx context.Context, ap models.Appointment) (models.Appointment, error) {
	if err := validateAppointment(&ap); err != nil {
		return models.Appointment{}, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.Appointment
		if err := tx.Where("id = ?", ap.ID).First(&current).Error; err != nil {
			return err
		}
		if err := checkReferences(tx, ap); err != nil {
			return err
		}

		if domain.Status(ap.Status).Blocks() {
			held, err := slotHeld(tx, ap, ap.ID)
			if err != nil {
				return err
			}
			if held {
				return apperr.Conflict("slot_taken")
			}
		}

		ap.CreatedAt = current.CreatedAt
		return tx.Save(&ap).Error
	})
	if err != nil {
		return models.Appointment{}, translate("appointment", "update_appointment", err)
	}
	return s.GetAppointment(ctx, ap.ID)
}

func (s *GormStore) DeleteAppointment(ctx context.Context, id string) error {
	return s.delete(ctx, "appointment", &models.Appointment{}, id)
}

func (s *GormStore) ListAppointments(ctx context.Context) ([]models.Appointment, error) {
	return s.listAppointments(ctx, "", nil)
}

func (s *GormStore) ListAppointmentsByCustomer(ctx context.Context, customerID string) ([]models.Appointment, error) {
	return s.listAppointments(ctx, "customer_id = ?", customerID)
}

func (s *GormStore) ListAppointmentsByBarber(ctx context.Context, barberID string) ([]models.Appointment, error) {
	return s.listAppointments(ctx, "barber_id = ?", barberID)
}

func (s *GormStore) ListAppointmentsByDate(ctx context.Context, date string) ([]models.Appointment, error) {
	return s.listAppointments(ctx, "date = ?", date)
}

// UpdateAppointmentStatus is a conditional UPDATE on the current status.
func (s *GormStore) UpdateAppointmentStatus(
	ctx context.Context,
	id string,
	from domain.Status,
	to domain.Status,
	at time.Time,
) (models.Appointment, error) {

	ap, err := s.GetAppointment(ctx, id)
	if err != nil {
		return models.Appointment{}, err
	}
	if domain.Status(ap.Status) != from {
		return models.Appointment{}, apperr.Conflict("invalid_state")
	}
	if err := domain.Transition(&ap, to, at); err != nil {
		return models.Appointment{}, err
	}

	res := s.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(map[string]any{
			"status":       ap.Status,
			"cancelled_at": ap.CancelledAt,
			"completed_at": ap.CompletedAt,
			"updated_at":   ap.UpdatedAt,
		})
	if res.Error != nil {
		return models.Appointment{}, translate("appointment", "update_appointment_status", res.Error)
	}
	if res.RowsAffected == 0 {
		return models.Appointment{}, apperr.Conflict("invalid_state")
	}
	return ap, nil
}

// --------------------------------------------------
// helpers
// --------------------------------------------------

func (s *GormStore) ordered(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Order("created_at ASC, id ASC")
}

func (s *GormStore) listAppointments(ctx context.Context, where string, arg any) ([]models.Appointment, error) {
	q := s.ordered(ctx)
	if where != "" {
		q = q.Where(where, arg)
	}

	var out []models.Appointment
	if err := q.Find(&out).Error; err != nil {
		return nil, translate("appointment", "list_appointments", err)
	}
	return out, nil
}

func (s *GormStore) delete(ctx context.Context, entity string, model any, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(model)
	if res.Error != nil {
		return translate(entity, "delete_"+entity, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound(entity)
	}
	return nil
}

// slotHeld locks any scheduled row for the same chair.
func slotHeld(tx *gorm.DB, ap models.Appointment, except string) (bool, error) {
	q := tx.Model(&models.Appointment{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where(`barber_id = ? AND date = ? AND "time" = ? AND status = ?`,
			ap.BarberID,
			ap.Date,
			ap.Time,
			string(domain.StatusScheduled),
		)
	if except != "" {
		q = q.Where("id <> ?", except)
	}

	var ids []string
	if err := q.Pluck("id", &ids).Error; err != nil {
		return false, err
	}
	return len(ids) > 0, nil
}

func checkReferences(tx *gorm.DB, ap models.Appointment) error {
	refs := []struct {
		entity string
		model  any
		id     string
	}{
		{"customer", &models.Customer{}, ap.CustomerID},
		{"barber", &models.Barber{}, ap.BarberID},
		{"service", &models.Service{}, ap.ServiceID},
	}

	for _, ref := range refs {
		var count int64
		if err := tx.Model(ref.model).Where("id = ?", ref.id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return apperr.NotFound(ref.entity)
		}
	}
	return nil
}
