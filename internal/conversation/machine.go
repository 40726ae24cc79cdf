package conversation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-assistant/internal/availability"
	"github.com/BruksfildServices01/barber-assistant/internal/directory"
	"github.com/BruksfildServices01/barber-assistant/internal/models"
	"github.com/BruksfildServices01/barber-assistant/internal/timezone"
	ucAppointment "github.com/BruksfildServices01/barber-assistant/internal/usecase/appointment"
)

type Settings struct {
	BusinessName string

	// HorizonDays is how far ahead a date may be booked.
	HorizonDays int

	// Hours is the display text per lowercase weekday for HOURS. Days
	// left out show as closed; a nil map shows the default window daily.
	Hours map[string]string
}

// Turn is one inbound customer message.
type Turn struct {
	Customer models.Customer
	Text     string
}

// Machine holds the step handlers. It is stateless; every call gets the
// customer's State and mutates it in place.
type Machine struct {
	store    directory.Store
	slots    *availability.Engine
	book     *ucAppointment.BookAppointment
	cancel   *ucAppointment.CancelAppointment
	upcoming *ucAppointment.ListUpcoming

	settings Settings
	now      func() time.Time
	log      *zap.Logger
}

func NewMachine(
	store directory.Store,
	slots *availability.Engine,
	book *ucAppointment.BookAppointment,
	cancel *ucAppointment.CancelAppointment,
	upcoming *ucAppointment.ListUpcoming,
	settings Settings,
	now func() time.Time,
	log *zap.Logger,
) *Machine {

	if settings.HorizonDays <= 0 {
		settings.HorizonDays = 30
	}
	if settings.BusinessName == "" {
		settings.BusinessName = "our barbershop"
	}
	if now == nil {
		now = time.Now
	}

	return &Machine{
		store:    store,
		slots:    slots,
		book:     book,
		cancel:   cancel,
		upcoming: upcoming,
		settings: settings,
		now:      now,
		log:      log,
	}
}

// Handle runs the handler for st.Step. Handlers recover from customer
// mistakes by re-prompting; a returned error means an internal failure
// and the caller resets the dialog.
func (m *Machine) Handle(ctx context.Context, turn Turn, st *State) ([]string, error) {
	switch st.Step {
	case StepBookingService:
		return m.bookingService(ctx, turn, st)
	case StepBookingDate:
		return m.bookingDate(ctx, turn, st)
	case StepBookingTime:
		return m.bookingTime(ctx, turn, st)
	case StepBookingBarber:
		return m.bookingBarber(ctx, turn, st)
	case StepBookingConfirmation:
		return m.bookingConfirmation(ctx, turn, st)
	case StepCancelSelect:
		return m.cancelSelect(ctx, turn, st)
	case StepCancelConfirmation:
		return m.cancelConfirmation(ctx, turn, st)
	}
	return nil, fmt.Errorf("no handler for step %q", st.Step)
}

// today is midnight of the current business day.
func (m *Machine) today() time.Time {
	return timezone.Today(m.now())
}

func token(text string) string {
	return strings.ToUpper(strings.TrimSpace(text))
}

// reply joins non-empty paragraphs into one outbound message.
func reply(paragraphs ...string) []string {
	kept := paragraphs[:0:0]
	for _, p := range paragraphs {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return []string{strings.Join(kept, "\n\n")}
}
