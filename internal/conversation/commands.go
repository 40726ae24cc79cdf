package conversation

import (
	"context"
	"fmt"
	"strings"

	domain "github.com/BruksfildServices01/barber-assistant/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-assistant/internal/models"
	"github.com/BruksfildServices01/barber-assistant/internal/validators"
)

// Idle commands. Each one may move st out of idle; none of them fail on
// customer input.

const noServices = "I'm sorry, we don't have any services available for booking right now. Please try again later."

func (m *Machine) Welcome(c models.Customer) []string {
	greeting := "Hello"
	if c.Name != "" {
		greeting += " " + c.Name
	}
	return reply(fmt.Sprintf(
		"%s! Welcome to %s. I can help you book, view or cancel appointments. Send HELP to see what I can do.",
		greeting, m.settings.BusinessName,
	))
}

func (m *Machine) Help() []string {
	return reply(
		"Here's what I can do:",
		strings.Join([]string{
			"BOOK - book an appointment",
			"BOOK <number> - book a specific service from the SERVICES list",
			"SERVICES - see our services and prices",
			"BARBERS - meet our barbers",
			"HOURS - see when we're open",
			"APPOINTMENTS - see your upcoming appointments",
			"CANCEL - cancel an appointment",
			"HELP - show this message",
		}, "\n"),
	)
}

func (m *Machine) Services(ctx context.Context) ([]string, error) {
	services, err := m.activeServices(ctx)
	if err != nil {
		return nil, err
	}
	if len(services) == 0 {
		return reply(noServices), nil
	}
	return reply(serviceList(services, "Send BOOK <number> to book one of them.")), nil
}

func (m *Machine) Barbers(ctx context.Context) ([]string, error) {
	all, err := m.store.ListBarbers(ctx)
	if err != nil {
		return nil, err
	}

	active := make([]models.Barber, 0, len(all))
	for _, b := range all {
		if b.Active {
			active = append(active, b)
		}
	}
	if len(active) == 0 {
		return reply("None of our barbers are taking appointments right now. Please check back later."), nil
	}
	return reply(barberList(active, "Meet our barbers:", "Send BOOK to make an appointment.")), nil
}

// Hours lists the configured display hours, Monday first.
func (m *Machine) Hours() []string {
	lines := make([]string, 0, len(domain.Weekdays))
	for _, day := range domain.Weekdays {
		name := domain.WeekdayName(day)

		var text string
		if m.settings.Hours == nil {
			w := m.slots.DefaultWindow()
			text = validators.FormatClock(w.Start) + " - " + validators.FormatClock(w.End)
		} else if h, ok := m.settings.Hours[name]; ok && h != "" {
			text = h
		} else {
			text = "Closed"
		}
		lines = append(lines, strings.ToUpper(name[:1])+name[1:]+": "+text)
	}
	return reply("Our business hours:", strings.Join(lines, "\n"))
}

// Appointments lists the customer's upcoming scheduled appointments.
func (m *Machine) Appointments(ctx context.Context, c models.Customer) ([]string, error) {
	snap, err := m.snapshot(ctx, c)
	if err != nil {
		return nil, err
	}
	if len(snap) == 0 {
		return reply("You don't have any upcoming appointments. Send BOOK to make one."), nil
	}
	return reply(snapshotList("Your upcoming appointments:", snap), "Send CANCEL if you need to cancel one."), nil
}

// StartBooking offers the active services.
func (m *Machine) StartBooking(ctx context.Context, st *State) ([]string, error) {
	services, err := m.activeServices(ctx)
	if err != nil {
		return nil, err
	}

	st.Reset()
	if len(services) == 0 {
		return reply(noServices), nil
	}

	st.Data.Services = serviceOptions(services)
	st.Step = StepBookingService
	return reply(serviceList(services, pickService)), nil
}

// StartBookingWith skips the service list when n is a valid 1-based
// index into the active services. An invalid index leaves st idle.
func (m *Machine) StartBookingWith(ctx context.Context, st *State, n int) ([]string, error) {
	services, err := m.activeServices(ctx)
	if err != nil {
		return nil, err
	}

	st.Reset()
	if len(services) == 0 {
		return reply(noServices), nil
	}
	if n < 1 || n > len(services) {
		return reply(
			rangeHint("service", len(services)),
			serviceList(services, "Send BOOK <number> to book one of them."),
		), nil
	}
	return m.selectService(st, services[n-1]), nil
}

// StartCancel captures the snapshot the cancel flow works against.
func (m *Machine) StartCancel(ctx context.Context, c models.Customer, st *State) ([]string, error) {
	snap, err := m.snapshot(ctx, c)
	if err != nil {
		return nil, err
	}

	st.Reset()
	if len(snap) == 0 {
		return reply("You don't have any upcoming appointments to cancel. Send BOOK to make one."), nil
	}

	st.Data.Appointments = snap
	st.Step = StepCancelSelect
	return reply(snapshotList(pickAppointment, snap)), nil
}

// ------------------------------------------------------

// activeServices keeps store order so numbers stay stable between SERVICES
// and BOOK <n>.
func (m *Machine) activeServices(ctx context.Context) ([]models.Service, error) {
	all, err := m.store.ListServices(ctx)
	if err != nil {
		return nil, err
	}
	active := make([]models.Service, 0, len(all))
	for _, s := range all {
		if s.Active {
			active = append(active, s)
		}
	}
	return active, nil
}

func (m *Machine) snapshot(ctx context.Context, c models.Customer) ([]Snapshot, error) {
	upcoming, err := m.upcoming.Execute(ctx, c.ID, m.now())
	if err != nil {
		return nil, err
	}

	out := make([]Snapshot, 0, len(upcoming))
	for _, d := range upcoming {
		out = append(out, Snapshot{
			ID:          d.Appointment.ID,
			Date:        d.Appointment.Date,
			Time:        d.Appointment.Time,
			ServiceName: d.Service.Name,
			BarberName:  d.Barber.Name,
		})
	}
	return out, nil
}
