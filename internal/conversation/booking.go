package conversation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-assistant/internal/apperr"
	"github.com/BruksfildServices01/barber-assistant/internal/availability"
	"github.com/BruksfildServices01/barber-assistant/internal/models"
	"github.com/BruksfildServices01/barber-assistant/internal/timezone"
	ucAppointment "github.com/BruksfildServices01/barber-assistant/internal/usecase/appointment"
	"github.com/BruksfildServices01/barber-assistant/internal/validators"
)

const (
	pickService = "Reply with the number of the service you'd like to book."
	pickBarber  = "Please select a barber by replying with their number:"
)

// ======================================================
// booking_service
// ======================================================

func (m *Machine) bookingService(ctx context.Context, turn Turn, st *State) ([]string, error) {
	if out, ok := abortBooking(turn, st); ok {
		return out, nil
	}

	offered := st.Data.Services
	n, numeric := parseIndex(turn.Text)

	var choice *Option
	if numeric {
		if n >= 1 && n <= len(offered) {
			choice = &offered[n-1]
		}
	} else {
		choice = matchOption(offered, turn.Text)
	}

	if choice != nil {
		svc, err := m.store.GetService(ctx, choice.ID)
		if err != nil && !apperr.IsKind(err, apperr.KindNotFound) {
			return nil, err
		}
		if err == nil && svc.Active {
			return m.selectService(st, svc), nil
		}
	}

	services, err := m.activeServices(ctx)
	if err != nil {
		return nil, err
	}
	if len(services) == 0 {
		st.Reset()
		return reply(noServices), nil
	}

	hint := "I couldn't find that service."
	if numeric {
		hint = rangeHint("service", len(services))
	}

	st.Data.Services = serviceOptions(services)
	return reply(hint, serviceList(services, pickService)), nil
}

func (m *Machine) selectService(st *State, svc models.Service) []string {
	st.Data.ServiceID = svc.ID
	st.Data.ServiceName = svc.Name
	st.Data.Services = nil
	st.Step = StepBookingDate

	return reply(
		fmt.Sprintf("You selected: %s (%s)", svc.Name, formatPrice(svc.Price)),
		"Please enter your preferred date for the appointment (MM/DD/YYYY).",
		m.dateWindow(),
	)
}

// ======================================================
// booking_date
// ======================================================

func (m *Machine) bookingDate(ctx context.Context, turn Turn, st *State) ([]string, error) {
	if out, ok := abortBooking(turn, st); ok {
		return out, nil
	}

	today := m.today()

	day, err := validators.ParseDate(turn.Text, timezone.Location())
	if err != nil {
		return reply(
			"I couldn't understand that date. Please use the format MM/DD/YYYY, for example "+
				today.AddDate(0, 0, 2).Format(promptDate)+".",
		), nil
	}

	if problem := m.outsideWindow(day); problem != "" {
		return reply(problem, m.dateWindow()), nil
	}

	return m.presentSlots(ctx, st, day.Format(validators.DateLayout), "")
}

// outsideWindow explains why day cannot be booked today, or returns "".
func (m *Machine) outsideWindow(day time.Time) string {
	today := m.today()
	if !day.After(today) {
		return "Please select a future date. We need at least one day's notice for appointments."
	}
	if day.After(today.AddDate(0, 0, m.settings.HorizonDays)) {
		return fmt.Sprintf("Please select a date within the next %d days.", m.settings.HorizonDays)
	}
	return ""
}

func (m *Machine) dateWindow() string {
	today := m.today()
	return fmt.Sprintf(
		"We're available from %s to %s.",
		today.AddDate(0, 0, 1).Format(promptDate),
		today.AddDate(0, 0, m.settings.HorizonDays).Format(promptDate),
	)
}

// presentSlots lists the open times on date and moves to booking_time, or
// back to booking_date when nothing is open.
func (m *Machine) presentSlots(ctx context.Context, st *State, date, preamble string) ([]string, error) {
	open, err := m.slots.ListOpenSlots(ctx, date, "")
	if err != nil {
		return nil, err
	}

	st.Data.Time = ""
	st.Data.BarberID = ""
	st.Data.BarberName = ""
	st.Data.Barbers = nil

	if len(open.Slots) == 0 {
		st.Data.Date = ""
		st.Data.Slots = nil

		switch open.Reason {
		case availability.ReasonNoBarbers:
			st.Reset()
			return reply(preamble, "I'm sorry, none of our barbers are taking appointments right now. Please try again later."), nil
		case availability.ReasonBarberNotWorking:
			st.Step = StepBookingDate
			return reply(preamble, fmt.Sprintf("I'm sorry, we're closed on %s. Please select a different date.", formatDate(date)), m.dateWindow()), nil
		}

		st.Step = StepBookingDate
		return reply(preamble, fmt.Sprintf("I'm sorry, we don't have any available slots on %s. Please select a different date.", formatDate(date))), nil
	}

	st.Data.Date = date
	st.Data.Slots = open.Slots
	st.Step = StepBookingTime
	return reply(preamble, slotList(date, open.Slots)), nil
}

// ======================================================
// booking_time
// ======================================================

func (m *Machine) bookingTime(ctx context.Context, turn Turn, st *State) ([]string, error) {
	if out, ok := abortBooking(turn, st); ok {
		return out, nil
	}

	date := st.Data.Date
	open, err := m.slots.ListOpenSlots(ctx, date, "")
	if err != nil {
		return nil, err
	}
	if len(open.Slots) == 0 {
		return m.presentSlots(ctx, st, date, "I'm sorry, there are no open times left on that day.")
	}

	presented := st.Data.Slots
	var candidate string

	if n, ok := parseIndex(turn.Text); ok {
		if n < 1 || n > len(presented) {
			st.Data.Slots = open.Slots
			return reply(rangeHint("time slot", len(open.Slots)), slotList(date, open.Slots)), nil
		}
		candidate = presented[n-1]
	} else {
		candidate = matchSlot(open.Slots, turn.Text)
		if candidate == "" {
			st.Data.Slots = open.Slots
			return reply("Please reply with the number of one of these times.", slotList(date, open.Slots)), nil
		}
	}

	if !containsString(open.Slots, candidate) {
		st.Data.Slots = open.Slots
		return reply(
			fmt.Sprintf("I'm sorry, %s is no longer available. Here are the current open times.", candidate),
			slotList(date, open.Slots),
		), nil
	}

	st.Data.Time = candidate
	st.Data.Slots = nil
	return m.presentBarbers(ctx, st, "")
}

// presentBarbers offers the active barbers free at the chosen time, or
// falls back to booking_time when none is.
func (m *Machine) presentBarbers(ctx context.Context, st *State, preamble string) ([]string, error) {
	free, err := m.slots.FreeBarbers(ctx, st.Data.Date, st.Data.Time)
	if err != nil {
		return nil, err
	}

	if len(free) == 0 {
		taken := st.Data.Time
		return m.presentSlots(ctx, st, st.Data.Date, fmt.Sprintf("I'm sorry, no barber is free at %s anymore.", taken))
	}

	st.Data.Barbers = barberOptions(free)
	st.Step = StepBookingBarber
	return reply(preamble, barberList(free, pickBarber, "")), nil
}

// ======================================================
// booking_barber
// ======================================================

func (m *Machine) bookingBarber(ctx context.Context, turn Turn, st *State) ([]string, error) {
	if out, ok := abortBooking(turn, st); ok {
		return out, nil
	}

	offered := st.Data.Barbers
	n, numeric := parseIndex(turn.Text)

	var choice *Option
	if numeric {
		if n >= 1 && n <= len(offered) {
			choice = &offered[n-1]
		}
	} else {
		choice = matchOption(offered, turn.Text)
	}

	if choice == nil {
		hint := "I couldn't find that barber."
		if numeric {
			hint = rangeHint("barber", len(offered))
		}
		return m.presentBarbers(ctx, st, hint)
	}

	barber, err := m.store.GetBarber(ctx, choice.ID)
	if err != nil && !apperr.IsKind(err, apperr.KindNotFound) {
		return nil, err
	}
	free := false
	if err == nil && barber.Active {
		free, err = m.slots.IsSlotFree(ctx, st.Data.Date, st.Data.Time, barber.ID)
		if err != nil {
			return nil, err
		}
	}
	if !free {
		return m.presentBarbers(ctx, st, fmt.Sprintf("I'm sorry, %s is no longer available at %s.", choice.Name, st.Data.Time))
	}

	st.Data.BarberID = barber.ID
	st.Data.BarberName = barber.Name
	st.Data.Barbers = nil
	st.Step = StepBookingConfirmation

	return m.confirmationPrompt(ctx, st)
}

func (m *Machine) confirmationPrompt(ctx context.Context, st *State) ([]string, error) {
	svc, err := m.store.GetService(ctx, st.Data.ServiceID)
	if apperr.IsKind(err, apperr.KindNotFound) {
		st.Reset()
		return reply(goneMessage), nil
	}
	if err != nil {
		return nil, err
	}

	return reply(
		"Please confirm your appointment details:",
		strings.Join([]string{
			"Date: " + formatDate(st.Data.Date),
			"Time: " + st.Data.Time,
			"Service: " + svc.Name,
			fmt.Sprintf("Duration: %d minutes", svc.DurationMin),
			"Price: " + formatPrice(svc.Price),
			"Barber: " + st.Data.BarberName,
		}, "\n"),
		"Reply with 'CONFIRM' to book this appointment or 'CANCEL' to start over.",
	), nil
}

// ======================================================
// booking_confirmation
// ======================================================

const goneMessage = "I'm sorry, the service or barber you picked is no longer available. Send BOOK to start again."

func (m *Machine) bookingConfirmation(ctx context.Context, turn Turn, st *State) ([]string, error) {
	switch token(turn.Text) {
	case "CONFIRM":
		// the dialog may have sat idle past midnight since the date was picked
		lapsed, err := m.dateLapsed(st.Data.Date)
		if err != nil {
			return nil, err
		}
		if lapsed {
			return m.restartDate(st), nil
		}

		d, err := m.book.Execute(ctx, ucAppointment.BookAppointmentInput{
			CustomerID: turn.Customer.ID,
			ServiceID:  st.Data.ServiceID,
			BarberID:   st.Data.BarberID,
			Date:       st.Data.Date,
			Time:       st.Data.Time,
		})

		switch {
		case err == nil:
			st.Reset()
			return reply(
				"Your appointment has been booked!",
				strings.Join([]string{
					"Date: " + formatDate(d.Appointment.Date),
					"Time: " + d.Appointment.Time,
					"Service: " + d.Service.Name,
					"Barber: " + d.Barber.Name,
				}, "\n"),
				"We look forward to seeing you! Send CANCEL if you need to cancel it.",
			), nil

		case apperr.IsKind(err, apperr.KindConflict):
			m.log.Info("slot taken at confirmation",
				zap.String("phone", st.Phone),
				zap.String("date", st.Data.Date),
				zap.String("time", st.Data.Time),
				zap.String("code", apperr.CodeOf(err)),
			)
			return m.presentSlots(ctx, st, st.Data.Date, "I'm sorry, that time was just booked by someone else. Please pick another time.")

		case apperr.IsKind(err, apperr.KindNotFound):
			st.Reset()
			return reply(goneMessage), nil
		}
		return nil, err

	case "CANCEL":
		st.Reset()
		return reply("No problem, nothing was booked. Send BOOK whenever you'd like to start again."), nil
	}

	return reply("Please reply with 'CONFIRM' to book the appointment or 'CANCEL' to start over."), nil
}

// ======================================================
// helpers
// ======================================================

// restartDate drops the picked date and everything after it.
func (m *Machine) restartDate(st *State) []string {
	m.log.Info("confirmation date no longer bookable",
		zap.String("phone", st.Phone),
		zap.String("date", st.Data.Date),
	)

	date := st.Data.Date
	st.Data.Date = ""
	st.Data.Time = ""
	st.Data.BarberID = ""
	st.Data.BarberName = ""
	st.Data.Slots = nil
	st.Data.Barbers = nil
	st.Step = StepBookingDate

	return reply(
		fmt.Sprintf("I'm sorry, %s can no longer be booked. Please enter a new date (MM/DD/YYYY).", formatDate(date)),
		m.dateWindow(),
	)
}

func (m *Machine) dateLapsed(date string) (bool, error) {
	day, err := time.ParseInLocation(validators.DateLayout, date, timezone.Location())
	if err != nil {
		return false, fmt.Errorf("stored booking date %q: %w", date, err)
	}
	return m.outsideWindow(day) != "", nil
}

// abortBooking lets CANCEL leave any booking step before confirmation.
func abortBooking(turn Turn, st *State) ([]string, bool) {
	if token(turn.Text) != "CANCEL" {
		return nil, false
	}
	st.Reset()
	return reply("Booking cancelled. Send BOOK whenever you'd like to start again."), true
}

// matchOption prefers an exact case-insensitive name, then a substring.
func matchOption(options []Option, text string) *Option {
	q := strings.ToLower(strings.TrimSpace(text))
	if q == "" {
		return nil
	}
	for i := range options {
		if strings.ToLower(options[i].Name) == q {
			return &options[i]
		}
	}
	for i := range options {
		if strings.Contains(strings.ToLower(options[i].Name), q) {
			return &options[i]
		}
	}
	return nil
}

// matchSlot resolves a typed time ("9:30", "09:30") to canonical form.
func matchSlot(slots []string, text string) string {
	if clock, err := validators.NormalizeClock(text); err == nil {
		return clock
	}
	q := strings.TrimSpace(text)
	for _, s := range slots {
		if strings.EqualFold(s, q) {
			return s
		}
	}
	return ""
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func serviceOptions(services []models.Service) []Option {
	out := make([]Option, 0, len(services))
	for _, s := range services {
		out = append(out, Option{ID: s.ID, Name: s.Name})
	}
	return out
}

func barberOptions(barbers []models.Barber) []Option {
	out := make([]Option, 0, len(barbers))
	for _, b := range barbers {
		out = append(out, Option{ID: b.ID, Name: b.Name})
	}
	return out
}
