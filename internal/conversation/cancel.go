package conversation

import (
	"context"
	"fmt"

	"github.com/BruksfildServices01/barber-assistant/internal/apperr"
	"github.com/BruksfildServices01/barber-assistant/internal/notifier"
	ucAppointment "github.com/BruksfildServices01/barber-assistant/internal/usecase/appointment"
)

const pickAppointment = "Which appointment would you like to cancel? Reply with its number."

// ======================================================
// cancel_select
// ======================================================

// cancelSelect resolves against the snapshot taken when CANCEL began and
// never re-queries.
func (m *Machine) cancelSelect(_ context.Context, turn Turn, st *State) ([]string, error) {
	snap := st.Data.Appointments

	n, ok := parseIndex(turn.Text)
	if !ok || n < 1 || n > len(snap) {
		return reply(
			rangeHint("appointment", len(snap)),
			snapshotList(pickAppointment, snap),
		), nil
	}

	chosen := snap[n-1]
	st.Data.AppointmentID = chosen.ID
	st.Step = StepCancelConfirmation

	return reply(
		"Are you sure you want to cancel this appointment?",
		fmt.Sprintf(
			"Date: %s\nTime: %s\nService: %s\nBarber: %s",
			formatDate(chosen.Date), chosen.Time, chosen.ServiceName, chosen.BarberName,
		),
		"Reply with 'YES' to confirm cancellation or 'NO' to keep the appointment.",
	), nil
}

// ======================================================
// cancel_confirmation
// ======================================================

func (m *Machine) cancelConfirmation(ctx context.Context, turn Turn, st *State) ([]string, error) {
	switch token(turn.Text) {
	case "YES", "Y", "CONFIRM":
		d, err := m.cancel.Execute(ctx, ucAppointment.CancelAppointmentInput{
			AppointmentID: st.Data.AppointmentID,
			CustomerID:    turn.Customer.ID,
			Origin:        notifier.OriginChat,
			Actor:         "customer:" + turn.Customer.ID,
		})

		switch {
		case err == nil:
			st.Reset()
			return reply(
				fmt.Sprintf(
					"Your appointment on %s at %s has been cancelled.",
					formatDate(d.Appointment.Date), d.Appointment.Time,
				),
				"You can book a new appointment any time by sending 'BOOK'.",
			), nil

		case apperr.IsKind(err, apperr.KindConflict), apperr.IsKind(err, apperr.KindNotFound):
			st.Reset()
			return reply("I couldn't cancel that appointment. It may have already been cancelled or completed. Send APPOINTMENTS to see what's still booked."), nil
		}
		return nil, err

	case "NO", "N", "KEEP":
		st.Reset()
		return reply("Okay, your appointment is kept. See you then!"), nil
	}

	return reply("Please reply with 'YES' to confirm cancellation or 'NO' to keep the appointment."), nil
}
