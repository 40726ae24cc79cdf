// Package conversation runs the per-customer booking and cancellation
// dialogs.
package conversation

import (
	"time"

	"github.com/BruksfildServices01/barber-assistant/internal/interpreter"
)

type Step string

const (
	StepIdle                Step = "idle"
	StepBookingService      Step = "booking_service"
	StepBookingDate         Step = "booking_date"
	StepBookingTime         Step = "booking_time"
	StepBookingBarber       Step = "booking_barber"
	StepBookingConfirmation Step = "booking_confirmation"
	StepCancelSelect        Step = "cancel_select"
	StepCancelConfirmation  Step = "cancel_confirmation"
)

// Option is one numbered entry of a list shown to the customer.
type Option struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Snapshot is an upcoming appointment as presented in the cancel flow.
type Snapshot struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	ServiceName string `json:"service_name"`
	BarberName  string `json:"barber_name"`
}

// Data is the per-dialog scratch space. Lists hold exactly what was last
// presented so numeric replies resolve against what the customer saw.
type Data struct {
	ServiceID   string `json:"service_id,omitempty"`
	ServiceName string `json:"service_name,omitempty"`
	Date        string `json:"date,omitempty"`
	Time        string `json:"time,omitempty"`
	BarberID    string `json:"barber_id,omitempty"`
	BarberName  string `json:"barber_name,omitempty"`

	Services     []Option   `json:"services,omitempty"`
	Slots        []string   `json:"slots,omitempty"`
	Barbers      []Option   `json:"barbers,omitempty"`
	Appointments []Snapshot `json:"appointments,omitempty"`

	AppointmentID string `json:"appointment_id,omitempty"`

	Extracted interpreter.Entities `json:"extracted"`
}

type State struct {
	Phone     string                `json:"phone"`
	Step      Step                  `json:"step"`
	Data      Data                  `json:"data"`
	History   []interpreter.Message `json:"history"`
	UpdatedAt time.Time             `json:"updated_at"`
}

func NewState(phone string) State {
	return State{Phone: phone, Step: StepIdle}
}

// Reset returns the dialog to idle and clears its scratch data. History
// is kept.
func (s *State) Reset() {
	s.Step = StepIdle
	s.Data = Data{}
}

// Remember appends to history, keeping at most limit entries.
func (s *State) Remember(role interpreter.Role, content string, limit int) {
	if content == "" {
		return
	}
	s.History = append(s.History, interpreter.Message{Role: role, Content: content})
	if limit > 0 && len(s.History) > limit {
		s.History = append([]interpreter.Message(nil), s.History[len(s.History)-limit:]...)
	}
}

func (s State) clone() State {
	d := s.Data
	d.Services = append([]Option(nil), d.Services...)
	d.Slots = append([]string(nil), d.Slots...)
	d.Barbers = append([]Option(nil), d.Barbers...)
	d.Appointments = append([]Snapshot(nil), d.Appointments...)
	s.Data = d
	s.History = append([]interpreter.Message(nil), s.History...)
	return s
}
