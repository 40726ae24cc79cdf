// Package notifier tells customers (and downstream systems) about booking
// events outside the chat turn that caused them.
package notifier

import (
	"context"
	"errors"
	"fmt"
)

type Kind string

const (
	KindBooked    Kind = "booked"
	KindCancelled Kind = "cancelled"
	KindReminder  Kind = "reminder"
)

// Origin says who triggered the event. Customers already see chat-born
// events in their conversation.
const (
	OriginChat     = "chat"
	OriginOperator = "operator"
)

type Event struct {
	Kind          Kind   `json:"kind"`
	Origin        string `json:"origin"`
	AppointmentID string `json:"appointment_id"`
	Phone         string `json:"phone"`
	CustomerName  string `json:"customer_name"`
	ServiceName   string `json:"service_name"`
	BarberName    string `json:"barber_name"`
	Date          string `json:"date"`
	Time          string `json:"time"`
}

type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

// Message renders the customer-facing text for ev.
func Message(ev Event) string {
	switch ev.Kind {
	case KindBooked:
		return fmt.Sprintf(
			"Your %s with %s is booked for %s at %s.",
			ev.ServiceName, ev.BarberName, ev.Date, ev.Time,
		)
	case KindCancelled:
		return fmt.Sprintf(
			"Your appointment on %s at %s has been cancelled.",
			ev.Date, ev.Time,
		)
	case KindReminder:
		return fmt.Sprintf(
			"Reminder: you have a %s with %s on %s at %s. Send CANCEL if you can't make it.",
			ev.ServiceName, ev.BarberName, ev.Date, ev.Time,
		)
	}
	return ""
}

// --------------------------------------------------
// Fan-out / no-op
// --------------------------------------------------

// Multi delivers to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, ev Event) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type Noop struct{}

func (Noop) Notify(context.Context, Event) error { return nil }
