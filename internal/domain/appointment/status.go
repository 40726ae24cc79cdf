package appointment

import "github.com/BruksfildServices01/barber-assistant/internal/apperr"

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
	StatusNoShow    Status = "no-show"
)

func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusCancelled, StatusCompleted, StatusNoShow:
		return true
	}
	return false
}

// Blocks reports whether an appointment in this status occupies its slot.
func (s Status) Blocks() bool {
	return s == StatusScheduled
}

// ===============================
// Validations
// ===============================

// CanTransition allows only scheduled -> {cancelled, completed, no-show}.
func CanTransition(from, to Status) error {
	if !to.Valid() {
		return apperr.Validation("invalid_status")
	}
	if from != StatusScheduled || to == StatusScheduled {
		return apperr.Conflict("invalid_state")
	}
	return nil
}

func InitialStatus() Status {
	return StatusScheduled
}
