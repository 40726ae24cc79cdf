package models

import "time"

// Appointment stores date and time as wall-clock strings in the business
// timezone ("2006-01-02" and "15:04").
type Appointment struct {
	ID string `gorm:"primaryKey;size:36" json:"id"`

	CustomerID string `gorm:"size:36;index;not null" json:"customer_id"`
	BarberID   string `gorm:"size:36;index;not null" json:"barber_id"`
	ServiceID  string `gorm:"size:36;not null" json:"service_id"`

	Date        string `gorm:"size:10;index;not null" json:"date"`
	Time        string `gorm:"size:5;not null" json:"time"`
	DurationMin int    `json:"duration_min"`

	Status string `gorm:"size:20;not null;default:'scheduled'" json:"status"`

	Notes       string     `gorm:"size:255" json:"notes"`
	CancelledAt *time.Time `json:"cancelled_at"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
