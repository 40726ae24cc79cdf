package models

import "time"

type Barber struct {
	ID string `gorm:"primaryKey;size:36" json:"id"`

	Name  string `gorm:"size:100;not null" json:"name"`
	Phone string `gorm:"size:20" json:"phone"`
	Email string `gorm:"size:100" json:"email"`

	Specialties []string `gorm:"serializer:json" json:"specialties"`

	// WorkingHours is keyed by lowercase weekday name ("monday").
	// An empty map means the default window every day; a non-empty map
	// without an entry (or with a nil entry) for a day means not working.
	WorkingHours map[string]*TimeRange `gorm:"serializer:json" json:"working_hours"`

	Active bool `gorm:"not null" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
