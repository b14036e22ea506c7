package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RegistrationPending    = "pending"
	RegistrationApproved   = "approved"
	RegistrationRejected   = "rejected"
	RegistrationWaitlisted = "waitlisted"
)

type Registration struct {
	gorm.Model
	ID           uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	EventID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_event_user" json:"event_id"`
	Event        Event      `json:"-"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_event_user" json:"user_id"`
	User         User       `json:"-"`
	Status       string     `gorm:"not null;default:'approved'" json:"status"`
	RegisteredAt time.Time  `gorm:"not null" json:"registered_at"`
	CheckedIn    bool       `gorm:"not null;default:false" json:"checked_in"`
	CheckedInAt  *time.Time `json:"checked_in_at,omitempty"`
}

func (Registration) TableName() string {
	return "event_registrations"
}

func (registration *Registration) BeforeCreate(tx *gorm.DB) (err error) {
	if registration.ID == uuid.Nil {
		registration.ID = uuid.New()
	}
	return
}
