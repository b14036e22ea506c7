package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusDraft    = "draft"
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

const (
	SubmissionAuthenticated = "authenticated"
	SubmissionPublic        = "public"
)

const (
	EventTypeOnline  = "online"
	EventTypeOffline = "offline"
	EventTypeHybrid  = "hybrid"
)

type Event struct {
	gorm.Model
	ID              uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	Title           string     `gorm:"not null" json:"title"`
	Description     string     `gorm:"not null" json:"description"`
	FullDescription string     `json:"full_description,omitempty"`
	Category        string     `gorm:"not null;index" json:"category"`
	EventType       string     `gorm:"not null" json:"event_type"`
	Location        string     `gorm:"not null" json:"location"`
	LocationType    string     `json:"location_type,omitempty"`
	VenueDetails    string     `json:"venue_details,omitempty"`
	Requirements    string     `json:"requirements,omitempty"`
	WhatToBring     string     `json:"what_to_bring,omitempty"`
	StartDate       time.Time  `gorm:"not null;index" json:"start_date"`
	EndDate         time.Time  `gorm:"not null" json:"end_date"`
	MaxAttendees    *int       `json:"max_attendees"`
	BannerURL       string     `json:"banner_url,omitempty"`
	IsPublished     bool       `gorm:"not null;default:false;index" json:"is_published"`
	Status          string     `gorm:"index" json:"status,omitempty"`
	SubmissionType  string     `json:"submission_type,omitempty"`
	OrganizerName   string     `json:"organizer_name,omitempty"`
	OrganizerEmail  string     `gorm:"index" json:"organizer_email,omitempty"`
	OrganizerPhone  string     `json:"organizer_phone,omitempty"`
	CreatedByID     *uuid.UUID `gorm:"column:created_by;type:uuid;index" json:"created_by,omitempty"`
	CreatedBy       *User      `gorm:"foreignKey:CreatedByID" json:"-"`
}

func (event *Event) BeforeCreate(tx *gorm.DB) (err error) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	return
}
