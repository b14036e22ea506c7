package validation

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/huportal/events-api/internal/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidationError reports the first offending field of a submission.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func firstViolation(err error) error {
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return err
	}
	fe := errs[0]
	var msg string
	switch fe.Tag() {
	case "required":
		msg = "is required"
	case "min":
		if fe.Kind() == reflect.String {
			msg = fmt.Sprintf("must be at least %s characters", fe.Param())
		} else {
			msg = fmt.Sprintf("must be at least %s", fe.Param())
		}
	case "email":
		msg = "must be a valid email address"
	case "oneof":
		msg = fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		msg = fmt.Sprintf("failed %s validation", fe.Tag())
	}
	return &ValidationError{Field: fe.Field(), Message: msg}
}

// AuthenticatedSubmission is the dashboard submission shape. The caller
// controls is_published (draft vs immediate publish) and the event is owned
// by the submitting account.
type AuthenticatedSubmission struct {
	Title           string    `json:"title" validate:"required,min=3"`
	Description     string    `json:"description" validate:"required,min=10"`
	FullDescription string    `json:"full_description" validate:"omitempty,min=50"`
	Category        string    `json:"category" validate:"required,min=2"`
	EventType       string    `json:"event_type" validate:"required,oneof=online offline hybrid"`
	Location        string    `json:"location" validate:"required,min=2"`
	LocationType    string    `json:"location_type" validate:"omitempty,oneof=online in_person hybrid"`
	VenueDetails    string    `json:"venue_details"`
	Requirements    string    `json:"requirements"`
	WhatToBring     string    `json:"what_to_bring"`
	StartDate       time.Time `json:"start_date" validate:"required"`
	EndDate         time.Time `json:"end_date" validate:"required"`
	MaxAttendees    int       `json:"max_attendees" validate:"required,min=1"`
	OrganizerName   string    `json:"organizer_name" validate:"required,min=2"`
	OrganizerEmail  string    `json:"organizer_email" validate:"required,email"`
	OrganizerPhone  string    `json:"organizer_phone"`
	IsPublished     bool      `json:"is_published"`
}

// Normalize validates the submission and produces the canonical event record
// for the authenticated channel.
func (s *AuthenticatedSubmission) Normalize(ownerID uuid.UUID) (*models.Event, error) {
	if err := firstViolation(validate.Struct(s)); err != nil {
		return nil, err
	}

	status := models.StatusDraft
	if s.IsPublished {
		status = models.StatusApproved
	}

	max := s.MaxAttendees
	return &models.Event{
		Title:           s.Title,
		Description:     s.Description,
		FullDescription: s.FullDescription,
		Category:        s.Category,
		EventType:       s.EventType,
		Location:        s.Location,
		LocationType:    s.LocationType,
		VenueDetails:    s.VenueDetails,
		Requirements:    s.Requirements,
		WhatToBring:     s.WhatToBring,
		StartDate:       s.StartDate,
		EndDate:         s.EndDate,
		MaxAttendees:    &max,
		IsPublished:     s.IsPublished,
		Status:          status,
		SubmissionType:  models.SubmissionAuthenticated,
		OrganizerName:   s.OrganizerName,
		OrganizerEmail:  s.OrganizerEmail,
		OrganizerPhone:  s.OrganizerPhone,
		CreatedByID:     &ownerID,
	}, nil
}

// PublicSubmission is the open submission form. It carries no account
// linkage, requires a longer full description, and always enters the review
// queue: status and is_published are forced here no matter what the caller
// sent alongside.
type PublicSubmission struct {
	Title           string    `json:"title" validate:"required,min=3"`
	Description     string    `json:"description" validate:"required,min=10"`
	FullDescription string    `json:"full_description" validate:"required,min=50"`
	Category        string    `json:"category" validate:"required,min=2"`
	EventType       string    `json:"event_type" validate:"required,oneof=online offline hybrid"`
	Location        string    `json:"location" validate:"required,min=2"`
	LocationType    string    `json:"location_type" validate:"omitempty,oneof=online in_person hybrid"`
	VenueDetails    string    `json:"venue_details"`
	Requirements    string    `json:"requirements"`
	WhatToBring     string    `json:"what_to_bring"`
	StartDate       time.Time `json:"start_date" validate:"required"`
	EndDate         time.Time `json:"end_date" validate:"required"`
	MaxAttendees    int       `json:"max_attendees" validate:"required,min=1"`
	OrganizerName   string    `json:"organizer_name" validate:"required,min=2"`
	OrganizerEmail  string    `json:"organizer_email" validate:"required,email"`
	OrganizerPhone  string    `json:"organizer_phone"`
}

// Normalize validates the submission and produces the canonical event record
// for the public channel.
func (s *PublicSubmission) Normalize() (*models.Event, error) {
	if err := firstViolation(validate.Struct(s)); err != nil {
		return nil, err
	}

	max := s.MaxAttendees
	return &models.Event{
		Title:           s.Title,
		Description:     s.Description,
		FullDescription: s.FullDescription,
		Category:        s.Category,
		EventType:       s.EventType,
		Location:        s.Location,
		LocationType:    s.LocationType,
		VenueDetails:    s.VenueDetails,
		Requirements:    s.Requirements,
		WhatToBring:     s.WhatToBring,
		StartDate:       s.StartDate,
		EndDate:         s.EndDate,
		MaxAttendees:    &max,
		IsPublished:     false,
		Status:          models.StatusPending,
		SubmissionType:  models.SubmissionPublic,
		OrganizerName:   s.OrganizerName,
		OrganizerEmail:  s.OrganizerEmail,
		OrganizerPhone:  s.OrganizerPhone,
	}, nil
}
