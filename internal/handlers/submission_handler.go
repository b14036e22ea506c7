package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/huportal/events-api/internal/helpers"
	"github.com/huportal/events-api/internal/store"
	"github.com/huportal/events-api/internal/validation"
)

// SubmitPublicEvent is the open submission channel. No account is required;
// the submission always lands in the review queue regardless of any status
// or is_published value the caller tries to send.
func SubmitPublicEvent(c *gin.Context) {
	form, ok := parseSubmissionForm(c)
	if !ok {
		return
	}

	submission := validation.PublicSubmission{
		Title:           form.title,
		Description:     form.description,
		FullDescription: form.fullDescription,
		Category:        form.category,
		EventType:       form.eventType,
		Location:        form.location,
		LocationType:    form.locationType,
		VenueDetails:    form.venueDetails,
		Requirements:    form.requirements,
		WhatToBring:     form.whatToBring,
		StartDate:       form.startDate,
		EndDate:         form.endDate,
		MaxAttendees:    form.maxAttendees,
		OrganizerName:   form.organizerName,
		OrganizerEmail:  form.organizerEmail,
		OrganizerPhone:  form.organizerPhone,
	}

	event, err := submission.Normalize()
	if err != nil {
		respondValidationError(c, err)
		return
	}

	warning := attachBanner(c, event)

	gormDB, ok := getDB(c)
	if !ok {
		return
	}
	if err := store.New(gormDB).CreateEvent(event); err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, err.Error())
		return
	}

	response := gin.H{
		"message":  "Event submitted for review. You'll be able to see it once an admin approves it.",
		"event_id": event.ID,
	}
	if warning != "" {
		response["warning"] = warning
	}
	c.JSON(http.StatusCreated, response)
}
