package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/huportal/events-api/internal/helpers"
	"github.com/huportal/events-api/internal/models"
	"github.com/huportal/events-api/internal/store"
	"github.com/huportal/events-api/internal/validation"
)

func getDB(c *gin.Context) (*gorm.DB, bool) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return nil, false
	}
	return db.(*gorm.DB), true
}

type submissionForm struct {
	title           string
	description     string
	fullDescription string
	category        string
	eventType       string
	location        string
	locationType    string
	venueDetails    string
	requirements    string
	whatToBring     string
	startDate       time.Time
	endDate         time.Time
	maxAttendees    int
	organizerName   string
	organizerEmail  string
	organizerPhone  string
}

func parseSubmissionForm(c *gin.Context) (*submissionForm, bool) {
	startDate, err := time.Parse(time.RFC3339, c.PostForm("start_date"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid start date format.")
		return nil, false
	}
	endDate, err := time.Parse(time.RFC3339, c.PostForm("end_date"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid end date format.")
		return nil, false
	}
	maxAttendees, err := helpers.StringToInt(c.DefaultPostForm("max_attendees", "0"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid maximum attendees.")
		return nil, false
	}

	return &submissionForm{
		title:           c.PostForm("title"),
		description:     c.PostForm("description"),
		fullDescription: c.PostForm("full_description"),
		category:        c.PostForm("category"),
		eventType:       c.PostForm("event_type"),
		location:        c.PostForm("location"),
		locationType:    c.PostForm("location_type"),
		venueDetails:    c.PostForm("venue_details"),
		requirements:    c.PostForm("requirements"),
		whatToBring:     c.PostForm("what_to_bring"),
		startDate:       startDate,
		endDate:         endDate,
		maxAttendees:    maxAttendees,
		organizerName:   c.PostForm("organizer_name"),
		organizerEmail:  c.PostForm("organizer_email"),
		organizerPhone:  c.PostForm("organizer_phone"),
	}, true
}

// attachBanner uploads the optional banner file. Upload failure never aborts
// a submission; the event is saved without an image and the warning is
// surfaced in the response.
func attachBanner(c *gin.Context, event *models.Event) string {
	bannerFile, err := c.FormFile("banner")
	if err != nil {
		return ""
	}
	bannerPath, err := helpers.UploadFile(c, bannerFile, "event_banners")
	if err != nil {
		log.Printf("banner upload failed for %q: %v", event.Title, err)
		return "Banner upload failed; event saved without an image."
	}
	event.BannerURL = bannerPath
	return ""
}

func CreateEvent(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	form, ok := parseSubmissionForm(c)
	if !ok {
		return
	}

	submission := validation.AuthenticatedSubmission{
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
		IsPublished:     c.DefaultPostForm("is_published", "false") == "true",
	}

	event, err := submission.Normalize(userID.(uuid.UUID))
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
		"message":  "Event created successfully.",
		"event_id": event.ID,
	}
	if warning != "" {
		response["warning"] = warning
	}
	c.JSON(http.StatusCreated, response)
}

func ListEvents(c *gin.Context) {
	gormDB, ok := getDB(c)
	if !ok {
		return
	}

	filters := store.EventFilters{
		Category:  c.Query("category"),
		EventType: c.Query("type"),
		Location:  c.Query("location"),
		DateRange: c.Query("date"),
	}
	if email, exists := c.Get("user_email"); exists {
		filters.ViewerEmail = email.(string)
	}

	events, err := store.New(gormDB).ListPublished(filters)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving events.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"events": events,
		"total":  len(events),
	})
}

func GetEvent(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid event ID.")
		return
	}

	gormDB, ok := getDB(c)
	if !ok {
		return
	}
	st := store.New(gormDB)

	event, err := st.GetPublished(eventID)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	count, err := st.CountApproved(eventID)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error counting registrations.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"event":              event,
		"registration_count": count,
	})
}

func ListMyEvents(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	gormDB, ok := getDB(c)
	if !ok {
		return
	}

	events, err := store.New(gormDB).ListMine(userID.(uuid.UUID))
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving events.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events})
}

func UpdateEvent(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid event ID.")
		return
	}
	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	form, ok := parseSubmissionForm(c)
	if !ok {
		return
	}

	gormDB, ok := getDB(c)
	if !ok {
		return
	}
	st := store.New(gormDB)

	event, err := st.GetOwned(eventID, userID.(uuid.UUID))
	if err != nil {
		if err == store.ErrNotFound {
			helpers.RespondWithError(c, http.StatusForbidden, "Event not found or you don't have permission to update.")
			return
		}
		respondStoreError(c, err)
		return
	}

	submission := validation.AuthenticatedSubmission{
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
		IsPublished:     c.DefaultPostForm("is_published", "false") == "true",
	}

	updated, err := submission.Normalize(userID.(uuid.UUID))
	if err != nil {
		respondValidationError(c, err)
		return
	}

	event.Title = updated.Title
	event.Description = updated.Description
	event.FullDescription = updated.FullDescription
	event.Category = updated.Category
	event.EventType = updated.EventType
	event.Location = updated.Location
	event.LocationType = updated.LocationType
	event.VenueDetails = updated.VenueDetails
	event.Requirements = updated.Requirements
	event.WhatToBring = updated.WhatToBring
	event.StartDate = updated.StartDate
	event.EndDate = updated.EndDate
	event.MaxAttendees = updated.MaxAttendees
	event.OrganizerName = updated.OrganizerName
	event.OrganizerEmail = updated.OrganizerEmail
	event.OrganizerPhone = updated.OrganizerPhone

	// Self-publish toggle. Only authenticated-channel events may flip the
	// flag freely; approved and rejected are terminal for public ones.
	if event.SubmissionType == models.SubmissionAuthenticated {
		event.IsPublished = updated.IsPublished
		event.Status = updated.Status
	}

	bannerFile, err := c.FormFile("banner")
	if err == nil {
		bannerPath, uploadErr := helpers.UploadFile(c, bannerFile, "event_banners")
		if uploadErr != nil {
			log.Printf("banner upload failed for %q: %v", event.Title, uploadErr)
		} else {
			if event.BannerURL != "" {
				if err := helpers.DeleteFile(event.BannerURL); err != nil {
					log.Printf("error deleting old banner: %v", err)
				}
			}
			event.BannerURL = bannerPath
		}
	}

	if err := st.SaveEvent(event); err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Event updated successfully.",
		"event":   event,
	})
}

func DeleteEvent(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid event ID.")
		return
	}
	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	gormDB, ok := getDB(c)
	if !ok {
		return
	}

	if err := store.New(gormDB).DeleteEvent(eventID, userID.(uuid.UUID)); err != nil {
		if err == store.ErrNotFound {
			helpers.RespondWithError(c, http.StatusForbidden, "Event not found or you don't have permission to delete.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to delete event.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Event deleted successfully.",
	})
}
