package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/huportal/events-api/internal/helpers"
	"github.com/huportal/events-api/internal/store"
	"github.com/huportal/events-api/internal/validation"
)

// respondStoreError maps store failures to HTTP statuses. Unknown errors are
// persistence failures and are surfaced with the raw backend message.
func respondStoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
	case errors.Is(err, store.ErrEventFull):
		helpers.RespondWithError(c, http.StatusConflict, "This event is full.")
	case errors.Is(err, store.ErrEventEnded):
		helpers.RespondWithError(c, http.StatusGone, "This event has already ended.")
	case errors.Is(err, store.ErrNotPending):
		helpers.RespondWithError(c, http.StatusConflict, "Event is not awaiting review.")
	case errors.Is(err, store.ErrAlreadyCheckedIn):
		helpers.RespondWithError(c, http.StatusConflict, "Registration already checked in.")
	default:
		helpers.RespondWithError(c, http.StatusInternalServerError, err.Error())
	}
}

// respondValidationError names the offending field when the validator
// produced one; anything else is a generic bad request.
func respondValidationError(c *gin.Context, err error) {
	var ve *validation.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   http.StatusText(http.StatusBadRequest),
			"field":   ve.Field,
			"message": ve.Message,
		})
		return
	}
	helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
}
