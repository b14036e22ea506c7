package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/huportal/events-api/internal/helpers"
	"github.com/huportal/events-api/internal/store"
)

type StatusUpdateRequest struct {
	Action string `json:"action" binding:"required,oneof=approve reject"`
}

// ListPendingEvents is the admin review queue, oldest first.
func ListPendingEvents(c *gin.Context) {
	gormDB, ok := getDB(c)
	if !ok {
		return
	}

	events, err := store.New(gormDB).ListPending()
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving pending events.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events})
}

// UpdateEventStatus approves or rejects a pending submission. Approval
// publishes the event; rejection keeps it on record but never visible.
func UpdateEventStatus(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid event ID.")
		return
	}

	var req StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Action must be either approve or reject.")
		return
	}

	gormDB, ok := getDB(c)
	if !ok {
		return
	}
	st := store.New(gormDB)

	var event interface{}
	var outcome string
	if req.Action == "approve" {
		event, err = st.Approve(eventID)
		outcome = "approved"
	} else {
		event, err = st.Reject(eventID)
		outcome = "rejected"
	}
	if err != nil {
		respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Event " + outcome + " successfully.",
		"event":   event,
	})
}
