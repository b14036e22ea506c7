package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"

	"github.com/huportal/events-api/internal/helpers"
	"github.com/huportal/events-api/internal/models"
	"github.com/huportal/events-api/internal/store"
)

func generateQRCodeData(registration *models.Registration) string {
	secretKey := os.Getenv("JWT_SECRET")
	signature := generateSignature(registration.ID, registration.EventID, registration.UserID, secretKey)
	return fmt.Sprintf("registration:%s;event:%s;signature:%s",
		registration.ID.String(),
		registration.EventID.String(),
		signature,
	)
}

func generateSignature(registrationID, eventID, userID uuid.UUID, secretKey string) string {
	data := fmt.Sprintf("%s:%s:%s", registrationID.String(), eventID.String(), userID.String())
	h := hmac.New(sha256.New, []byte(secretKey))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}

func extractRegistrationIDFromQRData(qrData string) (uuid.UUID, error) {
	parts := strings.Split(qrData, ";")
	if len(parts) != 3 || !strings.HasPrefix(parts[0], "registration:") || !strings.HasPrefix(parts[2], "signature:") {
		return uuid.Nil, fmt.Errorf("invalid QR data format")
	}
	return uuid.Parse(strings.TrimPrefix(parts[0], "registration:"))
}

func validateQRCodeSignature(registration *models.Registration, qrData string) bool {
	parts := strings.Split(qrData, ";")
	if len(parts) != 3 || !strings.HasPrefix(parts[2], "signature:") {
		return false
	}

	secretKey := os.Getenv("JWT_SECRET")
	signature := strings.TrimPrefix(parts[2], "signature:")
	expectedSignature := generateSignature(registration.ID, registration.EventID, registration.UserID, secretKey)
	return hmac.Equal([]byte(expectedSignature), []byte(signature))
}

// RegisterForEvent books the caller onto an event. Registering twice is a
// no-op that returns the existing record.
func RegisterForEvent(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "Please log in to register for this event.")
		return
	}

	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid event ID.")
		return
	}

	gormDB, ok := getDB(c)
	if !ok {
		return
	}

	registration, created, err := store.New(gormDB).Register(eventID, userID.(uuid.UUID))
	if err != nil {
		respondStoreError(c, err)
		return
	}

	if !created {
		c.JSON(http.StatusOK, gin.H{
			"message":      "You are already registered for this event.",
			"registration": registration,
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":      "Successfully registered for the event!",
		"registration": registration,
	})
}

func ListMyRegistrations(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	gormDB, ok := getDB(c)
	if !ok {
		return
	}

	registrations, err := store.New(gormDB).MyRegistrations(userID.(uuid.UUID))
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving registrations.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"registrations": registrations})
}

// ListEventRegistrations gives the event owner their attendee list.
func ListEventRegistrations(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

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

	if _, err := st.GetOwned(eventID, userID.(uuid.UUID)); err != nil {
		helpers.RespondWithError(c, http.StatusForbidden, "Event not found or you don't have permission to view its registrations.")
		return
	}

	registrations, err := st.ListRegistrations(eventID)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving registrations.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"registrations": registrations})
}

// GenerateRegistrationQR returns a signed QR code image for the caller's own
// registration, to be scanned at the door.
func GenerateRegistrationQR(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User not authenticated.")
		return
	}

	registrationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid registration ID.")
		return
	}

	gormDB, ok := getDB(c)
	if !ok {
		return
	}

	registration, err := store.New(gormDB).GetRegistration(registrationID)
	if err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Registration not found.")
		return
	}

	if registration.UserID != userID {
		helpers.RespondWithError(c, http.StatusForbidden, "You don't have permission to generate a QR code for this registration.")
		return
	}

	if registration.CheckedIn {
		helpers.RespondWithError(c, http.StatusForbidden, "Already checked in.")
		return
	}

	qrData := generateQRCodeData(registration)

	qrImage, err := qrcode.Encode(qrData, qrcode.Medium, 256)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to generate QR code.")
		return
	}

	c.Data(http.StatusOK, "image/png", qrImage)
}

// ValidateRegistration is the organizer-side scan: verifies the QR
// signature, checks ownership of the event, and flips checked_in once.
func ValidateRegistration(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User not authenticated.")
		return
	}

	gormDB, ok := getDB(c)
	if !ok {
		return
	}
	st := store.New(gormDB)

	var validationRequest struct {
		QRData string `json:"qr_data" binding:"required"`
	}
	if err := c.ShouldBindJSON(&validationRequest); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid request payload.")
		return
	}

	registrationID, err := extractRegistrationIDFromQRData(validationRequest.QRData)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid QR code format.")
		return
	}

	registration, err := st.GetRegistration(registrationID)
	if err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Registration not found.")
		return
	}

	if !validateQRCodeSignature(registration, validationRequest.QRData) {
		helpers.RespondWithError(c, http.StatusForbidden, "Invalid QR code signature.")
		return
	}

	if registration.Event.CreatedByID == nil || *registration.Event.CreatedByID != userID {
		helpers.RespondWithError(c, http.StatusForbidden, "You don't have permission to check in attendees for this event.")
		return
	}

	checkedIn, err := st.CheckIn(registrationID)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Attendee checked in successfully.",
		"registration": gin.H{
			"id":            checkedIn.ID,
			"event_title":   registration.Event.Title,
			"checked_in_at": checkedIn.CheckedInAt,
		},
	})
}
