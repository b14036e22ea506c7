package server

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/huportal/events-api/internal/models"
)

const testSecret = "test-secret"

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	t.Setenv("JWT_SECRET", testSecret)
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to access sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.Role{}, &models.User{}, &models.Event{}, &models.Registration{}); err != nil {
		t.Fatalf("Failed to migrate test db: %v", err)
	}
	for _, name := range []string{"organizer", "attendee", "admin"} {
		if err := db.Create(&models.Role{Name: name}).Error; err != nil {
			t.Fatalf("Failed to seed role %q: %v", name, err)
		}
	}

	r := gin.New()
	setupRoutes(r, db)
	return r, db
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, payload interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("Failed to marshal payload: %v", err)
		}
		body = bytes.NewBuffer(data)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var decoded map[string]interface{}
	if w.Body.Len() > 0 && strings.Contains(w.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("Failed to decode response %q: %v", w.Body.String(), err)
		}
	}
	return w, decoded
}

func doForm(t *testing.T, r *gin.Engine, method, path, token string, form url.Values) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var decoded map[string]interface{}
	if w.Body.Len() > 0 && strings.Contains(w.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("Failed to decode response %q: %v", w.Body.String(), err)
		}
	}
	return w, decoded
}

func signUpAndLogin(t *testing.T, r *gin.Engine, name, email, roleName string) string {
	t.Helper()
	w, _ := doJSON(t, r, http.MethodPost, "/v1/register", "", gin.H{
		"name":      name,
		"email":     email,
		"password":  "secret123",
		"role_name": roleName,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Register for %s returned %d: %s", email, w.Code, w.Body.String())
	}
	return login(t, r, email, "secret123")
}

func login(t *testing.T, r *gin.Engine, email, password string) string {
	t.Helper()
	w, body := doJSON(t, r, http.MethodPost, "/v1/login", "", gin.H{
		"email":    email,
		"password": password,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Login for %s returned %d: %s", email, w.Code, w.Body.String())
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatalf("Login returned no token")
	}
	return token
}

func createAdmin(t *testing.T, db *gorm.DB, r *gin.Engine, email string) string {
	t.Helper()
	var role models.Role
	if err := db.Where("name = ?", "admin").First(&role).Error; err != nil {
		t.Fatalf("Admin role missing: %v", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte("admin-pass"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	admin := models.User{Name: "Admin", Email: email, Password: string(hash), RoleID: role.ID}
	if err := db.Create(&admin).Error; err != nil {
		t.Fatalf("Failed to create admin: %v", err)
	}
	return login(t, r, email, "admin-pass")
}

func eventForm(title string, maxAttendees int) url.Values {
	start := time.Now().Add(48 * time.Hour).Format(time.RFC3339)
	end := time.Now().Add(52 * time.Hour).Format(time.RFC3339)
	return url.Values{
		"title":            {title},
		"description":      {"A gathering of local gophers."},
		"full_description": {strings.Repeat("Talks, pizza, and hallway conversations for everyone. ", 2)},
		"category":         {"meetup"},
		"event_type":       {"offline"},
		"location":         {"Boston, MA"},
		"start_date":       {start},
		"end_date":         {end},
		"max_attendees":    {fmt.Sprintf("%d", maxAttendees)},
		"organizer_name":   {"Jordan Smith"},
		"organizer_email":  {"jordan@example.com"},
	}
}

func listedEventCount(t *testing.T, r *gin.Engine, token string) int {
	t.Helper()
	w, body := doJSON(t, r, http.MethodGet, "/v1/events", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("List events returned %d: %s", w.Code, w.Body.String())
	}
	events, _ := body["events"].([]interface{})
	return len(events)
}

func TestEventLifecycleOverHTTP(t *testing.T) {
	r, db := newTestRouter(t)

	organizerToken := signUpAndLogin(t, r, "Jordan", "jordan@example.com", "organizer")
	attendeeToken := signUpAndLogin(t, r, "Sam", "sam@example.com", "attendee")
	adminToken := createAdmin(t, db, r, "admin@example.com")

	// Authenticated self-publish.
	form := eventForm("Go Meetup", 50)
	form.Set("is_published", "true")
	w, body := doForm(t, r, http.MethodPost, "/v1/events", organizerToken, form)
	if w.Code != http.StatusCreated {
		t.Fatalf("Create event returned %d: %s", w.Code, w.Body.String())
	}
	meetupID, _ := body["event_id"].(string)

	if got := listedEventCount(t, r, ""); got != 1 {
		t.Fatalf("Anonymous listing should show 1 event, got %d", got)
	}

	// Public submission attempting to self-publish; the override is ignored
	// and the event enters the review queue.
	publicForm := eventForm("Community Picnic", 1)
	publicForm.Set("organizer_email", "sam@example.com")
	publicForm.Set("is_published", "true")
	publicForm.Set("status", "approved")
	w, body = doForm(t, r, http.MethodPost, "/v1/submissions", "", publicForm)
	if w.Code != http.StatusCreated {
		t.Fatalf("Public submission returned %d: %s", w.Code, w.Body.String())
	}
	picnicID, _ := body["event_id"].(string)

	if got := listedEventCount(t, r, ""); got != 1 {
		t.Errorf("Pending submission must not be publicly listed, got %d events", got)
	}
	// Submitter sees their own pending event, matched by organizer email.
	if got := listedEventCount(t, r, attendeeToken); got != 2 {
		t.Errorf("Submitter should see their pending event, got %d events", got)
	}
	// Other signed-in users do not.
	if got := listedEventCount(t, r, organizerToken); got != 1 {
		t.Errorf("Unrelated viewer must not see the pending event, got %d events", got)
	}

	// Publish gate on single reads.
	w, _ = doJSON(t, r, http.MethodGet, "/v1/events/"+picnicID, "", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Unpublished event read should be 404, got %d", w.Code)
	}

	// Admin gate.
	w, _ = doJSON(t, r, http.MethodPatch, "/v1/admin/events/"+picnicID+"/status", attendeeToken, gin.H{"action": "approve"})
	if w.Code != http.StatusForbidden {
		t.Errorf("Non-admin approval should be 403, got %d", w.Code)
	}

	w, _ = doJSON(t, r, http.MethodPatch, "/v1/admin/events/"+picnicID+"/status", adminToken, gin.H{"action": "approve"})
	if w.Code != http.StatusOK {
		t.Fatalf("Approval returned %d: %s", w.Code, w.Body.String())
	}

	if got := listedEventCount(t, r, ""); got != 2 {
		t.Errorf("Approved event should be publicly listed, got %d events", got)
	}

	// Approval is terminal.
	w, _ = doJSON(t, r, http.MethodPatch, "/v1/admin/events/"+picnicID+"/status", adminToken, gin.H{"action": "approve"})
	if w.Code != http.StatusConflict {
		t.Errorf("Re-approval should be 409, got %d", w.Code)
	}

	// Registration requires a session.
	w, _ = doJSON(t, r, http.MethodPost, "/v1/events/"+picnicID+"/registrations", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Anonymous registration should be 401, got %d", w.Code)
	}

	w, _ = doJSON(t, r, http.MethodPost, "/v1/events/"+picnicID+"/registrations", attendeeToken, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("Registration returned %d: %s", w.Code, w.Body.String())
	}

	// Idempotent resubmission.
	w, body = doJSON(t, r, http.MethodPost, "/v1/events/"+picnicID+"/registrations", attendeeToken, nil)
	if w.Code != http.StatusOK {
		t.Errorf("Re-registration should be a 200 no-op, got %d: %s", w.Code, w.Body.String())
	}

	// Single seat taken: next account is refused.
	w, _ = doJSON(t, r, http.MethodPost, "/v1/events/"+picnicID+"/registrations", organizerToken, nil)
	if w.Code != http.StatusConflict {
		t.Errorf("Registration on a full event should be 409, got %d", w.Code)
	}

	w, body = doJSON(t, r, http.MethodGet, "/v1/events/"+picnicID, "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Event read returned %d", w.Code)
	}
	if count, _ := body["registration_count"].(float64); count != 1 {
		t.Errorf("Expected registration_count=1, got %v", body["registration_count"])
	}

	// The self-published event never needed the approval gate.
	w, _ = doJSON(t, r, http.MethodGet, "/v1/events/"+meetupID, "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("Self-published event should be publicly readable, got %d", w.Code)
	}
}

func TestCheckInOverHTTP(t *testing.T) {
	r, _ := newTestRouter(t)

	organizerToken := signUpAndLogin(t, r, "Jordan", "jordan@example.com", "organizer")
	attendeeToken := signUpAndLogin(t, r, "Sam", "sam@example.com", "attendee")

	form := eventForm("Go Meetup", 50)
	form.Set("is_published", "true")
	w, body := doForm(t, r, http.MethodPost, "/v1/events", organizerToken, form)
	if w.Code != http.StatusCreated {
		t.Fatalf("Create event returned %d: %s", w.Code, w.Body.String())
	}
	eventID, _ := body["event_id"].(string)

	w, body = doJSON(t, r, http.MethodPost, "/v1/events/"+eventID+"/registrations", attendeeToken, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("Registration returned %d: %s", w.Code, w.Body.String())
	}
	registration, _ := body["registration"].(map[string]interface{})
	registrationID, _ := registration["id"].(string)
	attendeeID, _ := registration["user_id"].(string)

	// Attendee fetches their door code.
	req := httptest.NewRequest(http.MethodGet, "/v1/registrations/"+registrationID+"/qr", nil)
	req.Header.Set("Authorization", "Bearer "+attendeeToken)
	qr := httptest.NewRecorder()
	r.ServeHTTP(qr, req)
	if qr.Code != http.StatusOK || qr.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("QR generation returned %d (%s)", qr.Code, qr.Header().Get("Content-Type"))
	}

	// Organizer scans. The payload mirrors what the QR image encodes.
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte(fmt.Sprintf("%s:%s:%s", registrationID, eventID, attendeeID)))
	qrData := fmt.Sprintf("registration:%s;event:%s;signature:%s",
		registrationID, eventID, hex.EncodeToString(mac.Sum(nil)))

	// Only the event owner may check attendees in.
	w, _ = doJSON(t, r, http.MethodPost, "/v1/registrations/validate", attendeeToken, gin.H{"qr_data": qrData})
	if w.Code != http.StatusForbidden {
		t.Errorf("Non-owner check-in should be 403, got %d", w.Code)
	}

	w, _ = doJSON(t, r, http.MethodPost, "/v1/registrations/validate", organizerToken, gin.H{"qr_data": qrData})
	if w.Code != http.StatusOK {
		t.Fatalf("Check-in returned %d: %s", w.Code, w.Body.String())
	}

	// checked_in is one-way.
	w, _ = doJSON(t, r, http.MethodPost, "/v1/registrations/validate", organizerToken, gin.H{"qr_data": qrData})
	if w.Code != http.StatusConflict {
		t.Errorf("Second check-in should be 409, got %d", w.Code)
	}

	// A used registration no longer yields a QR code.
	req = httptest.NewRequest(http.MethodGet, "/v1/registrations/"+registrationID+"/qr", nil)
	req.Header.Set("Authorization", "Bearer "+attendeeToken)
	qr = httptest.NewRecorder()
	r.ServeHTTP(qr, req)
	if qr.Code != http.StatusForbidden {
		t.Errorf("QR for a checked-in registration should be 403, got %d", qr.Code)
	}
}

func TestSubmissionValidationOverHTTP(t *testing.T) {
	r, _ := newTestRouter(t)

	form := eventForm("Community Picnic", 10)
	form.Set("title", "Go") // too short
	w, body := doForm(t, r, http.MethodPost, "/v1/submissions", "", form)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for short title, got %d", w.Code)
	}
	if field, _ := body["field"].(string); field != "title" {
		t.Errorf("Expected the offending field to be named, got %q", field)
	}

	// Public channel requires the longer full description.
	form = eventForm("Community Picnic", 10)
	form.Set("full_description", "")
	w, body = doForm(t, r, http.MethodPost, "/v1/submissions", "", form)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for missing full description, got %d", w.Code)
	}
	if field, _ := body["field"].(string); field != "full_description" {
		t.Errorf("Expected full_description violation, got %q", field)
	}
}
