package store

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/huportal/events-api/internal/helpers"
	"github.com/huportal/events-api/internal/models"
)

// EventFilters narrows the public listing. Zero values mean "no filter".
type EventFilters struct {
	Category  string
	EventType string
	Location  string
	DateRange string // today | this-week | this-month

	// ViewerEmail adds the viewer's own pending submissions to the result,
	// matched by organizer email.
	ViewerEmail string
}

func (s *Store) CreateEvent(event *models.Event) error {
	return s.db.Create(event).Error
}

// ListPublished returns published events matching the filters, ordered by
// start date ascending. When a viewer email is supplied their own pending
// submissions are included as well; no other unpublished event is ever
// returned.
func (s *Store) ListPublished(filters EventFilters) ([]models.Event, error) {
	query := s.db.Model(&models.Event{})

	if filters.ViewerEmail != "" {
		query = query.Where(
			s.db.Where("is_published = ?", true).
				Or("organizer_email = ? AND status = ?", filters.ViewerEmail, models.StatusPending),
		)
	} else {
		query = query.Where("is_published = ?", true)
	}

	if filters.Category != "" && filters.Category != "all" {
		query = query.Where("category = ?", filters.Category)
	}
	if filters.EventType != "" && filters.EventType != "all" {
		query = query.Where("event_type = ?", filters.EventType)
	}
	if filters.Location != "" {
		query = query.Where("LOWER(location) LIKE ?", "%"+strings.ToLower(filters.Location)+"%")
	}
	if from, until, ok := helpers.DateWindow(filters.DateRange, time.Now()); ok {
		query = query.Where("start_date >= ? AND start_date < ?", from, until)
	}

	var events []models.Event
	if err := query.Order("start_date ASC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// GetPublished returns a single published event. Unpublished events report
// ErrNotFound whether or not they exist; the publish gate is an access
// boundary, not an integrity check.
func (s *Store) GetPublished(id uuid.UUID) (*models.Event, error) {
	var event models.Event
	err := s.db.Where("id = ? AND is_published = ?", id, true).First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// GetOwned returns an event only if it is owned by the given account.
func (s *Store) GetOwned(id, ownerID uuid.UUID) (*models.Event, error) {
	var event models.Event
	err := s.db.Where("id = ? AND created_by = ?", id, ownerID).First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// ListMine returns every event owned by the account, drafts included.
func (s *Store) ListMine(ownerID uuid.UUID) ([]models.Event, error) {
	var events []models.Event
	err := s.db.Where("created_by = ?", ownerID).Order("start_date ASC").Find(&events).Error
	return events, err
}

func (s *Store) SaveEvent(event *models.Event) error {
	return s.db.Save(event).Error
}

// DeleteEvent removes an event owned by the account. Reports ErrNotFound
// when the event does not exist or belongs to someone else.
func (s *Store) DeleteEvent(id, ownerID uuid.UUID) error {
	result := s.db.Where("id = ? AND created_by = ?", id, ownerID).Delete(&models.Event{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListPending returns the admin review queue, oldest submission first.
func (s *Store) ListPending() ([]models.Event, error) {
	var events []models.Event
	err := s.db.Where("status = ?", models.StatusPending).Order("created_at ASC").Find(&events).Error
	return events, err
}

// Approve moves a pending event to approved and publishes it. The status
// and publish flag change in a single UPDATE so no intermediate state is
// observable. Non-pending events report ErrNotPending.
func (s *Store) Approve(id uuid.UUID) (*models.Event, error) {
	return s.setStatus(id, models.StatusApproved, true)
}

// Reject moves a pending event to rejected. The record is kept for audit;
// it just never becomes publicly visible.
func (s *Store) Reject(id uuid.UUID) (*models.Event, error) {
	return s.setStatus(id, models.StatusRejected, false)
}

func (s *Store) setStatus(id uuid.UUID, status string, publish bool) (*models.Event, error) {
	result := s.db.Model(&models.Event{}).
		Where("id = ? AND status = ?", id, models.StatusPending).
		Updates(map[string]interface{}{"status": status, "is_published": publish})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		var event models.Event
		if err := s.db.Where("id = ?", id).First(&event).Error; err != nil {
			return nil, ErrNotFound
		}
		return nil, ErrNotPending
	}

	var event models.Event
	if err := s.db.Where("id = ?", id).First(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}
