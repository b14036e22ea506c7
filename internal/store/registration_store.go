package store

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/huportal/events-api/internal/models"
)

// Register records an attendee for an event. Registrations are
// auto-approved. The whole check runs inside a transaction holding a row
// lock on the event, so two attendees racing for the last spot cannot both
// get it.
//
// Returned bool is true when a new registration was created, false when the
// (event, user) pair already existed and the existing record is returned.
func (s *Store) Register(eventID, userID uuid.UUID) (*models.Registration, bool, error) {
	var registration models.Registration
	created := false

	err := s.db.Transaction(func(tx *gorm.DB) error {
		query := tx.Where("id = ? AND is_published = ?", eventID, true)
		// sqlite has no FOR UPDATE; it serializes writers at the database
		// level instead.
		if tx.Dialector.Name() == "postgres" {
			query = query.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var event models.Event
		err := query.First(&event).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		if time.Now().After(event.EndDate) {
			return ErrEventEnded
		}

		// Resubmission returns the existing record, even when the event has
		// since filled up.
		err = tx.Where("event_id = ? AND user_id = ?", eventID, userID).First(&registration).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if event.MaxAttendees != nil {
			var count int64
			err := tx.Model(&models.Registration{}).
				Where("event_id = ? AND status = ?", eventID, models.RegistrationApproved).
				Count(&count).Error
			if err != nil {
				return err
			}
			if count >= int64(*event.MaxAttendees) {
				return ErrEventFull
			}
		}

		registration = models.Registration{
			EventID:      eventID,
			UserID:       userID,
			Status:       models.RegistrationApproved,
			RegisteredAt: time.Now(),
		}
		if err := tx.Create(&registration).Error; err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &registration, created, nil
}

// CountApproved counts approved registrations for an event. Always computed
// fresh; capacity decisions must never run on a cached value.
func (s *Store) CountApproved(eventID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.Model(&models.Registration{}).
		Where("event_id = ? AND status = ?", eventID, models.RegistrationApproved).
		Count(&count).Error
	return count, err
}

// GetRegistration loads a registration with its event.
func (s *Store) GetRegistration(id uuid.UUID) (*models.Registration, error) {
	var registration models.Registration
	err := s.db.Preload("Event").Where("id = ?", id).First(&registration).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &registration, nil
}

// ListRegistrations returns all registrations for an event, for the
// organizer dashboard.
func (s *Store) ListRegistrations(eventID uuid.UUID) ([]models.Registration, error) {
	var registrations []models.Registration
	err := s.db.Where("event_id = ?", eventID).Order("registered_at ASC").Find(&registrations).Error
	return registrations, err
}

// MyRegistrations returns the account's registrations with their events.
func (s *Store) MyRegistrations(userID uuid.UUID) ([]models.Registration, error) {
	var registrations []models.Registration
	err := s.db.Preload("Event").Where("user_id = ?", userID).
		Order("registered_at DESC").Find(&registrations).Error
	return registrations, err
}

// CheckIn flips the one-way checked_in flag. A second check-in attempt
// reports ErrAlreadyCheckedIn.
func (s *Store) CheckIn(id uuid.UUID) (*models.Registration, error) {
	now := time.Now()
	result := s.db.Model(&models.Registration{}).
		Where("id = ? AND checked_in = ?", id, false).
		Updates(map[string]interface{}{"checked_in": true, "checked_in_at": now})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		var registration models.Registration
		if err := s.db.Where("id = ?", id).First(&registration).Error; err != nil {
			return nil, ErrNotFound
		}
		return nil, ErrAlreadyCheckedIn
	}
	return s.GetRegistration(id)
}
