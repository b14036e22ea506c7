package store

import (
	"errors"

	"gorm.io/gorm"
)

// Business failures surfaced to handlers. Anything else coming out of the
// store is a persistence error and carries the raw backend message.
var (
	ErrNotFound         = errors.New("event not found")
	ErrEventFull        = errors.New("event is full")
	ErrEventEnded       = errors.New("event has already ended")
	ErrNotPending       = errors.New("event is not awaiting review")
	ErrAlreadyCheckedIn = errors.New("registration already checked in")
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}
