package models

import (
	"time"

	"github.com/google/uuid"
)

// SubscriberStatus is the lifecycle state of a subscriber record. The
// transition is monotonic: pending_confirmation -> confirmed, never back.
type SubscriberStatus string

const (
	StatusPendingConfirmation SubscriberStatus = "pending_confirmation"
	StatusConfirmed           SubscriberStatus = "confirmed"
)

// Subscriber is a persisted newsletter subscriber. Name and Email hold the
// already-validated raw strings; rows read back from storage are trusted.
type Subscriber struct {
	ID           uuid.UUID
	Email        string
	Name         string
	SubscribedAt time.Time
	Status       SubscriberStatus
}

// NewSubscriber builds a pending subscriber with a fresh id from validated
// inputs. The timestamp is set once, in UTC, and never updated.
func NewSubscriber(name SubscriberName, email SubscriberEmail, now time.Time) *Subscriber {
	return &Subscriber{
		ID:           uuid.New(),
		Email:        email.String(),
		Name:         name.String(),
		SubscribedAt: now.UTC(),
		Status:       StatusPendingConfirmation,
	}
}
