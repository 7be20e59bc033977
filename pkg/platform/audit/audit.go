// Package audit records subscription lifecycle events for operators. Events
// are best-effort: an audit failure is logged, never surfaced to the caller.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Action identifies what happened to a subscriber.
type Action string

const (
	ActionSubscriberCreated       Action = "subscriber_created"
	ActionSubscriptionConfirmed   Action = "subscription_confirmed"
	ActionConfirmationEmailFailed Action = "confirmation_email_failed"
)

// Event is one audit trail entry.
type Event struct {
	ID           uuid.UUID
	SubscriberID uuid.UUID
	Action       Action
	Email        string
	RequestID    string
	Timestamp    time.Time
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListBySubscriber(ctx context.Context, subscriberID uuid.UUID) ([]Event, error)
}
