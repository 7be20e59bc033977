package store

import (
	"context"

	"github.com/google/uuid"

	"bulletin/internal/subscription/models"
)

// Store persists subscribers and their confirmation tokens.
//
// Mutating methods participate in the caller's transaction when one is
// carried in the context (pkg/platform/tx); otherwise they write through the
// pool directly.
type Store interface {
	// InsertSubscriber persists a new subscriber row.
	InsertSubscriber(ctx context.Context, sub *models.Subscriber) error
	// InsertToken persists the token-to-subscriber mapping.
	InsertToken(ctx context.Context, token string, subscriberID uuid.UUID) error
	// SubscriberIDByToken resolves a token to a subscriber id. An unknown
	// token returns ok=false with a nil error.
	SubscriberIDByToken(ctx context.Context, token string) (uuid.UUID, bool, error)
	// ConfirmSubscriber transitions the subscriber to confirmed. The update
	// is idempotent: confirming an already confirmed subscriber succeeds.
	ConfirmSubscriber(ctx context.Context, id uuid.UUID) error
	// SubscriberByID fetches a subscriber row.
	SubscriberByID(ctx context.Context, id uuid.UUID) (*models.Subscriber, error)
}
