package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"bulletin/internal/subscription/models"
	"bulletin/pkg/platform/sentinel"
	txcontext "bulletin/pkg/platform/tx"
)

// PostgresStore persists subscribers and tokens in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed subscription store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// execer prefers a context-carried transaction over the pool so registration
// writes stay atomic.
func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// InsertSubscriber inserts a subscriber row.
func (s *PostgresStore) InsertSubscriber(ctx context.Context, sub *models.Subscriber) error {
	query := `
		INSERT INTO subscriptions (id, email, name, subscribed_at, status)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		sub.ID, sub.Email, sub.Name, sub.SubscribedAt, string(sub.Status))
	if err != nil {
		return fmt.Errorf("insert subscriber: %w", err)
	}
	return nil
}

// InsertToken inserts the token-to-subscriber mapping row.
func (s *PostgresStore) InsertToken(ctx context.Context, token string, subscriberID uuid.UUID) error {
	query := `
		INSERT INTO subscription_tokens (subscription_token, subscriber_id)
		VALUES ($1, $2)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query, token, subscriberID)
	if err != nil {
		return fmt.Errorf("insert subscription token: %w", err)
	}
	return nil
}

// SubscriberIDByToken resolves a confirmation token. An unknown token is not
// an error.
func (s *PostgresStore) SubscriberIDByToken(ctx context.Context, token string) (uuid.UUID, bool, error) {
	var id uuid.UUID
	query := `SELECT subscriber_id FROM subscription_tokens WHERE subscription_token = $1`
	err := s.execer(ctx).QueryRowContext(ctx, query, token).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return uuid.Nil, false, nil
		}
		return uuid.Nil, false, fmt.Errorf("lookup subscriber by token: %w", err)
	}
	return id, true, nil
}

// ConfirmSubscriber flips the subscriber to confirmed. Re-confirming an
// already confirmed subscriber is a no-op update and succeeds.
func (s *PostgresStore) ConfirmSubscriber(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE subscriptions SET status = $1 WHERE id = $2`
	res, err := s.execer(ctx).ExecContext(ctx, query, string(models.StatusConfirmed), id)
	if err != nil {
		return fmt.Errorf("confirm subscriber: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("confirm subscriber rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("confirm subscriber %s: %w", id, sentinel.ErrNotFound)
	}
	return nil
}

// SubscriberByID fetches a subscriber row.
func (s *PostgresStore) SubscriberByID(ctx context.Context, id uuid.UUID) (*models.Subscriber, error) {
	var sub models.Subscriber
	var status string
	query := `
		SELECT id, email, name, subscribed_at, status
		FROM subscriptions
		WHERE id = $1
	`
	err := s.execer(ctx).QueryRowContext(ctx, query, id).
		Scan(&sub.ID, &sub.Email, &sub.Name, &sub.SubscribedAt, &status)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("fetch subscriber %s: %w", id, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("fetch subscriber: %w", err)
	}
	sub.Status = models.SubscriberStatus(status)
	return &sub, nil
}
