// Package postgres persists audit events in the audit_events table.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"bulletin/pkg/platform/audit"
	txcontext "bulletin/pkg/platform/tx"
)

// Store implements audit.Store on PostgreSQL.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// Append inserts one audit event. Idempotent on event id.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	query := `
		INSERT INTO audit_events (id, subscriber_id, action, email, request_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`
	var subscriberID *uuid.UUID
	if event.SubscriberID != uuid.Nil {
		subscriberID = &event.SubscriberID
	}
	_, err := s.execer(ctx).ExecContext(ctx, query,
		event.ID, subscriberID, string(event.Action), event.Email, event.RequestID, event.Timestamp)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListBySubscriber returns events for one subscriber, newest first.
func (s *Store) ListBySubscriber(ctx context.Context, subscriberID uuid.UUID) ([]audit.Event, error) {
	query := `
		SELECT id, subscriber_id, action, email, request_id, created_at
		FROM audit_events
		WHERE subscriber_id = $1
		ORDER BY created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, subscriberID)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			e      audit.Event
			action string
			subID  *uuid.UUID
		)
		if err := rows.Scan(&e.ID, &subID, &action, &e.Email, &e.RequestID, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Action = audit.Action(action)
		if subID != nil {
			e.SubscriberID = *subID
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
