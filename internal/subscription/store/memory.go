package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"bulletin/internal/subscription/models"
	"bulletin/pkg/platform/sentinel"
)

// InMemoryStore is a map-backed Store for unit tests and local development.
// It does not implement transactional visibility; the in-memory tx runner
// serializes callers instead.
type InMemoryStore struct {
	mu          sync.RWMutex
	subscribers map[uuid.UUID]models.Subscriber
	tokens      map[string]uuid.UUID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		subscribers: make(map[uuid.UUID]models.Subscriber),
		tokens:      make(map[string]uuid.UUID),
	}
}

func (s *InMemoryStore) InsertSubscriber(_ context.Context, sub *models.Subscriber) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.subscribers {
		if existing.Email == sub.Email {
			return fmt.Errorf("insert subscriber %s: %w", sub.Email, sentinel.ErrConflict)
		}
	}
	s.subscribers[sub.ID] = *sub
	return nil
}

func (s *InMemoryStore) InsertToken(_ context.Context, token string, subscriberID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tokens[token]; exists {
		return fmt.Errorf("insert subscription token: %w", sentinel.ErrConflict)
	}
	s.tokens[token] = subscriberID
	return nil
}

func (s *InMemoryStore) SubscriberIDByToken(_ context.Context, token string) (uuid.UUID, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.tokens[token]
	return id, ok, nil
}

func (s *InMemoryStore) ConfirmSubscriber(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.subscribers[id]
	if !ok {
		return fmt.Errorf("confirm subscriber %s: %w", id, sentinel.ErrNotFound)
	}
	sub.Status = models.StatusConfirmed
	s.subscribers[id] = sub
	return nil
}

func (s *InMemoryStore) SubscriberByID(_ context.Context, id uuid.UUID) (*models.Subscriber, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.subscribers[id]
	if !ok {
		return nil, fmt.Errorf("fetch subscriber %s: %w", id, sentinel.ErrNotFound)
	}
	return &sub, nil
}

// Count reports the number of subscriber rows. Test helper.
func (s *InMemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subscribers)
}

// TokenCount reports the number of token rows. Test helper.
func (s *InMemoryStore) TokenCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tokens)
}
