// Package memory is a map-backed audit store for tests and local runs.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"bulletin/pkg/platform/audit"
)

type InMemoryStore struct {
	mu     sync.RWMutex
	events []audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *InMemoryStore) ListBySubscriber(_ context.Context, subscriberID uuid.UUID) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []audit.Event
	for _, e := range s.events {
		if e.SubscriberID == subscriberID {
			out = append(out, e)
		}
	}
	return out, nil
}
