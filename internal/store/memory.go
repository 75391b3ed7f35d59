package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/PratikDhanave/delivery-time-analytics/internal/models"
)

// MemoryStore keeps events in process memory. It backs the service when no
// database is configured and is used by tests.
type MemoryStore struct {
	mu      sync.RWMutex
	tenants map[string]*tenantEvents
}

type tenantEvents struct {
	ids    map[string]struct{}
	events []models.Event
}

var _ EventStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tenants: make(map[string]*tenantEvents)}
}

func (s *MemoryStore) InsertEvent(_ context.Context, tenantID, eventID string, e models.Event) (bool, error) {
	if tenantID == "" || eventID == "" {
		return false, errors.New("tenantID/eventID required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(tenantID, eventID, e), nil
}

func (s *MemoryStore) InsertEvents(_ context.Context, tenantID string, records []Record) (int, error) {
	if tenantID == "" {
		return 0, errors.New("tenantID required")
	}
	for _, r := range records {
		if r.EventID == "" {
			return 0, errors.New("eventID required")
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	inserted := 0
	for _, r := range records {
		if s.insertLocked(tenantID, r.EventID, r.Event) {
			inserted++
		}
	}
	return inserted, nil
}

func (s *MemoryStore) insertLocked(tenantID, eventID string, e models.Event) bool {
	t, ok := s.tenants[tenantID]
	if !ok {
		t = &tenantEvents{ids: make(map[string]struct{})}
		s.tenants[tenantID] = t
	}
	if _, dup := t.ids[eventID]; dup {
		return false
	}
	t.ids[eventID] = struct{}{}
	t.events = append(t.events, e)
	return true
}

func (s *MemoryStore) ListEvents(_ context.Context, tenantID string, from, to time.Time) ([]models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tenants[tenantID]
	if !ok {
		return nil, nil
	}
	var filtered []models.Event
	for _, e := range t.events {
		if !e.Timestamp.Before(from) && e.Timestamp.Before(to) {
			filtered = append(filtered, e)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Timestamp.Before(filtered[j].Timestamp.Time)
	})
	return filtered, nil
}

func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

func (s *MemoryStore) Close() {}
