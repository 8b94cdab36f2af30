package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"shortlink/internal/links/models"
	"shortlink/pkg/platform/sentinel"
)

// InMemoryStore keeps links in a map. It backs local runs without
// DATABASE_URL and the service tests.
type InMemoryStore struct {
	mu    sync.RWMutex
	links map[string]*models.Link
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{links: make(map[string]*models.Link)}
}

// Create stores link, failing with sentinel.ErrAlreadyUsed when the ID is taken.
func (s *InMemoryStore) Create(_ context.Context, link *models.Link) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.links[link.ID]; ok {
		return fmt.Errorf("link %q: %w", link.ID, sentinel.ErrAlreadyUsed)
	}
	stored := *link
	s.links[link.ID] = &stored
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id string) (*models.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	link, ok := s.links[id]
	if !ok {
		return nil, fmt.Errorf("link not found: %w", sentinel.ErrNotFound)
	}
	found := *link
	return &found, nil
}

// ListByUsername returns the user's links, newest first.
func (s *InMemoryStore) ListByUsername(_ context.Context, username string) ([]*models.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Link, 0)
	for _, link := range s.links {
		if link.Username == username {
			l := *link
			out = append(out, &l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *InMemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.links[id]; !ok {
		return fmt.Errorf("link not found: %w", sentinel.ErrNotFound)
	}
	delete(s.links, id)
	return nil
}
