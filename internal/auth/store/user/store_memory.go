package user

import (
	"context"
	"fmt"
	"sync"

	"shortlink/internal/auth/models"
	"shortlink/pkg/platform/sentinel"
)

// InMemoryUserStore keeps users in a map keyed by username.
type InMemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]*models.User
}

func NewInMemoryUserStore() *InMemoryUserStore {
	return &InMemoryUserStore{users: make(map[string]*models.User)}
}

// Create fails with sentinel.ErrAlreadyUsed when the username is taken.
func (s *InMemoryUserStore) Create(_ context.Context, user *models.User) error {
	if user == nil {
		return fmt.Errorf("user is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.Username]; ok {
		return fmt.Errorf("user %q: %w", user.Username, sentinel.ErrAlreadyUsed)
	}
	stored := *user
	s.users[user.Username] = &stored
	return nil
}

func (s *InMemoryUserStore) FindByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[username]
	if !ok {
		return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
	}
	found := *user
	return &found, nil
}
