package repository

import (
	"context"
	"sync"

	"github.com/runnerkit/hello-service/internal/domain"
)

// MockUserRepository is a hand-written, in-memory implementation of
// UserRepository used in unit tests.
type MockUserRepository struct {
	mu     sync.RWMutex
	users  map[string]*domain.User
	nextID int64

	// Optional error overrides, set in tests to simulate failure paths.
	GetErr    error
	CreateErr error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[string]*domain.User)}
}

func (m *MockUserRepository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[username]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (m *MockUserRepository) Create(_ context.Context, u *domain.User) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.Username]; ok {
		return domain.ErrUserExists
	}
	m.nextID++
	u.ID = m.nextID
	clone := *u
	m.users[u.Username] = &clone
	return nil
}

// Count returns the number of stored users.
func (m *MockUserRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users)
}
