package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/MSSkowron/userregistry/internal/model"
)

// InMemoryUserRepository is a UserRepository kept entirely in process memory.
// It enforces the same username uniqueness as the SQL schema and is safe for concurrent use.
type InMemoryUserRepository struct {
	mu             sync.RWMutex
	users          map[int]*model.User
	byUsername     map[string]int
	lastInsertedID int
}

// NewInMemoryUserRepository creates a new, empty InMemoryUserRepository.
func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		users:      make(map[int]*model.User),
		byUsername: make(map[string]int),
	}
}

func (m *InMemoryUserRepository) AddUser(ctx context.Context, user *model.User) (*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("failed to add user: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byUsername[user.Username]; exists {
		return nil, fmt.Errorf("failed to add user %q: %w", user.Username, ErrDuplicateUsername)
	}

	m.lastInsertedID++

	added := *user
	added.ID = m.lastInsertedID
	m.users[added.ID] = &added
	m.byUsername[added.Username] = added.ID

	result := added
	return &result, nil
}

func (m *InMemoryUserRepository) GetUserByID(ctx context.Context, userID int) (*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}

	result := *user
	return &result, nil
}

func (m *InMemoryUserRepository) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byUsername[username]
	if !ok {
		return nil, ErrUserNotFound
	}

	result := *m.users[id]
	return &result, nil
}

// Len returns the number of stored users.
func (m *InMemoryUserRepository) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.users)
}
