package memory

import (
	"context"
	"sync"

	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/repository"
)

type userRepository struct {
	mu         sync.RWMutex
	users      map[string]domain.User
	byUsername map[string]string
}

func newUserRepository() *userRepository {
	return &userRepository{
		users:      make(map[string]domain.User),
		byUsername: make(map[string]string),
	}
}

// Create rejects a duplicate id or username with repository.ErrConflict.
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; ok {
		return repository.ErrConflict
	}
	if _, ok := r.byUsername[user.Username]; ok {
		return repository.ErrConflict
	}
	r.users[user.ID] = *user
	r.byUsername[user.Username] = user.ID
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUsername[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	user := r.users[id]
	return &user, nil
}
