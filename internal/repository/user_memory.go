package repository

import (
	"context"
	"sync"

	"github.com/iliyamo/parking-reservation/internal/model"
)

// MemoryUserRepo is the default UserStore when no database is configured.
type MemoryUserRepo struct {
	mu    sync.RWMutex
	users map[string]model.User
}

func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{users: make(map[string]model.User)}
}

func (r *MemoryUserRepo) Create(_ context.Context, u model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.Username]; ok {
		return ErrUsernameExists
	}
	r.users[u.Username] = u
	return nil
}

func (r *MemoryUserRepo) Get(_ context.Context, username string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[username]
	if !ok {
		return model.User{}, ErrUserNotFound
	}
	return u, nil
}

func (r *MemoryUserRepo) SetPoints(_ context.Context, username string, points int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[username]
	if !ok {
		return ErrUserNotFound
	}
	if points < 0 {
		points = 0
	}
	u.Points = points
	r.users[username] = u
	return nil
}
