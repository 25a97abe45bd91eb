package repository

import (
	"context"
	"sync"
	"time"
)

type memToken struct {
	user string
	exp  time.Time
}

// MemoryTokenRepo is the TokenStore used when neither MySQL nor Redis is
// available.  Expired entries are dropped lazily on lookup.
type MemoryTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]memToken
	now    func() time.Time
}

func NewMemoryTokenRepo() *MemoryTokenRepo {
	return &MemoryTokenRepo{tokens: make(map[string]memToken), now: time.Now}
}

func (r *MemoryTokenRepo) StoreRefresh(_ context.Context, username, tokenHash string, exp time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[tokenHash] = memToken{user: username, exp: exp}
	return nil
}

func (r *MemoryTokenRepo) ValidateRefresh(_ context.Context, tokenHash string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[tokenHash]
	if !ok {
		return "", ErrNotFound
	}
	if r.now().After(t.exp) {
		delete(r.tokens, tokenHash)
		return "", ErrNotFound
	}
	return t.user, nil
}

func (r *MemoryTokenRepo) RevokeByHash(_ context.Context, tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, tokenHash)
	return nil
}

func (r *MemoryTokenRepo) RevokeAllForUser(_ context.Context, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for h, t := range r.tokens {
		if t.user == username {
			delete(r.tokens, h)
		}
	}
	return nil
}
