package sessions

import (
	"fmt"
	"sync"
	"time"

	"github.com/jrsteele09/dogtv-dashboard/internal/errors"
)

// InMemoryRepo is a thread-safe in-memory implementation of Repo
type InMemoryRepo struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		sessions: make(map[string]*Session),
	}
}

var _ Repo = (*InMemoryRepo)(nil)

func (r *InMemoryRepo) GetOrCreate(key string, create func() *Session, notBefore time.Time) (*Session, bool) {
	r.mu.RLock()
	s, ok := r.sessions[key]
	r.mu.RUnlock()
	if ok && !s.createdAt.Before(notBefore) {
		return s, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Re-check: another request may have created it while we were unlocked
	if s, ok := r.sessions[key]; ok && !s.createdAt.Before(notBefore) {
		return s, false
	}
	s = create()
	r.sessions[key] = s
	return s, true
}

func (r *InMemoryRepo) Get(key string) (*Session, error) {
	if key == "" {
		return nil, fmt.Errorf("key is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[key]
	if !ok {
		return nil, errors.ErrSessionNotFound
	}
	return s, nil
}

func (r *InMemoryRepo) Delete(key string) error {
	if key == "" {
		return fmt.Errorf("key is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, key)
	return nil
}

func (r *InMemoryRepo) PurgeBefore(t time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	purged := 0
	for key, s := range r.sessions {
		if s.createdAt.Before(t) {
			delete(r.sessions, key)
			purged++
		}
	}
	return purged
}

func (r *InMemoryRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
