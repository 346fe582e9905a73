// Package sessions holds the authenticated identity behind each persisted credential token.
package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/jrsteele09/dogtv-dashboard/auth"
)

type Status int

const (
	StatusPending Status = iota
	StatusResolved
)

func (s Status) String() string {
	if s == StatusResolved {
		return "resolved"
	}
	return "pending"
}

// Snapshot is a consistent read of a Session. Identity is meaningless while Status is pending.
type Snapshot struct {
	Status   Status
	Identity *auth.Identity
	// Rejected is set when verification of a presented token failed; the persisted token must be deleted.
	Rejected bool
}

func (s Snapshot) Authenticated() bool {
	return s.Status == StatusResolved && s.Identity != nil
}

// Session is one client process: it starts pending, resolves exactly once, and
// afterwards only changes through logout.
type Session struct {
	key       string
	createdAt time.Time

	mu       sync.RWMutex
	status   Status
	identity *auth.Identity
	rejected bool

	initOnce sync.Once
	done     chan struct{}
}

func newSession(key string, createdAt time.Time) *Session {
	return &Session{
		key:       key,
		createdAt: createdAt,
		done:      make(chan struct{}),
	}
}

// anonymous is the session of a client with no persisted token.
func anonymous(now time.Time) *Session {
	s := newSession("", now)
	s.initOnce.Do(func() {})
	s.resolve(nil, false)
	return s
}

func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{Status: s.status, Rejected: s.rejected}
	if s.identity != nil {
		id := *s.identity
		snap.Identity = &id
	}
	return snap
}

// Done is closed once the session has resolved.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the session resolves or ctx ends, then returns the current snapshot.
func (s *Session) Wait(ctx context.Context) Snapshot {
	select {
	case <-s.done:
	case <-ctx.Done():
	}
	return s.Snapshot()
}

// resolve records the outcome of initialization. Only the first call has an effect.
func (s *Session) resolve(id *auth.Identity, rejected bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusResolved {
		return false
	}
	s.status = StatusResolved
	s.identity = id
	s.rejected = rejected
	close(s.done)
	return true
}

func (s *Session) logout() {
	s.initOnce.Do(func() {})
	if s.resolve(nil, false) {
		return
	}
	s.mu.Lock()
	s.identity = nil
	s.mu.Unlock()
}
