package sessions

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/jrsteele09/dogtv-dashboard/auth"
	"github.com/rs/zerolog/log"
)

// Verifier checks a credential token against the remote API.
type Verifier interface {
	Verify(ctx context.Context, token string) (auth.Identity, error)
}

// Store is the single source of truth for "is there a valid authenticated user" per token.
type Store struct {
	repo          Repo
	verifier      Verifier
	maxAge        time.Duration
	verifyTimeout time.Duration
	nowTime       func() time.Time
}

type StoreOption func(*Store)

func WithRepo(repo Repo) StoreOption {
	return func(s *Store) {
		s.repo = repo
	}
}

// WithMaxAge bounds how long a resolved session is reused. Zero means forever.
func WithMaxAge(d time.Duration) StoreOption {
	return func(s *Store) {
		s.maxAge = d
	}
}

// WithVerifyTimeout bounds the verification call. Zero means no bound beyond the API client's own.
func WithVerifyTimeout(d time.Duration) StoreOption {
	return func(s *Store) {
		s.verifyTimeout = d
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) StoreOption {
	return func(s *Store) {
		s.nowTime = nowFunc
	}
}

func NewStore(verifier Verifier, opts ...StoreOption) *Store {
	s := &Store{
		repo:     NewInMemoryRepo(),
		verifier: verifier,
		nowTime:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key is the repo key for token.
func Key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Resolve returns the session for token. With no token the session is already
// resolved without identity. Otherwise the first call for a token starts its
// verification; later calls share the same session.
func (s *Store) Resolve(ctx context.Context, token string) *Session {
	now := s.nowTime()
	if token == "" {
		return anonymous(now)
	}

	key := Key(token)
	var notBefore time.Time
	if s.maxAge > 0 {
		notBefore = now.Add(-s.maxAge)
	}
	sess, _ := s.repo.GetOrCreate(key, func() *Session { return newSession(key, now) }, notBefore)
	s.initialize(ctx, sess, token)
	return sess
}

// initialize verifies token at most once per session. It runs detached from ctx's
// cancellation so an abandoned request is not mistaken for a rejected token.
func (s *Store) initialize(ctx context.Context, sess *Session, token string) {
	sess.initOnce.Do(func() {
		vctx := context.WithoutCancel(ctx)
		cancel := context.CancelFunc(func() {})
		if s.verifyTimeout > 0 {
			vctx, cancel = context.WithTimeout(vctx, s.verifyTimeout)
		}
		go func() {
			defer cancel()
			id, err := s.verifier.Verify(vctx, token)
			if err != nil {
				log.Info().Err(err).Msg("credential token rejected")
				sess.resolve(nil, true)
				return
			}
			log.Debug().Str("identity", id.ID).Msg("credential token verified")
			sess.resolve(&id, false)
		}()
	})
}

// Logout resolves the session of token without identity and forgets it.
// The caller deletes the persisted token.
func (s *Store) Logout(token string) {
	if token == "" {
		return
	}
	key := Key(token)
	if sess, err := s.repo.Get(key); err == nil {
		sess.logout()
	}
	_ = s.repo.Delete(key)
}

// Forget drops the session of token so that its next Resolve starts over.
func (s *Store) Forget(token string) {
	if token == "" {
		return
	}
	_ = s.repo.Delete(Key(token))
}

// Janitor purges expired sessions every interval until ctx ends.
func (s *Store) Janitor(ctx context.Context, interval time.Duration) {
	if s.maxAge <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.repo.PurgeBefore(s.nowTime().Add(-s.maxAge)); n > 0 {
				log.Debug().Int("purged", n).Msg("expired sessions purged")
			}
		}
	}
}
