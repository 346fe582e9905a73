package sessions

import "time"

// Repo stores sessions by key, the SHA-256 of the credential token.
type Repo interface {
	// GetOrCreate returns the session for key, replacing it with create() when
	// missing or created before notBefore. created reports whether create was used.
	GetOrCreate(key string, create func() *Session, notBefore time.Time) (session *Session, created bool)
	Get(key string) (*Session, error)
	Delete(key string) error
	// PurgeBefore removes sessions created before t and returns how many were removed.
	PurgeBefore(t time.Time) int
}
