// Package token persists the credential token in the operator's browser.
package token

import (
	"net/http"
	"time"

	"github.com/jrsteele09/dogtv-dashboard/internal/errors"
)

// CookieStore keeps the sealed token in a single HTTP-only cookie with a fixed name.
type CookieStore struct {
	name    string
	sealer  *Sealer
	maxAge  time.Duration
	nowTime func() time.Time
}

type CookieStoreOption func(*CookieStore)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) CookieStoreOption {
	return func(c *CookieStore) {
		c.nowTime = nowFunc
	}
}

// NewCookieStore creates a store. maxAge is the lifetime of a remembered cookie
// whose token carries no expiry of its own.
func NewCookieStore(name string, sealer *Sealer, maxAge time.Duration, opts ...CookieStoreOption) *CookieStore {
	c := &CookieStore{
		name:    name,
		sealer:  sealer,
		maxAge:  maxAge,
		nowTime: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *CookieStore) Name() string {
	return c.name
}

// Read returns the persisted token. ErrNotFound means there is none;
// ErrInvalidToken means a cookie exists but cannot be opened and should be deleted.
func (c *CookieStore) Read(r *http.Request) (string, error) {
	cookie, err := r.Cookie(c.name)
	if err != nil || cookie.Value == "" {
		return "", errors.ErrNotFound
	}
	tok, err := c.sealer.Open(cookie.Value)
	if err != nil || tok == "" {
		return "", errors.ErrInvalidToken
	}
	return tok, nil
}

// Write persists tok. Without remember the cookie lasts for the browser session.
func (c *CookieStore) Write(w http.ResponseWriter, r *http.Request, tok string, remember bool) error {
	sealed, err := c.sealer.Seal(tok)
	if err != nil {
		return err
	}
	cookie := &http.Cookie{
		Name:     c.name,
		Value:    sealed,
		Path:     "/",
		HttpOnly: true,
		Secure:   isSecure(r),
		SameSite: http.SameSiteLaxMode,
	}
	if remember {
		cookie.MaxAge = c.rememberFor(tok)
	}
	http.SetCookie(w, cookie)
	return nil
}

// Delete expires the cookie on the client.
func (c *CookieStore) Delete(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   isSecure(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

func (c *CookieStore) rememberFor(tok string) int {
	if exp, ok := Expiry(tok); ok {
		if secs := int(exp.Sub(c.nowTime()).Seconds()); secs > 0 {
			return secs
		}
	}
	return int(c.maxAge.Seconds())
}

func isSecure(r *http.Request) bool {
	return r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"
}
