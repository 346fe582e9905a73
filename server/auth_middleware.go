package server

import (
	"context"
	"net/http"

	"github.com/jrsteele09/dogtv-dashboard/auth"
	"github.com/jrsteele09/dogtv-dashboard/internal/errors"
	"github.com/jrsteele09/dogtv-dashboard/server/routeguard"
	"github.com/rs/zerolog/log"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyIdentity stores the verified auth.Identity
	ContextKeyIdentity ContextKey = "identity"
	// ContextKeyToken stores the raw credential token for calls to the remote API
	ContextKeyToken     ContextKey = "token"
	ContextKeyRequestID ContextKey = "request_id"
)

// RequireSession guards a dashboard page. The page renders only once the session
// behind the token cookie has resolved with an identity.
func (s *Server) RequireSession() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if routeguard.Exempt(r.URL.Path) {
				next(w, r)
				return
			}

			tok, err := s.tokens.Read(r)
			if errors.Is(err, errors.ErrInvalidToken) {
				log.Info().Str("request_id", RequestIDFrom(r.Context())).Msg("discarding unreadable token cookie")
				s.tokens.Delete(w, r)
			}

			sess := s.sessions.Resolve(r.Context(), tok)
			waitCtx, cancel := context.WithTimeout(r.Context(), s.config.GetPendingWait())
			snap := sess.Wait(waitCtx)
			cancel()

			guard := routeguard.NewMachine()
			state, err := guard.Observe(snap)
			if err != nil {
				log.Err(err).Msg("route guard")
				http.Error(w, auth.LoginUnexpectedMessage, http.StatusInternalServerError)
				return
			}

			switch state {
			case routeguard.Pending:
				s.renderPending(w, r)
			case routeguard.Unauthenticated:
				if snap.Rejected {
					s.sessions.Forget(tok)
				}
				if tok != "" {
					s.tokens.Delete(w, r)
				}
				redirectSuccess(w, r, RouteLogin)
			case routeguard.Authenticated:
				ctx := context.WithValue(r.Context(), ContextKeyIdentity, *snap.Identity)
				ctx = context.WithValue(ctx, ContextKeyToken, tok)
				next(w, r.WithContext(ctx))
			}
		}
	}
}

func identityFrom(ctx context.Context) auth.Identity {
	id, _ := ctx.Value(ContextKeyIdentity).(auth.Identity)
	return id
}

func tokenFrom(ctx context.Context) string {
	tok, _ := ctx.Value(ContextKeyToken).(string)
	return tok
}

// RequestIDFrom returns the id assigned by RequestIDMiddleware, or "".
func RequestIDFrom(ctx context.Context) string {
	rid, _ := ctx.Value(ContextKeyRequestID).(string)
	return rid
}
