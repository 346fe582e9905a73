package server

import (
	"html/template"
	"net/http"

	"github.com/google/uuid"
	"github.com/jrsteele09/dogtv-dashboard/auth"
	"github.com/jrsteele09/dogtv-dashboard/internal/errors"
	"github.com/rs/zerolog/log"
)

const (
	contentTypeHTML = "text/html; charset=utf-8"

	formFieldID       = "form_id"
	formFieldEmail    = auth.FieldEmail
	formFieldPassword = auth.FieldPassword
	formFieldRemember = "lembrar"
)

// LoginPageData contains data for rendering the login page
type LoginPageData struct {
	AppName     string
	FormID      string // one per rendered form, used to drop duplicate submissions
	Email       string // Preserve email on error
	Remember    bool
	Error       string
	FieldErrors map[string]string
}

func (d LoginPageData) FieldError(field string) string {
	return d.FieldErrors[field]
}

// LoginPageHandler displays the login page (GET /login)
func (s *Server) LoginPageHandler() http.HandlerFunc {
	loginTmpl := mustParseTemplate("login.html")

	return func(w http.ResponseWriter, r *http.Request) {
		data := LoginPageData{
			AppName: s.config.GetAppName(),
			FormID:  uuid.NewString(),
			Email:   r.URL.Query().Get(formFieldEmail),
		}
		renderLogin(w, loginTmpl, data, http.StatusOK)
	}
}

// LoginSubmissionHandler exchanges the submitted credentials for a token and persists it.
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	loginTmpl := mustParseTemplate("login.html")

	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Formulário inválido", http.StatusBadRequest)
			return
		}

		data := LoginPageData{
			AppName:  s.config.GetAppName(),
			FormID:   r.PostFormValue(formFieldID),
			Email:    r.PostFormValue(formFieldEmail),
			Remember: r.PostFormValue(formFieldRemember) != "",
		}
		if data.FormID == "" {
			data.FormID = uuid.NewString()
		}
		creds := auth.Credentials{Email: data.Email, Password: r.PostFormValue(formFieldPassword)}

		var verr *auth.ValidationError
		if err := creds.Validate(); errors.As(err, &verr) {
			data.FieldErrors = verr.Fields
			renderLogin(w, loginTmpl, data, http.StatusUnprocessableEntity)
			return
		}

		release, err := s.inflight.Acquire(data.FormID)
		if err != nil {
			log.Debug().Str("form_id", data.FormID).Msg("duplicate login submission ignored")
			if isHTMXRequest(r) {
				w.Header().Set("HX-Reswap", "none")
				w.WriteHeader(http.StatusNoContent)
				return
			}
			http.Error(w, "Login já em andamento", http.StatusConflict)
			return
		}
		defer release()

		tok, err := s.auth.Login(r.Context(), creds)
		if err != nil {
			log.Info().Err(err).Str("request_id", RequestIDFrom(r.Context())).Msg("login failed")
			data.Error = auth.LoginErrorMessage(err)
			renderLogin(w, loginTmpl, data, http.StatusOK)
			return
		}

		if err := s.tokens.Write(w, r, tok, data.Remember); err != nil {
			log.Err(err).Msg("failed to persist credential token")
			data.Error = auth.LoginUnexpectedMessage
			renderLogin(w, loginTmpl, data, http.StatusOK)
			return
		}
		redirectSuccess(w, r, RouteDashboard)
	}
}

// LogoutHandler clears the session and the token cookie, then goes back to the login page.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if tok, err := s.tokens.Read(r); err == nil {
			s.sessions.Logout(tok)
		}
		s.tokens.Delete(w, r)
		redirectSuccess(w, r, RouteLogin)
	}
}

func renderLogin(w http.ResponseWriter, tmpl *template.Template, data LoginPageData, status int) {
	w.Header().Set("Content-Type", contentTypeHTML)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := tmpl.Execute(w, data); err != nil {
		log.Err(err).Msg("Failed to render login template")
	}
}
