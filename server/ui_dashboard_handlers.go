package server

import (
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/dogtv-dashboard/auth"
	"github.com/jrsteele09/dogtv-dashboard/server/navigation"
	"github.com/jrsteele09/dogtv-dashboard/tvs"
	"github.com/rs/zerolog/log"
)

type layoutData struct {
	AppName  string
	Title    string
	Identity auth.Identity
	Nav      []navigation.ActiveLink
	Logout   navigation.Link
	Content  template.HTML
	Year     int
}

type dashboardData struct {
	Identity auth.Identity
	Error    string
	Entries  []TvEntry
}

type tvsData struct {
	Error   string
	Total   tvs.Summary
	Summary []tvs.GroupSummary
}

type customersData struct {
	Error string
	Rows  []tvs.CustomerRow
}

type settingsData struct {
	Identity      auth.Identity
	AppName       string
	Env           string
	APIBaseURL    string
	APITimeout    time.Duration
	SessionMaxAge time.Duration
	TokenMaxAge   time.Duration
}

// renderPage renders content inside the navigation shell
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, title string, content *template.Template, data any) {
	// Render content to string
	var contentBuf strings.Builder
	if err := content.Execute(&contentBuf, data); err != nil {
		log.Err(err).Str("page", title).Msg("Failed to render content")
		http.Error(w, "Failed to render content", http.StatusInternalServerError)
		return
	}

	layout := layoutData{
		AppName:  s.config.GetAppName(),
		Title:    title,
		Identity: identityFrom(r.Context()),
		Nav:      s.menu.For(r.URL.Path),
		Logout:   s.menu.Logout,
		Content:  template.HTML(contentBuf.String()),
		Year:     s.nowTime().Year(),
	}

	w.Header().Set("Content-Type", contentTypeHTML)
	w.Header().Set("Cache-Control", "no-store")
	if err := s.layout.Execute(w, layout); err != nil {
		log.Err(err).Msg("Failed to render layout")
	}
}

// renderPending is shown while the credential token is still being verified. It polls by reloading.
func (s *Server) renderPending(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", contentTypeHTML)
	w.Header().Set("Cache-Control", "no-store")
	if err := s.pending.Execute(w, map[string]string{"AppName": s.config.GetAppName()}); err != nil {
		log.Err(err).Msg("Failed to render pending page")
	}
}

// listTvs fetches the TV groups for the current activation. A false return means
// the request is gone and nothing should be written.
func (s *Server) listTvs(r *http.Request) ([]tvs.TvGroup, string, bool) {
	groups, err := s.tvs.List(r.Context(), tokenFrom(r.Context()))
	if err == nil {
		return groups, "", true
	}
	if r.Context().Err() != nil {
		log.Debug().Str("request_id", RequestIDFrom(r.Context())).Msg("tv list abandoned")
		return nil, "", false
	}
	log.Warn().Err(err).Str("request_id", RequestIDFrom(r.Context())).Msg("failed to load tvs")
	return nil, tvs.FetchErrorMessage(err), true
}

// DashboardHandler renders the collapsible TV list
func (s *Server) DashboardHandler() http.HandlerFunc {
	content := mustParseTemplate("dashboard_content.html")

	return func(w http.ResponseWriter, r *http.Request) {
		groups, msg, ok := s.listTvs(r)
		if !ok {
			return
		}
		data := dashboardData{Identity: identityFrom(r.Context()), Error: msg}
		if msg == "" {
			data.Entries = buildEntries(r.URL.Path, groups, ParseExpansion(r.URL.Query()))
		}
		s.renderPage(w, r, "Início", content, data)
	}
}

// TvsHandler renders the per-TV summary
func (s *Server) TvsHandler() http.HandlerFunc {
	content := mustParseTemplate("tvs_content.html")

	return func(w http.ResponseWriter, r *http.Request) {
		groups, msg, ok := s.listTvs(r)
		if !ok {
			return
		}
		data := tvsData{Error: msg}
		if msg == "" {
			data.Total, data.Summary = tvs.Summarize(groups)
		}
		s.renderPage(w, r, "TVs", content, data)
	}
}

// CustomersHandler renders every customer across all TVs
func (s *Server) CustomersHandler() http.HandlerFunc {
	content := mustParseTemplate("customers_content.html")

	return func(w http.ResponseWriter, r *http.Request) {
		groups, msg, ok := s.listTvs(r)
		if !ok {
			return
		}
		data := customersData{Error: msg}
		if msg == "" {
			data.Rows = tvs.Customers(groups)
		}
		s.renderPage(w, r, "Clientes", content, data)
	}
}

// SettingsHandler shows the operator and the non-secret configuration
func (s *Server) SettingsHandler() http.HandlerFunc {
	content := mustParseTemplate("settings_content.html")

	return func(w http.ResponseWriter, r *http.Request) {
		s.renderPage(w, r, "Configurações", content, settingsData{
			Identity:      identityFrom(r.Context()),
			AppName:       s.config.GetAppName(),
			Env:           s.env,
			APIBaseURL:    s.config.GetAPIBaseURL(),
			APITimeout:    s.config.GetAPITimeout(),
			SessionMaxAge: s.config.GetMaxSessionAge(),
			TokenMaxAge:   s.config.GetTokenMaxAge(),
		})
	}
}
