package server

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/dogtv-dashboard/api"
	"github.com/jrsteele09/dogtv-dashboard/auth"
	"github.com/jrsteele09/dogtv-dashboard/internal/config"
	"github.com/jrsteele09/dogtv-dashboard/server/navigation"
	"github.com/jrsteele09/dogtv-dashboard/sessions"
	"github.com/jrsteele09/dogtv-dashboard/token"
	"github.com/jrsteele09/dogtv-dashboard/tvs"
	"github.com/rs/zerolog/log"
)

type Server struct {
	env      string // Environment (e.g., "DEV", "PROD")
	mux      *http.ServeMux
	routes   []string
	config   config.Config
	auth     *auth.Service
	tvs      *tvs.Service
	sessions *sessions.Store
	tokens   *token.CookieStore
	inflight *auth.InFlight
	menu     navigation.Menu
	layout   *template.Template
	pending  *template.Template
	nowTime  func() time.Time

	sessionRepo sessions.Repo
}

type Option func(*Server)

// WithSessionRepo replaces the in-memory session repository.
func WithSessionRepo(repo sessions.Repo) Option {
	return func(s *Server) {
		s.sessionRepo = repo
	}
}

// WithMenu replaces the embedded navigation menu.
func WithMenu(menu navigation.Menu) Option {
	return func(s *Server) {
		s.menu = menu
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(s *Server) {
		s.nowTime = nowFunc
	}
}

func New(cfg config.Config, opts ...Option) (*Server, error) {
	s := &Server{
		env:      cfg.GetEnv(),
		mux:      http.NewServeMux(),
		config:   cfg,
		inflight: auth.NewInFlight(),
		nowTime:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	client, err := api.New(cfg.GetAPIBaseURL(), api.WithTimeout(cfg.GetAPITimeout()))
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create api client: %w", err)
	}
	s.auth = auth.NewService(client)
	s.tvs = tvs.NewService(client)

	sealer, err := token.NewSealer(cfg.GetSessionSecret())
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create token sealer: %w", err)
	}
	if cfg.GetSessionSecret() == "" {
		log.Warn().Msg("SESSION_SECRET not set, persisted logins will not survive a restart")
	}
	s.tokens = token.NewCookieStore(cfg.GetTokenCookieName(), sealer, cfg.GetTokenMaxAge(), token.WithNowTime(s.nowTime))

	storeOpts := []sessions.StoreOption{
		sessions.WithMaxAge(cfg.GetMaxSessionAge()),
		sessions.WithVerifyTimeout(cfg.GetAPITimeout()),
		sessions.WithNowTime(s.nowTime),
	}
	if s.sessionRepo != nil {
		storeOpts = append(storeOpts, sessions.WithRepo(s.sessionRepo))
	}
	s.sessions = sessions.NewStore(s.auth, storeOpts...)

	if s.menu.Links == nil {
		if s.menu, err = navigation.Default(); err != nil {
			return nil, fmt.Errorf("[Server New] failed to load navigation: %w", err)
		}
	}
	if s.layout, err = ParseTemplate("layout.html"); err != nil {
		return nil, fmt.Errorf("[Server New] failed to parse layout template: %w", err)
	}
	if s.pending, err = ParseTemplate("pending.html"); err != nil {
		return nil, fmt.Errorf("[Server New] failed to parse pending template: %w", err)
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Janitor purges expired sessions until ctx ends.
func (s *Server) Janitor(ctx context.Context) {
	interval := s.config.GetMaxSessionAge() / 2
	if interval < time.Minute {
		interval = time.Minute
	}
	s.sessions.Janitor(ctx, interval)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	log.Info().Msgf("[%-19s] %s", colouredMethod(method), path)
}

func colouredMethod(method string) string {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		return color + paddedMethod + ResetColor
	}
	return Gray + paddedMethod + ResetColor
}
