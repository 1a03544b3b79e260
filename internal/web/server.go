// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package web serves the demo UI. Each browser session owns an event loop
// that holds its page state; form posts start requests on that loop and
// settlements are posted back to it.
package web

import (
	"context"
	"net/http"

	"github.com/ManuGH/fetchdemo/internal/config"
	"github.com/ManuGH/fetchdemo/internal/dispatch"
	"github.com/ManuGH/fetchdemo/internal/endpoint"
	"github.com/ManuGH/fetchdemo/internal/health"
	xglog "github.com/ManuGH/fetchdemo/internal/log"
	"github.com/ManuGH/fetchdemo/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// ConfigSource yields the current configuration. config.ConfigHolder
// implements it; reloads take effect on the next action.
type ConfigSource interface {
	Get() config.AppConfig
}

// Deps are the collaborators of a Server.
type Deps struct {
	Config ConfigSource
	Client *dispatch.Client
	Health *health.Manager // optional
	// TracingService enables server spans when non-empty.
	TracingService string
	// AllowedOrigins extends the same-origin check on form posts.
	AllowedOrigins []string
}

// Server is the UI HTTP handler.
type Server struct {
	cfg      ConfigSource
	client   *dispatch.Client
	health   *health.Manager
	sessions *sessionStore
	pages    *renderer
	router   chi.Router
	logger   zerolog.Logger
}

// New builds the UI. Session loops live until ctx is cancelled or Close is
// called.
func New(ctx context.Context, deps Deps) (*Server, error) {
	pages, err := newRenderer()
	if err != nil {
		return nil, err
	}
	cfg := deps.Config.Get()
	hm := deps.Health
	if hm == nil {
		hm = health.NewManager(cfg.Version)
	}
	s := &Server{
		cfg:      deps.Config,
		client:   deps.Client,
		health:   hm,
		sessions: newSessionStore(ctx, cfg.UI.SessionTTL),
		pages:    pages,
		logger:   xglog.WithComponent("web"),
	}
	s.router = s.routes(cfg.UI, deps)
	return s, nil
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close stops every session loop. Outstanding requests settle into stopped
// loops and are dropped.
func (s *Server) Close() {
	s.logger.Info().
		Str(xglog.FieldEvent, "sessions.closing").
		Int("sessions", s.sessions.len()).
		Int64("sessions_expired", s.sessions.stats().Evictions).
		Msg("stopping session loops")
	s.sessions.close()
}

func (s *Server) routes(ui config.UIConfig, deps Deps) chi.Router {
	r := middleware.NewRouter(middleware.StackConfig{
		EnableSecurityHeaders: true,
		EnableMetrics:         ui.MetricsEnabled,
		TracingService:        deps.TracingService,
		EnableLogging:         true,
	})

	r.Get("/healthz", s.health.ServeHealth)
	r.Get("/readyz", s.health.ServeReady)
	if ui.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Get("/", s.handleHome)
	r.Get("/hello", s.handleHello)
	r.Get("/dbstuff", s.handleRest)
	r.Get("/404", s.handleNotFound)

	r.Group(func(r chi.Router) {
		r.Use(middleware.CSRFProtection(deps.AllowedOrigins...))
		r.Use(middleware.ActionRateLimit(ui.RateLimitRPM))

		r.Post("/hello/world", s.helloAction(func(p *helloPage, env actionEnv, _ *http.Request) {
			p.fetchWorld(env)
		}))
		r.Post("/hello/delay", s.helloAction(func(p *helloPage, env actionEnv, r *http.Request) {
			p.fetchDelay(env, r.PostFormValue("delay"))
		}))
		r.Post("/hello/name", s.helloAction(func(p *helloPage, env actionEnv, r *http.Request) {
			p.fetchName(env, r.PostFormValue("name"))
		}))

		r.Post("/dbstuff/user", s.restAction(func(p *restPage, env actionEnv, r *http.Request) {
			p.createUser(env, r.PostFormValue("username"), r.PostFormValue("color"))
		}))
		r.Post("/dbstuff/user/get", s.restAction(func(p *restPage, env actionEnv, r *http.Request) {
			p.getUser(env, r.PostFormValue("get-id"))
		}))
		r.Post("/dbstuff/user/delete", s.restAction(func(p *restPage, env actionEnv, r *http.Request) {
			p.deleteUser(env, r.PostFormValue("delete-id"))
		}))
	})

	r.NotFound(s.handleNotFound)
	r.MethodNotAllowed(s.handleNotFound)
	return r
}

func (s *Server) endpoints() endpoint.Set {
	b := s.cfg.Get().Backend
	return endpoint.New(b.BaseAddress, b.APIPath)
}
