// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package backend is the reference HTTP API the UI talks to: plain-text
// greetings and a small user store.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ManuGH/fetchdemo/internal/health"
	xglog "github.com/ManuGH/fetchdemo/internal/log"
	"github.com/ManuGH/fetchdemo/internal/metrics"
	"github.com/ManuGH/fetchdemo/internal/user"
	"github.com/ManuGH/fetchdemo/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 16 << 10

// Options configures the reference API.
type Options struct {
	// APIPath is the segment the user routes live under, e.g. "api".
	APIPath string
	// MaxDelay caps /hello/delay/{seconds}. Zero means no cap.
	MaxDelay time.Duration
	// TracingService enables server spans when non-empty.
	TracingService string
	// AllowedOrigins enables CORS for the listed origins.
	AllowedOrigins []string
	// Health exposes /healthz and /readyz when set.
	Health *health.Manager

	sleep func(ctx context.Context, d time.Duration) error
}

// Server serves the reference API.
type Server struct {
	opts   Options
	store  Store
	router chi.Router
	logger zerolog.Logger
}

// New builds the API over store.
func New(store Store, opts Options) *Server {
	if opts.sleep == nil {
		opts.sleep = sleepContext
	}
	opts.APIPath = strings.Trim(opts.APIPath, "/")
	if opts.APIPath == "" {
		opts.APIPath = "api"
	}

	s := &Server{
		opts:   opts,
		store:  store,
		logger: xglog.WithComponent("backend"),
	}

	r := middleware.NewRouter(middleware.StackConfig{
		EnableCORS:     len(opts.AllowedOrigins) > 0,
		AllowedOrigins: opts.AllowedOrigins,
		EnableMetrics:  true,
		TracingService: opts.TracingService,
		EnableLogging:  true,
	})

	if opts.Health != nil {
		r.Get("/healthz", opts.Health.ServeHealth)
		r.Get("/readyz", opts.Health.ServeReady)
	}
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/hello", s.handleHello)
	r.Get("/hello/delay/{seconds}", s.handleHelloDelay)
	r.Get("/hello/{name}", s.handleHelloName)

	r.Route("/"+opts.APIPath+"/user", func(r chi.Router) {
		r.Post("/", s.handleCreateUser)
		r.Get("/{id}", s.handleGetUser)
		r.Delete("/{id}", s.handleDeleteUser)
	})

	s.router = r
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHello(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusOK, "Hello, world!")
}

func (s *Server) handleHelloDelay(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.ParseUint(chi.URLParam(r, "seconds"), 10, 32)
	if err != nil {
		writeText(w, http.StatusBadRequest, "invalid delay")
		return
	}
	d := time.Duration(n) * time.Second
	if s.opts.MaxDelay > 0 && d > s.opts.MaxDelay {
		d = s.opts.MaxDelay
	}
	if err := s.opts.sleep(r.Context(), d); err != nil {
		// Client went away; nobody is left to answer.
		logger := xglog.WithContext(r.Context(), s.logger)
		logger.Debug().
			Str(xglog.FieldEvent, "hello.delay_cancelled").
			Err(err).
			Msg("delayed greeting abandoned")
		return
	}
	writeText(w, http.StatusOK, fmt.Sprintf("Hello after %d seconds!", int64(d/time.Second)))
}

func (s *Server) handleHelloName(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	// chi matches on the raw path when the request carried escapes.
	if r.URL.RawPath != "" {
		var err error
		if name, err = url.PathUnescape(name); err != nil {
			writeText(w, http.StatusBadRequest, "invalid name")
			return
		}
	}
	writeText(w, http.StatusOK, fmt.Sprintf("Hello, %s!", name))
}

type createRequest struct {
	Name  string   `json:"name"`
	Color user.RGB `json:"color"`
}

type createResponse struct {
	ID user.ID `json:"id"`
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		metrics.IncBackendUserOp("create", "invalid")
		writeText(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		metrics.IncBackendUserOp("create", "invalid")
		writeText(w, http.StatusUnprocessableEntity, "name is required")
		return
	}

	id, err := s.store.Create(r.Context(), user.User{Name: req.Name, Color: req.Color})
	if err != nil {
		s.storeFailure(w, r, "create", err)
		return
	}
	metrics.IncBackendUserOp("create", "ok")
	logger := xglog.WithContext(r.Context(), s.logger)
	logger.Info().
		Str(xglog.FieldEvent, "user.created").
		Uint32("user_id", uint32(id)).
		Msg("user created")
	writeJSON(w, http.StatusCreated, createResponse{ID: id})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "get")
	if !ok {
		return
	}
	u, err := s.store.Get(r.Context(), id)
	switch {
	case errors.Is(err, ErrNotFound):
		metrics.IncBackendUserOp("get", "not_found")
		writeText(w, http.StatusNotFound, "no such user")
	case err != nil:
		s.storeFailure(w, r, "get", err)
	default:
		metrics.IncBackendUserOp("get", "ok")
		writeJSON(w, http.StatusOK, u)
	}
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "delete")
	if !ok {
		return
	}
	err := s.store.Delete(r.Context(), id)
	switch {
	case errors.Is(err, ErrNotFound):
		metrics.IncBackendUserOp("delete", "not_found")
		writeText(w, http.StatusNotFound, "no such user")
	case err != nil:
		s.storeFailure(w, r, "delete", err)
	default:
		metrics.IncBackendUserOp("delete", "ok")
		logger := xglog.WithContext(r.Context(), s.logger)
		logger.Info().
			Str(xglog.FieldEvent, "user.deleted").
			Uint32("user_id", uint32(id)).
			Msg("user deleted")
		w.WriteHeader(http.StatusOK)
	}
}

func (s *Server) pathID(w http.ResponseWriter, r *http.Request, op string) (user.ID, bool) {
	id, err := user.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		metrics.IncBackendUserOp(op, "invalid")
		writeText(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func (s *Server) storeFailure(w http.ResponseWriter, r *http.Request, op string, err error) {
	metrics.IncBackendUserOp(op, "error")
	logger := xglog.WithContext(r.Context(), s.logger)
	logger.Error().
		Err(err).
		Str(xglog.FieldEvent, "user.store_failed").
		Str(xglog.FieldOperation, op).
		Msg("user store operation failed")
	writeText(w, http.StatusInternalServerError, "internal error")
}

// StoreChecker reports the store as a readiness dependency.
func StoreChecker(store Store) health.Checker {
	return health.NewFuncChecker("store", health.StatusUnhealthy, store.Ping)
}

func writeText(w http.ResponseWriter, code int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	_, _ = io.WriteString(w, body)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
