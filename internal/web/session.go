// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package web

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/ManuGH/fetchdemo/internal/cache"
	xglog "github.com/ManuGH/fetchdemo/internal/log"
	"github.com/ManuGH/fetchdemo/internal/loop"
	"github.com/ManuGH/fetchdemo/internal/metrics"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SessionCookie names the cookie carrying the session ID.
const SessionCookie = "fetchdemo_session"

// Session is one browser's UI. Its pages are only touched from functions its
// loop runs.
type Session struct {
	ID    string
	loop  *loop.Loop
	hello *helloPage
	rest  *restPage
}

func newSession(ctx context.Context, id string) *Session {
	return &Session{
		ID:    id,
		loop:  loop.New(ctx),
		hello: newHelloPage(),
		rest:  newRestPage(),
	}
}

// sessionStore keeps sessions alive while they are used. Expiry stops the
// session loop: requests still in flight settle into a dead owner and are
// dropped.
type sessionStore struct {
	ctx     context.Context
	ttl     time.Duration
	entries *cache.Memory[*Session]
	logger  zerolog.Logger

	mu sync.Mutex // serialises creation
}

func newSessionStore(ctx context.Context, ttl time.Duration) *sessionStore {
	s := &sessionStore{
		ctx:    ctx,
		ttl:    ttl,
		logger: xglog.WithComponent("session"),
	}
	janitor := ttl / 2
	if janitor < time.Second {
		janitor = time.Second
	}
	s.entries = cache.NewMemory[*Session](janitor,
		cache.WithSliding[*Session](),
		cache.WithOnEvict[*Session](s.closed),
	)
	return s
}

func (s *sessionStore) closed(id string, sess *Session, expired bool) {
	sess.loop.Stop()
	metrics.SessionClosed(expired)
	s.logger.Debug().
		Str(xglog.FieldEvent, "session.closed").
		Str(xglog.FieldSessionID, id).
		Bool("expired", expired).
		Msg("session closed")
}

// lookup returns the session named by the request cookie, if it is live.
func (s *sessionStore) lookup(r *http.Request) (*Session, bool) {
	c, err := r.Cookie(SessionCookie)
	if err != nil || c.Value == "" {
		return nil, false
	}
	return s.entries.Get(c.Value)
}

// acquire returns the caller's session, creating one and setting the cookie
// when there is none.
func (s *sessionStore) acquire(w http.ResponseWriter, r *http.Request) *Session {
	if sess, ok := s.lookup(r); ok {
		return sess
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.lookup(r); ok {
		return sess
	}

	sess := newSession(s.ctx, uuid.NewString())
	s.entries.Set(sess.ID, sess, s.ttl)
	metrics.SessionOpened()
	s.logger.Debug().
		Str(xglog.FieldEvent, "session.opened").
		Str(xglog.FieldSessionID, sess.ID).
		Msg("session opened")

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	return sess
}

// forget drops a session whose loop turned out to be stopped.
func (s *sessionStore) forget(sess *Session) {
	s.entries.Delete(sess.ID)
}

func (s *sessionStore) len() int {
	return s.entries.Len()
}

func (s *sessionStore) stats() cache.Stats {
	return s.entries.Stats()
}

// close stops every session loop and the janitor.
func (s *sessionStore) close() {
	st := s.entries.Stats()
	s.logger.Info().
		Str(xglog.FieldEvent, "sessions.closed").
		Int("open", st.CurrentSize).
		Int64("lookups_hit", st.Hits).
		Int64("lookups_missed", st.Misses).
		Int64("created", st.Sets).
		Int64("expired", st.Evictions).
		Msg("session store closed")
	s.entries.Clear()
	s.entries.Stop()
}
