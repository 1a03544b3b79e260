// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package web

import (
	"errors"
	"net/http"

	xglog "github.com/ManuGH/fetchdemo/internal/log"
	"github.com/ManuGH/fetchdemo/internal/loop"
)

const maxFormBytes = 64 << 10

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.pages.render(w, r, http.StatusOK, pageHome, pageData{Title: "Home"})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.pages.render(w, r, http.StatusNotFound, pageNotFound, pageData{Title: "Not found"})
}

func (s *Server) handleHello(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.acquire(w, r)
	var v helloView
	if !s.onLoop(w, r, sess, "/hello", func() { v = sess.hello.view() }) {
		return
	}
	s.pages.render(w, r, http.StatusOK, pageHello, pageData{
		Title:   "Hello",
		Refresh: refreshSeconds(v.Pending, s.cfg.Get().UI.RefreshInterval),
		Notices: v.Notices,
		View:    v,
	})
}

func (s *Server) handleRest(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.acquire(w, r)
	var v restView
	if !s.onLoop(w, r, sess, "/dbstuff", func() { v = sess.rest.view() }) {
		return
	}
	s.pages.render(w, r, http.StatusOK, pageRest, pageData{
		Title:   "User stuff",
		Refresh: refreshSeconds(v.Pending, s.cfg.Get().UI.RefreshInterval),
		Notices: v.Notices,
		View:    v,
	})
}

func (s *Server) helloAction(fn func(*helloPage, actionEnv, *http.Request)) http.HandlerFunc {
	return s.action(pageHello, "/hello", func(sess *Session, env actionEnv, r *http.Request) {
		fn(sess.hello, env, r)
	})
}

func (s *Server) restAction(fn func(*restPage, actionEnv, *http.Request)) http.HandlerFunc {
	return s.action(pageRest, "/dbstuff", func(sess *Session, env actionEnv, r *http.Request) {
		fn(sess.rest, env, r)
	})
}

// action runs fn on the session loop, then redirects back to the page
// (Post/Redirect/Get). fn only starts requests; it never waits for them.
func (s *Server) action(page, back string, fn func(*Session, actionEnv, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
		if err := r.ParseForm(); err != nil {
			http.Error(w, "malformed form", http.StatusBadRequest)
			return
		}
		sess := s.sessions.acquire(w, r)
		ctx := xglog.ContextWithSessionID(r.Context(), sess.ID)
		env := actionEnv{
			ctx:     ctx,
			page:    page,
			session: sess.ID,
			owner:   sess.loop,
			client:  s.client,
			urls:    s.endpoints(),
		}
		if !s.onLoop(w, r, sess, back, func() { fn(sess, env, r) }) {
			return
		}
		http.Redirect(w, r, back, http.StatusSeeOther)
	}
}

// onLoop runs fn on the session loop and waits for it. A session whose loop
// stopped underneath the request is forgotten and the browser is sent back
// to back, which opens a fresh session.
func (s *Server) onLoop(w http.ResponseWriter, r *http.Request, sess *Session, back string, fn func()) bool {
	err := sess.loop.Call(r.Context(), fn)
	if err == nil {
		return true
	}
	if errors.Is(err, loop.ErrStopped) {
		s.sessions.forget(sess)
		http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1})
		http.Redirect(w, r, back, http.StatusSeeOther)
		return false
	}
	logger := xglog.WithComponentFromContext(r.Context(), "web")
	logger.Debug().Err(err).Str(xglog.FieldEvent, "session.call_aborted").Msg("request ended before the session loop answered")
	return false
}
