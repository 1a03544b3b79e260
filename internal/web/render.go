// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	xglog "github.com/ManuGH/fetchdemo/internal/log"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	pageHome     = "home"
	pageHello    = "hello"
	pageRest     = "rest"
	pageNotFound = "notfound"
)

// renderer holds one template set per page, each layered on the shared layout.
type renderer struct {
	pages map[string]*template.Template
}

func newRenderer() (*renderer, error) {
	layout, err := template.ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	r := &renderer{pages: make(map[string]*template.Template)}
	for _, name := range []string{pageHome, pageHello, pageRest, pageNotFound} {
		t, err := layout.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(templateFS, "templates/"+name+".html"); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// pageData is what the layout sees. Refresh is the meta refresh delay in
// seconds; zero disables it.
type pageData struct {
	Title   string
	Refresh int
	Notices []Notice
	View    any
}

func refreshSeconds(pending bool, interval time.Duration) int {
	if !pending {
		return 0
	}
	s := int((interval + time.Second - 1) / time.Second)
	if s < 1 {
		s = 1
	}
	return s
}

func (rd *renderer) render(w http.ResponseWriter, r *http.Request, status int, page string, data pageData) {
	t, ok := rd.pages[page]
	if !ok {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		logger := xglog.WithComponentFromContext(r.Context(), "web")
		logger.Error().Err(err).
			Str(xglog.FieldEvent, "page.render_failed").
			Str(xglog.FieldPage, page).
			Msg("template execution failed")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
