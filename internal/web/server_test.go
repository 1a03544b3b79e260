// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ManuGH/fetchdemo/internal/config"
	"github.com/ManuGH/fetchdemo/internal/dispatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticConfig config.AppConfig

func (c staticConfig) Get() config.AppConfig { return config.AppConfig(c) }

// fakeBackend mimics the reference backend closely enough for the UI.
type fakeBackend struct {
	*httptest.Server
	hits     atomic.Int64
	release  chan struct{}
	lastPost atomic.Value
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	b := &fakeBackend{release: make(chan struct{})}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /hello", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "Hello, world!")
	})
	mux.HandleFunc("GET /hello/delay/{s}", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-b.release:
		case <-r.Context().Done():
			return
		}
		_, _ = io.WriteString(w, "Waited "+r.PathValue("s")+" seconds")
	})
	mux.HandleFunc("GET /hello/{name}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "Hello, "+r.PathValue("name")+"!")
	})
	mux.HandleFunc("GET /api/user/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "7" {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, `{"name":"Ann","color":{"r":10,"g":20,"b":30}}`)
	})
	mux.HandleFunc("POST /api/user", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		b.lastPost.Store(body)
		if body["name"] == "boom" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":3}`)
	})
	mux.HandleFunc("DELETE /api/user/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "7" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	b.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.hits.Add(1)
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(b.Close)
	return b
}

type uiClient struct {
	t    *testing.T
	base string
	http *http.Client
}

func newUI(t *testing.T, backendURL string) (*Server, *uiClient) {
	t.Helper()
	cfg := config.AppConfig{
		Version: "test",
		Backend: config.BackendConfig{BaseAddress: backendURL, APIPath: "api"},
		UI: config.UIConfig{
			SessionTTL:      time.Minute,
			RefreshInterval: 200 * time.Millisecond,
			MetricsEnabled:  true,
		},
	}
	s, err := New(context.Background(), Deps{Config: staticConfig(cfg), Client: dispatch.New()})
	require.NoError(t, err)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		s.Close()
	})
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return s, &uiClient{t: t, base: ts.URL, http: &http.Client{Jar: jar, Timeout: 5 * time.Second}}
}

func (c *uiClient) get(path string) (int, string) {
	c.t.Helper()
	res, err := c.http.Get(c.base + path)
	require.NoError(c.t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(c.t, err)
	return res.StatusCode, string(body)
}

// post submits a form and follows the redirect back to the page.
func (c *uiClient) post(path string, form url.Values) (int, string) {
	c.t.Helper()
	req, err := http.NewRequest(http.MethodPost, c.base+path, strings.NewReader(form.Encode()))
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Origin", c.base)
	res, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(c.t, err)
	return res.StatusCode, string(body)
}

const refreshMarker = `http-equiv="refresh"`

// settle keeps rendering page until nothing is in flight. It returns every
// body seen, since notices are shown exactly once.
func (c *uiClient) settle(page, first string) string {
	c.t.Helper()
	seen := first
	last := first
	deadline := time.Now().Add(5 * time.Second)
	for strings.Contains(last, refreshMarker) {
		require.True(c.t, time.Now().Before(deadline), "page %s never settled", page)
		time.Sleep(20 * time.Millisecond)
		_, last = c.get(page)
		seen += last
	}
	return seen
}

func TestHome(t *testing.T) {
	_, c := newUI(t, "http://127.0.0.1:1")
	code, body := c.get("/")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `href="/hello"`)
	assert.Contains(t, body, `href="/404"`)
	assert.Contains(t, body, `href="/dbstuff"`)
}

func TestNotFound(t *testing.T) {
	_, c := newUI(t, "http://127.0.0.1:1")
	for _, path := range []string{"/404", "/nope", "/hello/extra/segments"} {
		code, body := c.get(path)
		assert.Equal(t, http.StatusNotFound, code, path)
		assert.Contains(t, body, "Nothing to see here", path)
	}
}

func TestHello_InitialStateIsIdle(t *testing.T) {
	_, c := newUI(t, "http://127.0.0.1:1")
	_, body := c.get("/hello")
	assert.Contains(t, body, "Not fetching")
	assert.NotContains(t, body, refreshMarker)
}

func TestHello_World(t *testing.T) {
	b := newFakeBackend(t)
	_, c := newUI(t, b.URL)

	code, body := c.post("/hello/world", nil)
	require.Equal(t, http.StatusOK, code)
	all := c.settle("/hello", body)
	assert.Contains(t, all, "Hello, world!")
}

func TestHello_NameDefaultsToJimmy(t *testing.T) {
	b := newFakeBackend(t)
	_, c := newUI(t, b.URL)

	_, body := c.post("/hello/name", url.Values{"name": {""}})
	assert.Contains(t, c.settle("/hello", body), "Hello, Jimmy!")

	_, body = c.post("/hello/name", url.Values{"name": {"Ann"}})
	assert.Contains(t, c.settle("/hello", body), "Hello, Ann!")
}

func TestHello_DelayShowsFetchingUntilSettled(t *testing.T) {
	b := newFakeBackend(t)
	_, c := newUI(t, b.URL)

	_, body := c.post("/hello/delay", url.Values{"delay": {"4"}})
	assert.Contains(t, body, "Fetching")
	assert.Contains(t, body, refreshMarker)

	close(b.release)
	assert.Contains(t, c.settle("/hello", body), "Waited 4 seconds")
}

func TestHello_InvalidDelayIsNotDispatched(t *testing.T) {
	b := newFakeBackend(t)
	_, c := newUI(t, b.URL)

	_, body := c.post("/hello/delay", url.Values{"delay": {"soon"}})
	assert.Contains(t, body, "Invalid delay")
	assert.Contains(t, body, "Not fetching")
	assert.Equal(t, int64(0), b.hits.Load())
}

func TestHello_BackendDown(t *testing.T) {
	b := newFakeBackend(t)
	down := b.URL
	b.Close()
	_, c := newUI(t, down)

	_, body := c.post("/hello/world", nil)
	assert.Contains(t, c.settle("/hello", body), "Failed to fetch")
}

func TestRest_GetUser(t *testing.T) {
	b := newFakeBackend(t)
	_, c := newUI(t, b.URL)

	_, body := c.post("/dbstuff/user/get", url.Values{"get-id": {"7"}})
	all := c.settle("/dbstuff", body)
	assert.Contains(t, all, ">Ann</span>")
	assert.Contains(t, all, "color: #0a141e")
}

func TestRest_GetMissingUser(t *testing.T) {
	b := newFakeBackend(t)
	_, c := newUI(t, b.URL)

	_, body := c.post("/dbstuff/user/get", url.Values{"get-id": {"99"}})
	all := c.settle("/dbstuff", body)
	assert.Contains(t, all, "No such user id")
	assert.Equal(t, 1, strings.Count(all, "No such user id"), "a settlement is announced once")
}

func TestRest_MalformedIDsAreNotDispatched(t *testing.T) {
	b := newFakeBackend(t)
	_, c := newUI(t, b.URL)

	_, body := c.post("/dbstuff/user/get", url.Values{"get-id": {"abc"}})
	assert.Contains(t, body, "Invalid id")
	_, body = c.post("/dbstuff/user/delete", url.Values{"delete-id": {"-1"}})
	assert.Contains(t, body, "Invalid id")
	_, body = c.post("/dbstuff/user", url.Values{"username": {"Ann"}, "color": {"#zz0000"}})
	assert.Contains(t, body, "Invalid colour")

	assert.Equal(t, int64(0), b.hits.Load())
}

func TestRest_Create(t *testing.T) {
	b := newFakeBackend(t)
	_, c := newUI(t, b.URL)

	_, body := c.post("/dbstuff/user", url.Values{"username": {"Ann"}, "color": {"#0a141e"}})
	all := c.settle("/dbstuff", body)
	assert.Contains(t, all, "Created")
	assert.Contains(t, all, "Last created id: 3")

	sent, ok := b.lastPost.Load().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Ann", sent["name"])
	assert.Equal(t, map[string]any{"r": 10.0, "g": 20.0, "b": 30.0}, sent["color"])

	_, body = c.post("/dbstuff/user", url.Values{"username": {"boom"}, "color": {"#000000"}})
	assert.Contains(t, c.settle("/dbstuff", body), "Create failed (HTTP 500)")
	_, body = c.get("/dbstuff")
	assert.NotContains(t, body, "Last created id", "a failed create must not show the previous id")
}

func TestRest_Delete(t *testing.T) {
	b := newFakeBackend(t)
	_, c := newUI(t, b.URL)

	_, body := c.post("/dbstuff/user/delete", url.Values{"delete-id": {"7"}})
	assert.Contains(t, c.settle("/dbstuff", body), "Deleted")

	_, body = c.post("/dbstuff/user/delete", url.Values{"delete-id": {"8"}})
	assert.Contains(t, c.settle("/dbstuff", body), "No such user id")
}

func TestRest_NetworkFailureReportsReason(t *testing.T) {
	b := newFakeBackend(t)
	down := b.URL
	b.Close()
	_, c := newUI(t, down)

	_, body := c.post("/dbstuff/user/get", url.Values{"get-id": {"7"}})
	assert.Contains(t, c.settle("/dbstuff", body), "Get request failed; Reason: network")

	_, body = c.post("/dbstuff/user/delete", url.Values{"delete-id": {"7"}})
	assert.Contains(t, c.settle("/dbstuff", body), "Delete request failed; Reason: network")

	_, body = c.post("/dbstuff/user", url.Values{"username": {"Ann"}, "color": {"#000000"}})
	assert.Contains(t, c.settle("/dbstuff", body), "Create request failed; Reason: network")
}

func TestSessionsAreIsolated(t *testing.T) {
	b := newFakeBackend(t)
	s, c := newUI(t, b.URL)

	_, body := c.post("/hello/world", nil)
	c.settle("/hello", body)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	other := &uiClient{t: t, base: c.base, http: &http.Client{Jar: jar, Timeout: 5 * time.Second}}
	_, body = other.get("/hello")
	assert.Contains(t, body, "Not fetching")
	assert.Equal(t, 2, s.sessions.len())
}

func TestActions_RequireSameOrigin(t *testing.T) {
	_, c := newUI(t, "http://127.0.0.1:1")
	res, err := c.http.PostForm(c.base+"/hello/world", nil)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
}

func TestOpsEndpoints(t *testing.T) {
	_, c := newUI(t, "http://127.0.0.1:1")
	code, _ := c.get("/healthz")
	assert.Equal(t, http.StatusOK, code)
	code, body := c.get("/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "fetchdemo_http_request_duration_seconds")
}
