// SPDX-License-Identifier: MIT
package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitOrigins(t *testing.T) {
	assert.Nil(t, splitOrigins(""))
	assert.Equal(t, []string{"http://a", "https://b"}, splitOrigins(" http://a, ,https://b "))
}

func TestHealthcheck(t *testing.T) {
	var ready atomic.Bool
	ready.Store(true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/healthz":
			w.WriteHeader(http.StatusOK)
		case r.URL.Path == "/readyz" && ready.Load():
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer srv.Close()

	var out, errOut bytes.Buffer
	assert.Equal(t, 0, healthcheck([]string{"-url", srv.URL}, &out, &errOut))
	assert.Contains(t, out.String(), "Healthcheck successful (ready)")

	ready.Store(false)
	errOut.Reset()
	assert.Equal(t, 1, healthcheck([]string{"-url", srv.URL + "/"}, &out, &errOut))
	assert.Contains(t, errOut.String(), "503")

	assert.Equal(t, 0, healthcheck([]string{"-url", srv.URL, "-mode", "live"}, &out, &errOut))

	srv.Close()
	errOut.Reset()
	assert.Equal(t, 1, healthcheck([]string{"-url", srv.URL, "-timeout", "200ms"}, &out, &errOut))
	assert.Contains(t, errOut.String(), "network")

	assert.Equal(t, 2, healthcheck([]string{"-bogus"}, &out, &errOut))
}
