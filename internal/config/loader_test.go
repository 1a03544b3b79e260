// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newTestLoader(path string) *Loader {
	return NewLoader(path, "test").WithDotEnv("")
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := newTestLoader("").Load()
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.Version)
	assert.Equal(t, DefaultBaseAddress, cfg.Backend.BaseAddress)
	assert.Equal(t, DefaultAPIPath, cfg.Backend.APIPath)
	assert.Equal(t, DefaultListenAddr, cfg.UI.ListenAddr)
	assert.Equal(t, DefaultSessionTTL, cfg.UI.SessionTTL)
	assert.Equal(t, DefaultRefreshInterval, cfg.UI.RefreshInterval)
	assert.True(t, cfg.UI.MetricsEnabled)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, DefaultBackendDB, cfg.DemoBackend.DBPath)
}

func TestLoad_FileThenEnvPrecedence(t *testing.T) {
	path := writeFile(t, "config.yaml", `
backend:
  baseAddress: http://backend.local:9000
  apiPath: v2
ui:
  listenAddr: ":9999"
  sessionTTL: 5m
  rateLimitRPM: 30
log:
  level: debug
demoBackend:
  maxDelay: 3s
`)
	t.Setenv(EnvAPIPath, "v3")

	cfg, err := newTestLoader(path).Load()
	require.NoError(t, err)

	assert.Equal(t, "http://backend.local:9000", cfg.Backend.BaseAddress, "file beats default")
	assert.Equal(t, "v3", cfg.Backend.APIPath, "env beats file")
	assert.Equal(t, ":9999", cfg.UI.ListenAddr)
	assert.Equal(t, 5*time.Minute, cfg.UI.SessionTTL)
	assert.Equal(t, 30, cfg.UI.RateLimitRPM)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 3*time.Second, cfg.DemoBackend.MaxDelay)

	_, consumed := newTestLoader("").ConsumedEnvKeys[EnvAPIPath]
	assert.False(t, consumed, "a fresh loader has consumed nothing")
}

func TestLoad_LegacyDotEnvNames(t *testing.T) {
	t.Setenv(legacyEnvBaseAddr, "http://legacy:8000")
	t.Setenv(legacyEnvAPIPath, "legacy")

	cfg, err := newTestLoader("").Load()
	require.NoError(t, err)
	assert.Equal(t, "http://legacy:8000", cfg.Backend.BaseAddress)
	assert.Equal(t, "legacy", cfg.Backend.APIPath)

	t.Setenv(EnvBaseAddress, "http://canonical:8000")
	cfg, err = newTestLoader("").Load()
	require.NoError(t, err)
	assert.Equal(t, "http://canonical:8000", cfg.Backend.BaseAddress, "canonical key wins over alias")
}

func TestLoad_DotEnvFile(t *testing.T) {
	require.NoError(t, os.Unsetenv(EnvAPIPath))
	t.Cleanup(func() { _ = os.Unsetenv(EnvAPIPath) })

	dotenv := writeFile(t, ".env", "FETCHDEMO_API_PATH=from-dotenv\n")
	cfg, err := NewLoader("", "test").WithDotEnv(dotenv).Load()
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Backend.APIPath)
}

func TestLoad_MissingDotEnvIsIgnored(t *testing.T) {
	_, err := NewLoader("", "test").WithDotEnv(filepath.Join(t.TempDir(), "absent.env")).Load()
	require.NoError(t, err)
}

func TestLoad_UnknownFieldRejected(t *testing.T) {
	path := writeFile(t, "config.yaml", "backend:\n  baseAdress: http://typo\n")
	_, err := newTestLoader(path).Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownConfigField)
}

func TestLoad_BadInputs(t *testing.T) {
	tests := map[string]struct {
		name    string
		content string
	}{
		"wrong extension": {"config.json", `{}`},
		"bad duration":    {"config.yaml", "ui:\n  sessionTTL: soon\n"},
		"two documents":   {"config.yaml", "log:\n  level: info\n---\nlog:\n  level: debug\n"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, tt.name, tt.content)
			_, err := newTestLoader(path).Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_EmptyFileUsesDefaults(t *testing.T) {
	path := writeFile(t, "config.yaml", "")
	cfg, err := newTestLoader(path).Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseAddress, cfg.Backend.BaseAddress)
}
