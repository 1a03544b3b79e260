// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigHolder_Reload(t *testing.T) {
	path := writeFile(t, "config.yaml", "backend:\n  baseAddress: http://one:8000\n")
	loader := newTestLoader(path)
	initial, err := loader.Load()
	require.NoError(t, err)

	h := NewConfigHolder(initial, loader, path)
	ch := make(chan AppConfig, 1)
	h.RegisterListener(ch)

	require.NoError(t, os.WriteFile(path, []byte("backend:\n  baseAddress: http://two:8000\n"), 0o600))
	require.NoError(t, h.Reload(context.Background()))
	assert.Equal(t, "http://two:8000", h.Get().Backend.BaseAddress)
	assert.Equal(t, "http://two:8000", (<-ch).Backend.BaseAddress)
}

func TestConfigHolder_InvalidReloadKeepsOld(t *testing.T) {
	path := writeFile(t, "config.yaml", "backend:\n  baseAddress: http://one:8000\n")
	loader := newTestLoader(path)
	initial, err := loader.Load()
	require.NoError(t, err)
	h := NewConfigHolder(initial, loader, path)

	require.NoError(t, os.WriteFile(path, []byte("backend:\n  baseAddress: not-a-url\n"), 0o600))
	require.Error(t, h.Reload(context.Background()))
	assert.Equal(t, "http://one:8000", h.Get().Backend.BaseAddress)
}

func TestConfigHolder_WatcherReloadsOnWrite(t *testing.T) {
	path := writeFile(t, "config.yaml", "backend:\n  apiPath: one\n")
	loader := newTestLoader(path)
	initial, err := loader.Load()
	require.NoError(t, err)
	h := NewConfigHolder(initial, loader, path)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, h.StartWatcher(ctx))

	require.NoError(t, os.WriteFile(path, []byte("backend:\n  apiPath: two\n"), 0o600))
	assert.Eventually(t, func() bool {
		return h.Get().Backend.APIPath == "two"
	}, 5*time.Second, 50*time.Millisecond)
}

func TestConfigHolder_NoPathNoWatcher(t *testing.T) {
	h := NewConfigHolder(AppConfig{}, newTestLoader(""), "")
	assert.NoError(t, h.StartWatcher(context.Background()))
}

func TestMaskURL(t *testing.T) {
	assert.Equal(t, "http://host:8000/x", maskURL("http://user:pw@host:8000/x"))
}
