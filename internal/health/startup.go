// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package health

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ManuGH/fetchdemo/internal/config"
	"github.com/ManuGH/fetchdemo/internal/log"
	platformnet "github.com/ManuGH/fetchdemo/internal/platform/net"
	"github.com/rs/zerolog"
)

// PerformUIStartupChecks validates what the UI server needs before binding.
func PerformUIStartupChecks(cfg config.AppConfig) error {
	logger := log.WithComponent("startup-check")
	if err := checkListenAddr(logger, cfg.UI.ListenAddr); err != nil {
		return err
	}
	u, err := platformnet.ParseBaseURL(cfg.Backend.BaseAddress)
	if err != nil {
		return fmt.Errorf("invalid backend base address: %w", err)
	}
	logger.Info().Str(log.FieldBaseURL, u.String()).Msg("backend base address is valid")
	return nil
}

// PerformBackendStartupChecks validates the reference backend's listen address
// and makes sure the database directory exists and is writable.
func PerformBackendStartupChecks(cfg config.DemoBackendConfig) error {
	logger := log.WithComponent("startup-check")
	if err := checkListenAddr(logger, cfg.ListenAddr); err != nil {
		return err
	}
	if cfg.DBPath == "" || cfg.DBPath == ":memory:" {
		logger.Warn().Msg("user store is in memory; users are lost on restart")
		return nil
	}
	return checkDataDir(logger, filepath.Dir(cfg.DBPath))
}

func checkListenAddr(logger zerolog.Logger, addr string) error {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid listen address %q: %w", addr, err)
	}
	n, err := strconv.Atoi(port)
	if err != nil || n < 0 || n > 65535 {
		return fmt.Errorf("invalid listen port %q in %q", port, addr)
	}
	logger.Info().Str("addr", addr).Msg("listen address is valid")
	return nil
}

func checkDataDir(logger zerolog.Logger, path string) error {
	if err := os.MkdirAll(path, 0o750); err != nil {
		return fmt.Errorf("create data directory %s: %w", path, err)
	}
	probe := filepath.Join(path, ".write_test")
	if err := os.WriteFile(probe, []byte("ok"), 0o600); err != nil {
		return fmt.Errorf("directory is not writable: %s: %w", path, err)
	}
	_ = os.Remove(probe)
	logger.Info().Str("path", path).Msg("data directory is writable")
	return nil
}
