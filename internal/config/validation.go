// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ManuGH/fetchdemo/internal/metrics"
	platformnet "github.com/ManuGH/fetchdemo/internal/platform/net"
)

// Validate checks cfg and reports every problem at once, each wrapped in ErrInvalidConfig.
func Validate(cfg AppConfig) error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if _, err := platformnet.ParseBaseURL(cfg.Backend.BaseAddress); err != nil {
		add("backend.baseAddress %q: %v", cfg.Backend.BaseAddress, err)
	}
	if strings.Trim(cfg.Backend.APIPath, "/ ") == "" {
		add("backend.apiPath must not be empty")
	}

	if strings.TrimSpace(cfg.UI.ListenAddr) == "" {
		add("ui.listenAddr must not be empty")
	}
	if cfg.UI.SessionTTL <= 0 {
		add("ui.sessionTTL must be positive, got %s", cfg.UI.SessionTTL)
	}
	if cfg.UI.RefreshInterval <= 0 {
		add("ui.refreshInterval must be positive, got %s", cfg.UI.RefreshInterval)
	}
	if cfg.UI.RateLimitRPM < 0 {
		add("ui.rateLimitRPM must not be negative, got %d", cfg.UI.RateLimitRPM)
	}

	if _, err := zerolog.ParseLevel(cfg.Log.Level); err != nil {
		add("log.level %q: %v", cfg.Log.Level, err)
	}

	if cfg.Telemetry.Enabled {
		switch cfg.Telemetry.ExporterType {
		case "grpc", "http":
		default:
			add("telemetry.exporterType %q: want grpc or http", cfg.Telemetry.ExporterType)
		}
		if cfg.Telemetry.SamplingRate < 0 || cfg.Telemetry.SamplingRate > 1 {
			add("telemetry.samplingRate %v: want 0..1", cfg.Telemetry.SamplingRate)
		}
	}

	if cfg.DemoBackend.MaxDelay <= 0 {
		add("demoBackend.maxDelay must be positive, got %s", cfg.DemoBackend.MaxDelay)
	}

	for range errs {
		metrics.IncConfigValidationError()
	}
	return errors.Join(errs...)
}
