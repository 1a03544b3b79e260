// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import "time"

// AppConfig is the fully resolved configuration.
type AppConfig struct {
	Version string

	Backend     BackendConfig
	UI          UIConfig
	Log         LogConfig
	Telemetry   TelemetryConfig
	DemoBackend DemoBackendConfig
}

// BackendConfig locates the HTTP API the UI dispatches to.
type BackendConfig struct {
	BaseAddress string
	APIPath     string
}

// UIConfig configures the UI server.
type UIConfig struct {
	ListenAddr      string
	SessionTTL      time.Duration
	RefreshInterval time.Duration
	RateLimitRPM    int
	MetricsEnabled  bool
}

// LogConfig configures the global logger.
type LogConfig struct {
	Level   string
	Service string
}

// TelemetryConfig configures OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled      bool
	ExporterType string // grpc|http
	Endpoint     string
	SamplingRate float64
	Environment  string
}

// DemoBackendConfig configures the reference backend.
type DemoBackendConfig struct {
	ListenAddr string
	DBPath     string
	MaxDelay   time.Duration
}

// FileConfig mirrors the YAML file. Pointers distinguish "absent" from zero.
type FileConfig struct {
	Backend *struct {
		BaseAddress string `yaml:"baseAddress"`
		APIPath     string `yaml:"apiPath"`
	} `yaml:"backend"`
	UI *struct {
		ListenAddr      string `yaml:"listenAddr"`
		SessionTTL      string `yaml:"sessionTTL"`
		RefreshInterval string `yaml:"refreshInterval"`
		RateLimitRPM    *int   `yaml:"rateLimitRPM"`
		MetricsEnabled  *bool  `yaml:"metricsEnabled"`
	} `yaml:"ui"`
	Log *struct {
		Level   string `yaml:"level"`
		Service string `yaml:"service"`
	} `yaml:"log"`
	Telemetry *struct {
		Enabled      *bool    `yaml:"enabled"`
		ExporterType string   `yaml:"exporterType"`
		Endpoint     string   `yaml:"endpoint"`
		SamplingRate *float64 `yaml:"samplingRate"`
		Environment  string   `yaml:"environment"`
	} `yaml:"telemetry"`
	DemoBackend *struct {
		ListenAddr string `yaml:"listenAddr"`
		DBPath     string `yaml:"dbPath"`
		MaxDelay   string `yaml:"maxDelay"`
	} `yaml:"demoBackend"`
}
