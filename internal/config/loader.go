// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultBaseAddress     = "http://localhost:8000"
	DefaultAPIPath         = "api"
	DefaultListenAddr      = ":8080"
	DefaultSessionTTL      = 30 * time.Minute
	DefaultRefreshInterval = time.Second
	DefaultRateLimitRPM    = 600
	DefaultBackendListen   = ":8000"
	DefaultBackendDB       = ":memory:"
	DefaultBackendMaxDelay = 30 * time.Second
)

// Environment keys.
const (
	EnvBaseAddress      = "FETCHDEMO_BASE_ADDRESS"
	EnvAPIPath          = "FETCHDEMO_API_PATH"
	EnvListen           = "FETCHDEMO_LISTEN"
	EnvSessionTTL       = "FETCHDEMO_SESSION_TTL"
	EnvRefreshInterval  = "FETCHDEMO_REFRESH_INTERVAL"
	EnvRateLimitRPM     = "FETCHDEMO_RATE_LIMIT_RPM"
	EnvMetricsEnabled   = "FETCHDEMO_METRICS_ENABLED"
	EnvLogLevel         = "FETCHDEMO_LOG_LEVEL"
	EnvLogService       = "FETCHDEMO_LOG_SERVICE"
	EnvTracingEnabled   = "FETCHDEMO_TRACING_ENABLED"
	EnvTracingExporter  = "FETCHDEMO_TRACING_EXPORTER"
	EnvTracingEndpoint  = "FETCHDEMO_TRACING_ENDPOINT"
	EnvTracingSampling  = "FETCHDEMO_TRACING_SAMPLING_RATE"
	EnvTracingEnv       = "FETCHDEMO_TRACING_ENVIRONMENT"
	EnvBackendListen    = "FETCHDEMO_BACKEND_LISTEN"
	EnvBackendDB        = "FETCHDEMO_BACKEND_DB"
	EnvBackendMaxDelay  = "FETCHDEMO_BACKEND_MAX_DELAY"
	legacyEnvBaseAddr   = "BASE_ADDRESS"
	legacyEnvAPIPath    = "API_PATH"
	defaultDotEnvPath   = ".env"
	defaultServiceName  = "fetchdemo"
	defaultExporterType = "grpc"
	defaultOTLPEndpoint = "localhost:4317"
)

// Loader handles configuration loading with precedence.
type Loader struct {
	configPath      string
	dotEnvPath      string
	version         string
	ConsumedEnvKeys map[string]struct{}
}

// NewLoader creates a new configuration loader. An empty configPath skips the file layer.
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath:      configPath,
		dotEnvPath:      defaultDotEnvPath,
		version:         version,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

// WithDotEnv points the loader at a different .env file; "" disables it.
func (l *Loader) WithDotEnv(path string) *Loader {
	l.dotEnvPath = path
	return l
}

func (l *Loader) envString(key, defaultVal string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseString(key, defaultVal)
}

func (l *Loader) envStringWithAlias(key, alias, defaultVal string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	l.ConsumedEnvKeys[alias] = struct{}{}
	return ParseStringWithAlias(key, alias, defaultVal)
}

func (l *Loader) envBool(key string, defaultVal bool) bool {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseBool(key, defaultVal)
}

func (l *Loader) envInt(key string, defaultVal int) int {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt(key, defaultVal)
}

func (l *Loader) envDuration(key string, defaultVal time.Duration) time.Duration {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseDuration(key, defaultVal)
}

func (l *Loader) envFloat(key string, defaultVal float64) float64 {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseFloat(key, defaultVal)
}

// Load loads configuration with precedence ENV > File > Defaults and validates the result.
func (l *Loader) Load() (AppConfig, error) {
	cfg := AppConfig{}
	l.setDefaults(&cfg)

	if err := l.loadDotEnv(); err != nil {
		return cfg, fmt.Errorf("load .env: %w", err)
	}

	if l.configPath != "" {
		fileCfg, err := l.loadFile(l.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
		if err := l.mergeFileConfig(&cfg, fileCfg); err != nil {
			return cfg, fmt.Errorf("merge file config: %w", err)
		}
	}

	l.mergeEnvConfig(&cfg)

	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (l *Loader) setDefaults(cfg *AppConfig) {
	cfg.Version = l.version
	cfg.Backend = BackendConfig{BaseAddress: DefaultBaseAddress, APIPath: DefaultAPIPath}
	cfg.UI = UIConfig{
		ListenAddr:      DefaultListenAddr,
		SessionTTL:      DefaultSessionTTL,
		RefreshInterval: DefaultRefreshInterval,
		RateLimitRPM:    DefaultRateLimitRPM,
		MetricsEnabled:  true,
	}
	cfg.Log = LogConfig{Level: "info", Service: defaultServiceName}
	cfg.Telemetry = TelemetryConfig{
		ExporterType: defaultExporterType,
		Endpoint:     defaultOTLPEndpoint,
		SamplingRate: 1.0,
		Environment:  "development",
	}
	cfg.DemoBackend = DemoBackendConfig{
		ListenAddr: DefaultBackendListen,
		DBPath:     DefaultBackendDB,
		MaxDelay:   DefaultBackendMaxDelay,
	}
}

// loadDotEnv reads KEY=VALUE pairs without overriding the process environment.
func (l *Loader) loadDotEnv() error {
	if l.dotEnvPath == "" {
		return nil
	}
	if err := godotenv.Load(l.dotEnvPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}

func (l *Loader) loadFile(path string) (*FileConfig, error) {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var fileCfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&fileCfg); err != nil {
		if errors.Is(err, io.EOF) {
			return &FileConfig{}, nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("strict config parse error: %w: %w", ErrUnknownConfigField, err)
		}
		return nil, fmt.Errorf("strict config parse error: %w", err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config file contains multiple documents or trailing content")
	}

	return &fileCfg, nil
}

func (l *Loader) mergeFileConfig(cfg *AppConfig, f *FileConfig) error {
	var err error
	if b := f.Backend; b != nil {
		setString(&cfg.Backend.BaseAddress, b.BaseAddress)
		setString(&cfg.Backend.APIPath, b.APIPath)
	}
	if u := f.UI; u != nil {
		setString(&cfg.UI.ListenAddr, u.ListenAddr)
		if cfg.UI.SessionTTL, err = fileDuration("ui.sessionTTL", u.SessionTTL, cfg.UI.SessionTTL); err != nil {
			return err
		}
		if cfg.UI.RefreshInterval, err = fileDuration("ui.refreshInterval", u.RefreshInterval, cfg.UI.RefreshInterval); err != nil {
			return err
		}
		if u.RateLimitRPM != nil {
			cfg.UI.RateLimitRPM = *u.RateLimitRPM
		}
		if u.MetricsEnabled != nil {
			cfg.UI.MetricsEnabled = *u.MetricsEnabled
		}
	}
	if lg := f.Log; lg != nil {
		setString(&cfg.Log.Level, lg.Level)
		setString(&cfg.Log.Service, lg.Service)
	}
	if t := f.Telemetry; t != nil {
		if t.Enabled != nil {
			cfg.Telemetry.Enabled = *t.Enabled
		}
		setString(&cfg.Telemetry.ExporterType, t.ExporterType)
		setString(&cfg.Telemetry.Endpoint, t.Endpoint)
		setString(&cfg.Telemetry.Environment, t.Environment)
		if t.SamplingRate != nil {
			cfg.Telemetry.SamplingRate = *t.SamplingRate
		}
	}
	if d := f.DemoBackend; d != nil {
		setString(&cfg.DemoBackend.ListenAddr, d.ListenAddr)
		setString(&cfg.DemoBackend.DBPath, d.DBPath)
		if cfg.DemoBackend.MaxDelay, err = fileDuration("demoBackend.maxDelay", d.MaxDelay, cfg.DemoBackend.MaxDelay); err != nil {
			return err
		}
	}
	return nil
}

func (l *Loader) mergeEnvConfig(cfg *AppConfig) {
	cfg.Backend.BaseAddress = l.envStringWithAlias(EnvBaseAddress, legacyEnvBaseAddr, cfg.Backend.BaseAddress)
	cfg.Backend.APIPath = l.envStringWithAlias(EnvAPIPath, legacyEnvAPIPath, cfg.Backend.APIPath)

	cfg.UI.ListenAddr = l.envString(EnvListen, cfg.UI.ListenAddr)
	cfg.UI.SessionTTL = l.envDuration(EnvSessionTTL, cfg.UI.SessionTTL)
	cfg.UI.RefreshInterval = l.envDuration(EnvRefreshInterval, cfg.UI.RefreshInterval)
	cfg.UI.RateLimitRPM = l.envInt(EnvRateLimitRPM, cfg.UI.RateLimitRPM)
	cfg.UI.MetricsEnabled = l.envBool(EnvMetricsEnabled, cfg.UI.MetricsEnabled)

	cfg.Log.Level = l.envString(EnvLogLevel, cfg.Log.Level)
	cfg.Log.Service = l.envString(EnvLogService, cfg.Log.Service)

	cfg.Telemetry.Enabled = l.envBool(EnvTracingEnabled, cfg.Telemetry.Enabled)
	cfg.Telemetry.ExporterType = l.envString(EnvTracingExporter, cfg.Telemetry.ExporterType)
	cfg.Telemetry.Endpoint = l.envString(EnvTracingEndpoint, cfg.Telemetry.Endpoint)
	cfg.Telemetry.SamplingRate = l.envFloat(EnvTracingSampling, cfg.Telemetry.SamplingRate)
	cfg.Telemetry.Environment = l.envString(EnvTracingEnv, cfg.Telemetry.Environment)

	cfg.DemoBackend.ListenAddr = l.envString(EnvBackendListen, cfg.DemoBackend.ListenAddr)
	cfg.DemoBackend.DBPath = l.envString(EnvBackendDB, cfg.DemoBackend.DBPath)
	cfg.DemoBackend.MaxDelay = l.envDuration(EnvBackendMaxDelay, cfg.DemoBackend.MaxDelay)
}

func setString(dst *string, v string) {
	if strings.TrimSpace(v) != "" {
		*dst = v
	}
}

func fileDuration(key, raw string, current time.Duration) (time.Duration, error) {
	if strings.TrimSpace(raw) == "" {
		return current, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return current, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
