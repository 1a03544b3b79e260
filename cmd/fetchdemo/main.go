// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Command fetchdemo serves the demo UI: a home page, a greeting page and a
// user page whose actions are sent to the configured backend.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/fetchdemo/internal/config"
	"github.com/ManuGH/fetchdemo/internal/dispatch"
	"github.com/ManuGH/fetchdemo/internal/health"
	xglog "github.com/ManuGH/fetchdemo/internal/log"
	"github.com/ManuGH/fetchdemo/internal/platform/httpx"
	platformnet "github.com/ManuGH/fetchdemo/internal/platform/net"
	"github.com/ManuGH/fetchdemo/internal/telemetry"
	"github.com/ManuGH/fetchdemo/internal/version"
	"github.com/ManuGH/fetchdemo/internal/web"
)

const serviceName = "fetchdemo"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "healthcheck" {
		os.Exit(runHealthcheckCLI(os.Args[2:]))
	}

	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	dotEnvPath := flag.String("dotenv", ".env", "path to .env file; empty disables it")
	origins := flag.String("allowed-origins", "", "comma-separated origins allowed to post forms besides this server")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		os.Exit(0)
	}

	// Safe defaults until the configuration is loaded.
	xglog.Configure(xglog.Config{Level: "info", Service: serviceName, Version: version.Version})
	logger := xglog.WithComponent("main")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	path := strings.TrimSpace(*configPath)
	loader := config.NewLoader(path, version.Version).WithDotEnv(*dotEnvPath)
	cfg, err := loader.Load()
	if err != nil {
		logger.Fatal().
			Err(err).
			Str(xglog.FieldEvent, "config.load_failed").
			Str("config_path", path).
			Msg("failed to load configuration")
	}
	configureLogger(cfg)

	logger.Info().
		Str(xglog.FieldEvent, "config.loaded").
		Str(xglog.FieldBaseURL, platformnet.SanitizeURL(cfg.Backend.BaseAddress)).
		Str("api_path", cfg.Backend.APIPath).
		Str("listen", cfg.UI.ListenAddr).
		Msg("configuration loaded")

	if err := health.PerformUIStartupChecks(cfg); err != nil {
		logger.Fatal().
			Err(err).
			Str(xglog.FieldEvent, "startup.check_failed").
			Msg("startup checks failed")
	}

	holder := config.NewConfigHolder(cfg, loader, path)
	if err := run(ctx, holder, splitOrigins(*origins)); err != nil {
		logger.Error().Err(err).Str(xglog.FieldEvent, "server.failed").Msg("server stopped with error")
		os.Exit(1)
	}
	logger.Info().Str(xglog.FieldEvent, "server.stopped").Msg("server stopped")
}

func configureLogger(cfg config.AppConfig) {
	xglog.Configure(xglog.Config{
		Level:   cfg.Log.Level,
		Service: cfg.Log.Service,
		Version: cfg.Version,
	})
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// run serves the UI until ctx is cancelled.
func run(ctx context.Context, holder *config.ConfigHolder, origins []string) error {
	logger := xglog.WithComponent("main")
	cfg := holder.Get()

	tp, err := telemetry.NewProvider(ctx, telemetry.FromConfig(cfg.Telemetry, cfg.Log.Service, cfg.Version))
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Warn().Err(err).Msg("telemetry shutdown failed")
		}
	}()
	tracingService := ""
	if tp.Enabled() {
		tracingService = cfg.Log.Service
	}

	hm := health.NewManager(cfg.Version)
	hm.RegisterChecker(health.NewBackendChecker(httpx.NewClient(2*time.Second), func() string {
		return strings.TrimRight(holder.Get().Backend.BaseAddress, "/") + "/hello"
	}))

	ui, err := web.New(ctx, web.Deps{
		Config:         holder,
		Client:         dispatch.New(dispatch.WithHTTPClient(httpx.NewDispatchClient(tp.Enabled()))),
		Health:         hm,
		TracingService: tracingService,
		AllowedOrigins: origins,
	})
	if err != nil {
		return fmt.Errorf("build ui: %w", err)
	}
	defer ui.Close()

	serverCfg := config.ParseServerConfig(cfg.UI.ListenAddr, cfg.DemoBackend.MaxDelay)
	srv := &http.Server{
		Addr:              serverCfg.ListenAddr,
		Handler:           ui.Handler(),
		ReadTimeout:       serverCfg.ReadTimeout,
		ReadHeaderTimeout: serverCfg.ReadTimeout,
		WriteTimeout:      serverCfg.WriteTimeout,
		IdleTimeout:       serverCfg.IdleTimeout,
		MaxHeaderBytes:    serverCfg.MaxHeaderBytes,
	}

	g, gctx := errgroup.WithContext(ctx)

	if err := holder.StartWatcher(gctx); err != nil {
		logger.Warn().Err(err).Str(xglog.FieldEvent, "config.watcher_failed").Msg("config hot reload unavailable")
	}
	reloads := make(chan config.AppConfig, 1)
	holder.RegisterListener(reloads)
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case next := <-reloads:
				configureLogger(next)
			}
		}
	})

	g.Go(func() error {
		logger.Info().
			Str(xglog.FieldEvent, "server.listening").
			Str("addr", srv.Addr).
			Msg("serving ui")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), serverCfg.ShutdownTimeout)
		defer cancel()
		logger.Info().Str(xglog.FieldEvent, "server.shutdown").Msg("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
