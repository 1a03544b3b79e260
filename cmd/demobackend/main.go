// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Command demobackend serves the reference API the fetchdemo UI talks to.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/fetchdemo/internal/backend"
	"github.com/ManuGH/fetchdemo/internal/config"
	"github.com/ManuGH/fetchdemo/internal/health"
	xglog "github.com/ManuGH/fetchdemo/internal/log"
	"github.com/ManuGH/fetchdemo/internal/persistence/sqlite"
	"github.com/ManuGH/fetchdemo/internal/telemetry"
	"github.com/ManuGH/fetchdemo/internal/version"
)

const serviceName = "fetchdemo-backend"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	dotEnvPath := flag.String("dotenv", ".env", "path to .env file; empty disables it")
	storeKind := flag.String("store", "sqlite", "user store: sqlite or memory")
	origins := flag.String("cors", "*", "comma-separated CORS origins; empty disables CORS")
	verify := flag.String("verify", "", "check the database file (quick|full) and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		os.Exit(0)
	}

	xglog.Configure(xglog.Config{Level: "info", Service: serviceName, Version: version.Version})
	logger := xglog.WithComponent("main")

	loader := config.NewLoader(strings.TrimSpace(*configPath), version.Version).WithDotEnv(*dotEnvPath)
	cfg, err := loader.Load()
	if err != nil {
		logger.Fatal().
			Err(err).
			Str(xglog.FieldEvent, "config.load_failed").
			Msg("failed to load configuration")
	}
	xglog.Configure(xglog.Config{Level: cfg.Log.Level, Service: serviceName, Version: cfg.Version})

	if *verify != "" {
		os.Exit(runVerify(cfg.DemoBackend.DBPath, *verify, os.Stdout, os.Stderr))
	}

	if err := health.PerformBackendStartupChecks(cfg.DemoBackend); err != nil {
		logger.Fatal().
			Err(err).
			Str(xglog.FieldEvent, "startup.check_failed").
			Msg("startup checks failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *storeKind, splitOrigins(*origins)); err != nil {
		logger.Error().Err(err).Str(xglog.FieldEvent, "server.failed").Msg("server stopped with error")
		os.Exit(1)
	}
	logger.Info().Str(xglog.FieldEvent, "server.stopped").Msg("server stopped")
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

// runVerify checks the user database and reports the result. It returns the
// process exit code.
func runVerify(path, mode string, stdout, stderr io.Writer) int {
	if mode != "quick" && mode != "full" {
		fmt.Fprintf(stderr, "unknown verify mode %q (supported: quick, full)\n", mode)
		return 2
	}
	if path == "" || path == sqlite.MemoryPath {
		fmt.Fprintln(stderr, "nothing to verify: the user store is in memory")
		return 2
	}
	if _, err := os.Stat(path); err != nil {
		fmt.Fprintf(stderr, "verify %s: %v\n", path, err)
		return 1
	}
	problems, err := sqlite.VerifyIntegrity(path, mode)
	if err != nil {
		fmt.Fprintf(stderr, "verify %s: %v\n", path, err)
		return 1
	}
	if len(problems) > 0 {
		fmt.Fprintf(stderr, "%s failed the %s check:\n", path, mode)
		for _, p := range problems {
			fmt.Fprintf(stderr, "  %s\n", p)
		}
		return 1
	}
	fmt.Fprintf(stdout, "%s: ok (%s)\n", path, mode)
	return 0
}

func run(ctx context.Context, cfg config.AppConfig, storeKind string, origins []string) error {
	logger := xglog.WithComponent("main")

	tp, err := telemetry.NewProvider(ctx, telemetry.FromConfig(cfg.Telemetry, serviceName, cfg.Version))
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
		tracingService = serviceName
	}

	store, err := backend.NewStore(storeKind, cfg.DemoBackend.DBPath)
	if err != nil {
		return fmt.Errorf("open user store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn().Err(err).Msg("closing user store failed")
		}
	}()

	hm := health.NewManager(cfg.Version)
	hm.RegisterChecker(backend.StoreChecker(store))

	api := backend.New(store, backend.Options{
		APIPath:        cfg.Backend.APIPath,
		MaxDelay:       cfg.DemoBackend.MaxDelay,
		TracingService: tracingService,
		AllowedOrigins: origins,
		Health:         hm,
	})

	serverCfg := config.ParseServerConfig(cfg.DemoBackend.ListenAddr, cfg.DemoBackend.MaxDelay)
	srv := &http.Server{
		Addr:              serverCfg.ListenAddr,
		Handler:           api.Handler(),
		ReadTimeout:       serverCfg.ReadTimeout,
		ReadHeaderTimeout: serverCfg.ReadTimeout,
		WriteTimeout:      serverCfg.WriteTimeout,
		IdleTimeout:       serverCfg.IdleTimeout,
		MaxHeaderBytes:    serverCfg.MaxHeaderBytes,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().
			Str(xglog.FieldEvent, "server.listening").
			Str("addr", srv.Addr).
			Str("store", storeKind).
			Str("api_path", cfg.Backend.APIPath).
			Msg("serving reference api")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), serverCfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
