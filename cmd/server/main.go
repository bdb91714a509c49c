package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"launchaudit/internal/adapters/browser"
	"launchaudit/internal/adapters/crux"
	httpadapter "launchaudit/internal/adapters/http"
	"launchaudit/internal/adapters/memstore"
	"launchaudit/internal/adapters/pagespeed"
	pg "launchaudit/internal/adapters/postgres"
	"launchaudit/internal/adapters/redisstore"
	"launchaudit/internal/config"
	"launchaudit/internal/ports"
	auditsvc "launchaudit/internal/services/audits"
	"launchaudit/internal/services/orchestrator"
	reportsvc "launchaudit/internal/services/reports"
	"launchaudit/internal/workers/auditrunner"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("config", "err", err)
	}
	if cfg.DatabaseURL == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := pg.Migrate(ctx, cfg.DatabaseURL); err != nil {
		slog.Error("migrations failed", "err", err)
		os.Exit(1)
	}
	db, err := pg.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	var store ports.Store
	if cfg.RedisAddr != "" {
		rs, err := redisstore.New(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			slog.Error("redis connect failed", "err", err)
			os.Exit(1)
		}
		defer rs.Close()
		store = rs
	} else {
		store = memstore.New(nil)
	}

	runner := orchestrator.New(
		pagespeed.New(),
		crux.New(),
		browser.New(),
		orchestrator.Credentials{LabKey: cfg.PSIAPIKey, FieldKey: cfg.CruxAPIKey},
	)

	audits := auditsvc.New(db, db)
	reports := reportsvc.New(db, store)
	processor := auditrunner.Processor{Runs: db, Runner: runner}

	srv := httpadapter.New(audits, reports, db, processor, store, nil)
	r := chi.NewRouter()
	r.Mount("/", srv.Routes())

	if cfg.AuditWorkers > 0 {
		go auditrunner.Run(ctx, db, processor, cfg.AuditWorkers, 500*time.Millisecond)
		slog.Info("audit workers started", "count", cfg.AuditWorkers)
	}

	httpSrv := &http.Server{Addr: cfg.ListenAddr, Handler: r}
	errCh := make(chan error, 1)
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	slog.Info("listening", "addr", cfg.ListenAddr, "env", cfg.Env)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		slog.Info("shutting down", "signal", sig.String())
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		slog.Error("server error", "err", err)
		os.Exit(1)
	}
}
