package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/hitoshi/livsmedel/internal/browse"
	"github.com/hitoshi/livsmedel/internal/config"
	"github.com/hitoshi/livsmedel/internal/handler"
	"github.com/hitoshi/livsmedel/internal/metrics"
	"github.com/hitoshi/livsmedel/internal/middleware"
	"github.com/hitoshi/livsmedel/internal/worker/cleanup"
)

const (
	serverReadTimeout  = 15 * time.Second
	serverWriteTimeout = 15 * time.Second
	serverIdleTimeout  = 60 * time.Second
	shutdownTimeout    = 30 * time.Second
)

// runServe はHTTPドライバを起動する。
// カタログクライアント、セッションレジストリ、（DATABASE_URL設定時は）検索ログをワイヤリングし、
// ctxがキャンセルされるとグレースフルシャットダウンを行う。
func runServe(ctx context.Context, w io.Writer, opts *globalOptions) error {
	cfg, err := Init(w, opts)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	log := slog.Default()

	log.Info("starting application",
		slog.String("command", "serve"),
		slog.String("port", cfg.ServerPort),
		slog.String("catalog_base_url", cfg.CatalogBaseURL),
		slog.Bool("search_log", cfg.SearchLogEnabled()),
	)

	// 1. メトリクス
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(reg)

	// 2. カタログクライアント
	client, err := newCatalogClient(cfg, log, collector)
	if err != nil {
		return err
	}

	// 3. 検索ログ（任意）
	sl, err := openSearchLog(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer sl.close()

	// 4. セッションレジストリ
	registry := browse.NewRegistry(browse.SessionDeps{
		Catalog:  client,
		Logger:   log,
		Recorder: collector,
		Listener: sl.listener(),
	}, sessionConfig(cfg), browse.RegistryConfig{
		MaxSessions: cfg.SessionMax,
		IdleTTL:     cfg.SessionIdleTTL,
	}, collector)
	defer registry.Stop()

	// 5. ルーター
	rateLimiter := middleware.NewRateLimiter(middleware.PerMinuteRateLimiterConfig(cfg.RateLimitGeneral), log)
	defer rateLimiter.Stop()

	deps := &handler.RouterDeps{
		Logger:            log,
		Sessions:          registry,
		MetricsHandler:    metrics.Handler(reg),
		StatusRecorder:    collector,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
	}
	if sl != nil {
		deps.HealthChecker = sl.db
	}

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      handler.NewRouter(deps),
		ReadTimeout:  serverReadTimeout,
		WriteTimeout: serverWriteTimeout,
		IdleTimeout:  serverIdleTimeout,
	}

	// 6. 起動とグレースフルシャットダウン
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("API server starting", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server listen error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down API server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})

	if sl != nil {
		g.Go(func() error {
			sl.writer.Start(gctx)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	log.Info("API server stopped gracefully")
	return nil
}

// runWorker は検索ログの保持期間クリーンアップを定期実行する。
// 削除件数は WORKER_METRICS_PORT の /metrics で公開する。ctxがキャンセルされるまでブロックする。
func runWorker(ctx context.Context, w io.Writer, opts *globalOptions) error {
	cfg, err := Init(w, opts)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	if err := requireDatabase(cfg, "worker"); err != nil {
		return err
	}
	log := slog.Default()

	sl, err := openSearchLog(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer sl.close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(reg)

	job := cleanup.NewCleanupJob(sl.db, log, collector, cfg.SearchLogRetentionDays)

	server := &http.Server{
		Addr:         ":" + cfg.WorkerMetricsPort,
		Handler:      newWorkerMux(reg, sl.db),
		ReadTimeout:  serverReadTimeout,
		WriteTimeout: serverWriteTimeout,
		IdleTimeout:  serverIdleTimeout,
	}

	log.Info("worker starting",
		slog.Int("retention_days", job.RetentionDays),
		slog.Duration("interval", cleanup.DefaultInterval),
		slog.String("metrics_addr", server.Addr),
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("worker metrics listen error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		job.Start(gctx, cleanup.DefaultInterval)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("worker metrics shutdown failed: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	log.Info("worker stopped gracefully")
	return nil
}

// newWorkerMux はワーカーの /metrics と /health を返すハンドラーを組み立てる。
func newWorkerMux(gatherer prometheus.Gatherer, checker handler.HealthChecker) http.Handler {
	r := chi.NewRouter()
	r.Get("/health", handler.HealthHandler(checker))
	r.Handle("/metrics", metrics.Handler(gatherer))
	return r
}

// runHealthcheck は /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(ctx context.Context, port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// healthcheckPort はSERVER_PORT（未設定時は既定値）を返す。
func healthcheckPort() string {
	if port := os.Getenv("SERVER_PORT"); port != "" {
		return port
	}
	return config.DefaultServerPort
}
