package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/runnerkit/hello-service/internal/api"
	"github.com/runnerkit/hello-service/internal/db"
	"github.com/runnerkit/hello-service/internal/metrics"
	"github.com/runnerkit/hello-service/internal/ratelimiter"
	"github.com/runnerkit/hello-service/internal/repository"
	"github.com/runnerkit/hello-service/internal/service"
	"github.com/runnerkit/hello-service/internal/tracing"
	"github.com/runnerkit/hello-service/internal/worker"
)

const serviceName = "hello-service"

func newServeCommand(configPath *string) *cobra.Command {
	var bootstrap bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), *configPath, bootstrap)
		},
	}
	cmd.Flags().BoolVar(&bootstrap, "bootstrap", false, "apply migrations and ensure the superuser before serving")
	return cmd
}

func serve(ctx context.Context, configPath string, bootstrap bool) error {
	// ---- configuration ----
	cfg, logger, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, tracing.Config{
		ServiceName: serviceName,
		Environment: cfg.Environment,
		Endpoint:    cfg.OTLPEndpoint,
	})
	if err != nil {
		return err
	}

	// ---- database ----
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if bootstrap {
		if err := db.Migrate(cfg.DatabaseURL()); err != nil {
			return err
		}
		logger.Info("database migrations applied")
		bs := service.NewBootstrapService(repository.NewPgUserRepository(pool), logger)
		if _, err := bs.EnsureSuperuser(ctx, cfg.DBUser, cfg.DBPassword); err != nil {
			return err
		}
	}

	// ---- storage ----
	media, static, err := stores(cfg)
	if err != nil {
		return err
	}

	// ---- core dependencies ----
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	checker := db.NewChecker(pool)
	health := service.NewHealthService(checker, media, cfg.Ping, logger, m.ProbeHook())

	// ---- background dependency watcher ----
	watcherCtx, cancelWatcher := context.WithCancel(ctx)
	defer cancelWatcher()
	watcher := worker.NewDependencyWatcher(map[string]worker.Pinger{
		service.ProbeDatabase: checker,
		service.ProbeStorage:  media,
	}, cfg.ProbeInterval, logger, m.DependencyHook())
	watcherDone := make(chan struct{})
	go func() {
		defer close(watcherDone)
		watcher.Run(watcherCtx)
	}()

	// ---- HTTP server ----
	router := api.NewRouter(cfg, api.Deps{
		Health:  health,
		Media:   media,
		Static:  static,
		Limiter: ratelimiter.New(cfg.ProbeRateLimit),
		Metrics: reg,
		Logger:  logger,
	})
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      otelhttp.NewHandler(router, serviceName),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr), zap.String("environment", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// ---- graceful shutdown ----
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			logger.Error("server error", zap.Error(err))
			return err
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	// 1. Stop accepting new HTTP requests.
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	// 2. Stop the watcher and wait for its current check.
	cancelWatcher()
	<-watcherDone

	// 3. Flush pending spans.
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("tracer shutdown error", zap.Error(err))
	}

	logger.Info("server stopped cleanly")
	return nil
}
