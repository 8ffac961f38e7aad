package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/bazaar-backend/internal/adapter/qr"
	"github.com/heartmarshall/bazaar-backend/internal/auth"
	"github.com/heartmarshall/bazaar-backend/internal/config"
	"github.com/heartmarshall/bazaar-backend/internal/metrics"
	"github.com/heartmarshall/bazaar-backend/internal/service/bazaar"
	"github.com/heartmarshall/bazaar-backend/internal/service/donation"
	"github.com/heartmarshall/bazaar-backend/internal/service/profile"
	"github.com/heartmarshall/bazaar-backend/internal/transport/middleware"
	"github.com/heartmarshall/bazaar-backend/internal/transport/rest"
)

// Run is the application entry point. It loads configuration, opens the
// configured backends, serves the HTTP API and shuts down gracefully when
// ctx is cancelled.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
		slog.String("store", cfg.Store.Backend),
		slog.String("blob", cfg.Blob.Backend),
		slog.String("cache", cfg.Cache.Backend),
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	backends, err := OpenBackends(ctx, cfg, logger, m)
	if err != nil {
		return fmt.Errorf("open backends: %w", err)
	}
	defer backends.Close()

	bazaars := bazaar.NewService(logger, backends.Store, backends.Cache, backends.Tx, m)
	profiles := profile.NewService(logger, backends.Store, bazaars)
	donations := donation.NewService(logger, backends.Store, backends.Blobs,
		qr.NewGenerator(cfg.Donation.QRSize), bazaars, m,
		donation.Config{
			PageSize:     cfg.Donation.PageSize,
			MinPhotos:    cfg.Donation.MinPhotos,
			UploadWorker: cfg.Donation.UploadWorkers,
		})

	tokens := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL,
		auth.WithLeeway(cfg.Auth.Leeway))

	limiter := middleware.NewRateLimiter(cfg.RateLimit.CleanupInterval)
	defer limiter.Stop()

	router := rest.NewRouter(rest.RouterDeps{
		Donations: rest.NewDonationHandler(donations, logger),
		Bazaars:   rest.NewBazaarHandler(bazaars, logger),
		Health:    rest.NewHealthHandler(backends.Checks, BuildVersion()),
		Metrics:   promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		Media:     backends.Media,
		Global: middleware.Chain(
			middleware.RequestID(),
			middleware.Logger(logger),
			middleware.Recovery(logger),
			middleware.CORS(cfg.CORS),
			middleware.Locale(),
		),
		Auth:       middleware.Auth(tokens, profiles, logger),
		WriteLimit: limiter.Limit(cfg.RateLimit.WritesPerMinute),
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
