package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rpgo/retirement-projector/internal/calculation"
	"github.com/rpgo/retirement-projector/internal/config"
	"github.com/rpgo/retirement-projector/internal/featureflag"
	"github.com/rpgo/retirement-projector/internal/handler"
	"github.com/rpgo/retirement-projector/internal/repository"
	"github.com/rpgo/retirement-projector/internal/service"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var port, flagSource string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP projection server",
		Long:  "Serves the projection form and JSON API. Settings come from the environment (PORT, FLAG_SOURCE, REDIS_ADDR, ...) and may be overridden by flags.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.NewServerConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if cmd.Flags().Changed("flag-source") {
				cfg.FlagSource = flagSource
			}
			cfg.LogLevel = a.logLevel
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, cfg)
		},
	}
	cmd.Flags().StringVar(&port, "port", "8080", "listen port (overrides PORT)")
	cmd.Flags().StringVar(&flagSource, "flag-source", config.FlagSourceStatic, "feature flag source: static, redis or launchdarkly (overrides FLAG_SOURCE)")
	return cmd
}

func (a *app) serve(ctx context.Context, cfg *config.ServerConfig) error {
	log := a.log

	rdb := newRedisClient(cfg)
	if rdb != nil {
		defer rdb.Close()
	}

	source, closeSource, err := buildFlagSource(cfg, rdb)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeSource(); err != nil {
			log.WithError(err).Warn("closing flag source")
		}
	}()

	watcher, err := featureflag.NewWatcher(source, cfg.FlagKey, cfg.FlagDefault, cfg.FlagRefresh, log)
	if err != nil {
		return err
	}
	watcher.OnChange(func(key string, oldValue, newValue bool) {
		log.WithFields(logrus.Fields{"flag": key, "old": oldValue, "new": newValue}).Info("inflation adjustment toggled")
	})
	watcher.Start(ctx)
	defer watcher.Stop()

	var cache repository.CacheRepository = repository.NewMemoryCache()
	if rdb != nil {
		cache = repository.NewRedisCache(rdb, "projection:")
	}

	engine := calculation.NewCalculationEngine()
	engine.SetLogger(log)
	svc := service.NewProjectionService(engine, watcher, service.Options{
		FlagKey:  cfg.FlagKey,
		Cache:    cache,
		CacheTTL: cfg.CacheTTL,
		Logger:   log,
	})

	limiter := handler.NewRateLimiter(cfg.RateLimit, cfg.RateWindow)
	defer limiter.Stop()

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler.NewHandler(svc, log).Router(limiter),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{"addr": server.Addr, "flag_source": cfg.FlagSource}).Info("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		log.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("server exited")
	return nil
}
