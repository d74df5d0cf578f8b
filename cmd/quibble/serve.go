// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quibble Contributors

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/cors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
	"github.com/spf13/cobra"

	"github.com/quibble/quibble/internal/auth"
	authpg "github.com/quibble/quibble/internal/auth/postgres"
	"github.com/quibble/quibble/internal/config"
	"github.com/quibble/quibble/internal/graph"
	"github.com/quibble/quibble/internal/logging"
	"github.com/quibble/quibble/internal/observability"
	"github.com/quibble/quibble/internal/session"
	sessredis "github.com/quibble/quibble/internal/session/redis"
	"github.com/quibble/quibble/internal/store"
	"github.com/quibble/quibble/pkg/errutil"
)

// Default values for serve command flags.
const (
	defaultListenAddr  = ":4000"
	defaultMetricsAddr = "127.0.0.1:9100"
	defaultRedisURL    = "redis://localhost:6379"
	defaultCORSOrigin  = "http://localhost:3000"
	defaultLogFormat   = "json"

	shutdownTimeout = 10 * time.Second
)

// newServeCmd creates the serve subcommand with all flags configured.
func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long: `Start the HTTP server exposing the GraphQL API on /graphql,
plus a metrics/health endpoint on a separate listener.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().String("env", "dev", "deployment mode (dev or prod)")
	cmd.Flags().String("listen-addr", defaultListenAddr, "API listen address")
	cmd.Flags().String("metrics-addr", defaultMetricsAddr, "metrics/health HTTP address")
	cmd.Flags().String("database-url", "", "PostgreSQL connection URL")
	cmd.Flags().String("redis-url", defaultRedisURL, "Redis connection URL for the session store")
	cmd.Flags().String("session-secret", "", "secret used to sign session cookies")
	cmd.Flags().String("cors-origin", defaultCORSOrigin, "allowed CORS origin for the web frontend")
	cmd.Flags().String("log-format", defaultLogFormat, "log format (json or text)")

	return cmd
}

// runServe wires the service together and blocks until shutdown.
func runServe(ctx context.Context, cfg *config.Config) error {
	logging.SetDefault("quibble", version, cfg.LogFormat)
	logger := slog.Default()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting server",
		"env", cfg.Env,
		"listen_addr", cfg.ListenAddr,
		"metrics_addr", cfg.MetricsAddr,
	)

	pool, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	redisClient, err := connectRedis(ctx, cfg.RedisURL)
	if err != nil {
		return err
	}
	defer redisClient.Close() //nolint:errcheck // shutdown path

	// Observability sidecar listener
	obs := observability.NewServer(cfg.MetricsAddr, func() bool {
		pingCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		return pool.Ping(pingCtx) == nil
	})
	obsErrCh, err := obs.Start()
	if err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if stopErr := obs.Stop(stopCtx); stopErr != nil {
			errutil.LogError(logger, "observability server stop failed", stopErr)
		}
	}()

	// Auth core
	users := authpg.NewUserRepository(pool)
	svc := auth.NewService(users, auth.NewArgon2idHasher(), logger)

	// Session middleware over the Redis store
	sessions := sessredis.NewStore(redisClient)
	manager := session.NewManager(sessions, []byte(cfg.SessionSecret), cfg.IsProd(), logger)

	// GraphQL surface
	resolver := graph.NewResolver(svc, obs.Metrics(), logger)
	schema, err := graph.NewSchema(resolver)
	if err != nil {
		return err
	}

	corsMiddleware := cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.CORSOrigin},
		AllowedMethods:   []string{http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	})
	logRequests := graph.RequestLogger(logger, obs.Metrics())

	mux := http.NewServeMux()
	mux.Handle("/graphql", corsMiddleware(logRequests(manager.Handle(graph.NewHandler(schema, logger)))))

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErrCh := make(chan error, 1)
	go func() {
		if serveErr := srv.ListenAndServe(); serveErr != nil && serveErr != http.ErrServerClosed {
			srvErrCh <- serveErr
		}
	}()

	logger.Info("server started", "addr", cfg.ListenAddr)

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-srvErrCh:
		return oops.Code("SERVER_FAILED").Wrap(err)
	case err := <-obsErrCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return oops.Code("SERVER_SHUTDOWN_FAILED").Wrap(err)
	}

	logger.Info("server stopped")
	return nil
}

// connectRedis builds a Redis client and verifies connectivity with the
// same retry policy the database connect uses.
func connectRedis(ctx context.Context, redisURL string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, oops.Code("REDIS_CONFIG_INVALID").Wrap(err)
	}
	client := goredis.NewClient(opts)

	backoff := retry.WithMaxRetries(5, retry.NewConstant(time.Second))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if pingErr := client.Ping(ctx).Err(); pingErr != nil {
			return retry.RetryableError(pingErr)
		}
		return nil
	})
	if err != nil {
		_ = client.Close() //nolint:errcheck // connect failure path
		return nil, oops.Code("REDIS_CONNECT_FAILED").Wrap(err)
	}

	return client, nil
}
