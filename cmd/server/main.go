// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/tomtom215/callscope/docs" // swagger docs registration
	"github.com/tomtom215/callscope/internal/api"
	"github.com/tomtom215/callscope/internal/auth"
	"github.com/tomtom215/callscope/internal/authz"
	"github.com/tomtom215/callscope/internal/config"
	"github.com/tomtom215/callscope/internal/database"
	"github.com/tomtom215/callscope/internal/logging"
	"github.com/tomtom215/callscope/internal/session"
	"github.com/tomtom215/callscope/internal/supervisor"
	"github.com/tomtom215/callscope/internal/supervisor/services"
	ws "github.com/tomtom215/callscope/internal/websocket"
)

func main() {
	// Load configuration first to get logging settings.
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Str("auth_mode", cfg.Security.AuthMode).
		Int("block_count", cfg.Session.BlockCount).
		Bool("nats_enabled", cfg.NATS.Enabled).
		Bool("wal_enabled", cfg.WAL.Enabled).
		Msg("Configuration loaded")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized")

	sessions := session.New(db, cfg.Session)

	// Context for graceful shutdown; everything supervised hangs off it.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	// Hub before the pipeline so the consumer can broadcast ingested
	// reports.
	wsHub := ws.NewHub()

	jwtManager, basicAuthManager, oidcAuthenticator := initAuth(ctx, cfg)

	authMW := auth.NewMiddleware(jwtManager, basicAuthManager, oidcAuthenticator, &cfg.Security)
	defer authMW.Stop()

	enforcer, err := authz.NewEnforcer(&cfg.Security.Casbin)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize RBAC enforcer")
	}
	defer enforcer.Close()
	authzMW := authz.NewMiddleware(enforcer)
	logging.Info().Msg("RBAC enforcer initialized")

	handler := api.NewHandler(db, sessions, wsHub, cfg)
	handler.SetJWTManager(jwtManager)

	// Ingest pipeline (runtime-gated on NATS_ENABLED).
	pipeline, err := InitPipeline(ctx, cfg, db, wsHub)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize ingest pipeline")
	}
	if pipeline != nil {
		tree.AddMessagingService(services.NewPipelineService(pipeline))
	}

	// WAL in front of the pipeline publisher (runtime-gated on
	// WAL_ENABLED, requires the pipeline).
	walComponents, err := InitWAL(cfg, pipeline)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize WAL")
	}
	switch {
	case walComponents != nil:
		handler.SetEventPublisher(walComponents.Publisher())
		tree.AddDataService(services.NewWALRetryLoopService(walComponents.RetryLoop()))
		tree.AddDataService(services.NewWALCompactorService(walComponents.Compactor()))
		defer walComponents.Close()
		logging.Info().Msg("Durable ingest path wired (WAL + broker)")
	case pipeline != nil:
		handler.SetEventPublisher(pipeline.EventPublisher())
		logging.Info().Msg("Broker ingest path wired (no WAL)")
	default:
		logging.Info().Msg("Direct ingest path wired (database appends)")
	}

	router := api.NewRouter(handler, authMW, authzMW)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	tree.AddMessagingService(services.NewWebSocketHubService(wsHub))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Drain the error channel until the supervisor has fully stopped.
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}

// initAuth builds the credential managers for the configured auth
// mode. Exactly one manager is non-nil, except mode none where all
// three are.
func initAuth(ctx context.Context, cfg *config.Config) (*auth.JWTManager, *auth.BasicAuthManager, *auth.OIDCAuthenticator) {
	switch cfg.Security.AuthMode {
	case auth.AuthModeJWT:
		jwtManager, err := auth.NewJWTManager(&cfg.Security)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize JWT manager")
		}
		logging.Info().Msg("JWT authentication enabled")
		return jwtManager, nil, nil

	case auth.AuthModeBasic:
		basicAuthManager, err := auth.NewBasicAuthManager(
			cfg.Security.AdminUsername,
			cfg.Security.AdminPassword,
		)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize Basic Auth manager")
		}
		logging.Info().Msg("Basic authentication enabled")
		logging.Warn().Msg("Basic Auth transmits credentials with each request. Use HTTPS in production!")
		return nil, basicAuthManager, nil

	case auth.AuthModeOIDC:
		oidcAuthenticator, err := auth.NewOIDCAuthenticator(ctx, &cfg.Security.OIDC)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize OIDC authenticator")
		}
		logging.Info().Str("issuer", oidcAuthenticator.Issuer()).Msg("OIDC authentication enabled")
		return nil, nil, oidcAuthenticator

	case auth.AuthModeNone:
		logging.Warn().Msg("============================================================")
		logging.Warn().Msg("  SECURITY WARNING: Authentication is DISABLED (AUTH_MODE=none)")
		logging.Warn().Msg("  All endpoints are publicly accessible without authentication!")
		logging.Warn().Msg("  NEVER use AUTH_MODE=none in production or on public networks!")
		logging.Warn().Msg("============================================================")
		return nil, nil, nil

	default:
		logging.Fatal().Str("auth_mode", cfg.Security.AuthMode).Msg("Unknown auth mode")
		return nil, nil, nil
	}
}
