package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"agora/internal/automod"
	"agora/internal/config"
	"agora/internal/database/boltstore"
	"agora/internal/database/sqlitestore"
	"agora/internal/email"
	"agora/internal/forum"
	"agora/internal/handlers"
	"agora/internal/metrics"
	"agora/internal/middleware"
	"agora/internal/moderation"
	"agora/internal/notify"
	"agora/internal/realtime"
	"agora/internal/routing"
	"agora/internal/tracing"

	"github.com/rs/zerolog/log"
)

func main() {
	setupLogging(os.Stdout, os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))

	log.Info().Msg("Starting Agora forum")

	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.OTelEnabled {
		tp, err := tracing.Init(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize tracing")
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(shutdownCtx); err != nil {
				log.Warn().Err(err).Msg("Failed to flush traces")
			}
		}()
		log.Info().Msg("OpenTelemetry tracing enabled")
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("Failed to create data directory")
	}

	store, err := boltstore.Open(boltstore.Options{Path: cfg.DBPath})
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("Failed to open database")
	}
	defer store.Close()

	log.Info().Str("path", cfg.DBPath).Msg("Database opened")

	forumStore := store.ForumStore()

	var audit moderation.AuditStore = store.AuditStore()
	if cfg.AuditBackend == config.AuditBackendSQLite {
		auditDB, err := sqlitestore.Open(cfg.AuditSQLitePath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.AuditSQLitePath).Msg("Failed to open audit database")
		}
		defer auditDB.Close()
		audit = sqlitestore.NewAuditStore(auditDB)
		log.Info().Str("path", cfg.AuditSQLitePath).Msg("Audit log stored in SQLite")
	}

	// Realtime delivery: pool entries authorize websocket subscriptions, the
	// hub relays pushes, undelivered messages wait in the stash
	pool := notify.NewConnectionPool(cfg.PoolTTL)
	pool.Start(ctx, cfg.PoolSweepInterval)
	stash := notify.NewStashPool()
	hub := realtime.NewHub(pool)
	pusher := notify.NewPusher(hub, pool)

	bus := notify.NewBus()
	notify.NewNotifier(notify.NewMessageMaker(cfg.NotifyPreviewLength), stash, pusher).Register(bus)

	if cfg.ModerationAPIKey == "" {
		log.Warn().Msg("MODERATION_API_KEY is not set; content screening will reject every submission")
	}
	classifier := automod.NewClient(cfg.ModerationEndpoint, cfg.ModerationAPIKey)
	screener := automod.NewService(classifier, forumStore, cfg.ModerationEndpoint, cfg.PendingThreshold)

	profiles := forum.NewProfileCache(forumStore, cfg.ProfileCacheSize, cfg.ProfileCacheTTL)
	services := forum.New(forumStore, screener, bus, profiles)

	mailer := email.NewSender(email.Config{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		User: cfg.SMTPUser,
		Pass: cfg.SMTPPass,
		From: cfg.SMTPFrom,
	})
	if !mailer.Enabled() {
		log.Info().Msg("SMTP not configured; ban notices will not be e-mailed")
	}
	mod := moderation.NewService(forumStore, audit, bus, mailer)

	metrics.StartCollector(ctx, metrics.StatsSource{
		PoolEntryCount:     pool.Len,
		StashedCount:       stash.Len,
		PendingCountByKind: mod.PendingCounts,
	}, cfg.MetricsInterval)

	h := handlers.NewHandler(services, mod, stash, pool)

	rateLimits := middleware.NewDefaultRateLimitConfig()
	defer rateLimits.Stop()

	// Setup router with middleware
	handler := routing.SetupRouter(routing.Config{
		Handlers:   h,
		Hub:        hub,
		Logger:     log.Logger,
		RateLimits: rateLimits,
	})

	server := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().
			Str("address", server.Addr).
			Str("url", "http://localhost:"+cfg.Port).
			Str("database", cfg.DBPath).
			Str("audit_backend", cfg.AuditBackend).
			Msg("Starting HTTP server")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("HTTP server shutdown did not complete")
	}

	// Drain in dependency order: no new events, then in-flight deliveries
	hub.Close()
	bus.Close()
	pusher.Wait()
	mod.Wait()

	log.Info().Msg("Shutdown complete")
}
