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

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/ncrtrack/ncrtrack/internal/analytics"
	"github.com/ncrtrack/ncrtrack/internal/app"
	"github.com/ncrtrack/ncrtrack/internal/auth"
	"github.com/ncrtrack/ncrtrack/internal/authz"
	"github.com/ncrtrack/ncrtrack/internal/cache"
	"github.com/ncrtrack/ncrtrack/internal/fieldlocks"
	"github.com/ncrtrack/ncrtrack/internal/groups"
	"github.com/ncrtrack/ncrtrack/internal/observability"
	platformcache "github.com/ncrtrack/ncrtrack/internal/platform/cache"
	"github.com/ncrtrack/ncrtrack/internal/platform/db"
	"github.com/ncrtrack/ncrtrack/internal/rnc"
	"github.com/ncrtrack/ncrtrack/internal/shared"
	"github.com/ncrtrack/ncrtrack/internal/shares"
	"github.com/ncrtrack/ncrtrack/internal/users"
	"github.com/ncrtrack/ncrtrack/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := platformcache.New(ctx, cfg.RedisAddr)
	if err != nil {
		// Sessions and the cache degrade gracefully; keep a client around
		// so they recover once Redis comes back.
		logger.Warn("redis unavailable at startup", slog.Any("error", err))
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, cfg.SessionCookie, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	auditLogger := shared.NewAuditLogger(dbpool)

	metrics := observability.NewMetrics()
	if err := cache.SetupMetrics(metrics.Registerer()); err != nil {
		logger.Warn("cache metrics setup", slog.Any("error", err))
	}
	taggedCache := cache.NewTaggedCache(redisClient, logger, cache.Config{
		MaxLocalEntries:  cfg.CacheLocalMax,
		LocalEvictTarget: cfg.CacheLocalTarget,
	})

	resolver := authz.NewResolver(authz.NewRepository(dbpool), logger)
	requestAuthz := app.NewRequestAuthorizer(resolver)

	usersRepo := users.NewRepository(dbpool)
	usersService := users.NewService(usersRepo)

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	notifier := jobs.NewNotifier(jobClient, usersRepo, logger)

	sharesService := shares.NewService(shares.NewRepository(dbpool), resolver, taggedCache, notifier, logger)
	locksService := fieldlocks.NewService(fieldlocks.NewRepository(dbpool))

	recordsService := rnc.NewService(
		rnc.NewRepository(dbpool), sharesService, resolver, locksService,
		taggedCache, auditLogger, notifier, logger,
		rnc.Config{ListTTL: cfg.CacheListTTL, RecordTTL: cfg.CacheRecordTTL})

	analyticsService := analytics.NewService(analytics.NewRepository(dbpool), taggedCache)
	groupsService := groups.NewService(groups.NewRepository(dbpool), taggedCache)
	authService := auth.NewService(usersRepo, logger)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,

		AuthHandler:       auth.NewHandler(logger, authService, sessionManager, csrfManager),
		RecordsHandler:    rnc.NewHandler(logger, recordsService),
		SharesHandler:     shares.NewHandler(logger, sharesService),
		FieldLocksHandler: fieldlocks.NewHandler(logger, locksService, requestAuthz),
		GroupsHandler:     groups.NewHandler(logger, groupsService, requestAuthz),
		UsersHandler:      users.NewHandler(logger, usersService, requestAuthz),
		AnalyticsHandler:  analytics.NewHandler(logger, analyticsService, requestAuthz),
		JobHandler:        jobs.NewHandler(inspector, logger),

		Metrics: metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", slog.Any("error", err))
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server run", slog.Any("error", err))
			os.Exit(1)
		}
	}
}
