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
	"golang.org/x/sync/errgroup"

	"github.com/voli-hq/voli/internal/app"
	"github.com/voli-hq/voli/internal/assets"
	"github.com/voli-hq/voli/internal/auth"
	"github.com/voli-hq/voli/internal/contacts"
	"github.com/voli-hq/voli/internal/observability"
	"github.com/voli-hq/voli/internal/platform/cache"
	"github.com/voli-hq/voli/internal/platform/db"
	"github.com/voli-hq/voli/internal/rbac"
	"github.com/voli-hq/voli/internal/tasks"
	"github.com/voli-hq/voli/internal/templates"
	"github.com/voli-hq/voli/internal/users"
	"github.com/voli-hq/voli/jobs"
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

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	codec, err := auth.NewCodec(cfg.JWTSecret, cfg.JWTAlgorithm, cfg.AccessTokenTTL)
	if err != nil {
		logger.Error("init token codec", slog.Any("error", err))
		os.Exit(1)
	}

	rbacRepo := rbac.NewRepository(dbpool)
	rbacService := rbac.NewService(rbacRepo, cfg.BaselineRole)

	seedCtx, cancelSeed := context.WithTimeout(ctx, 10*time.Second)
	err = rbacService.EnsureRolesExist(seedCtx, map[string]string{
		rbac.AdminRole:   "System administrator",
		cfg.BaselineRole: "Default application user",
	})
	cancelSeed()
	if err != nil {
		logger.Error("seed roles", slog.Any("error", err))
		os.Exit(1)
	}

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo, codec, rbacService, logger, metrics)
	authHandler := auth.NewHandler(logger, authService)
	gate := auth.Middleware{Service: authService}

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
	notifier := jobs.NewWelcomeNotifier(jobClient, cfg.LoginURL, logger)

	contactsRepo := contacts.NewRepository(dbpool)
	contactsService := contacts.NewService(contactsRepo)
	contactsHandler := contacts.NewHandler(logger, contactsService, gate)

	usersRepo := users.NewRepository(dbpool)
	usersService := users.NewService(usersRepo, rbacService, notifier, logger)
	usersHandler := users.NewHandler(logger, usersService, contactsService, gate)

	rolesHandler := rbac.NewHandler(logger, rbacService, authRepo, gate)

	templatesRepo := templates.NewRepository(dbpool)
	templatesCache := templates.NewCache(redisClient, 10*time.Minute)
	templatesService := templates.NewService(templatesRepo, templatesCache)
	templatesHandler := templates.NewHandler(logger, templatesService, gate)

	tasksRepo := tasks.NewRepository(dbpool)
	tasksService := tasks.NewService(tasksRepo, templatesService)
	tasksHandler := tasks.NewHandler(logger, tasksService, rbacService, gate)

	assetsRepo := assets.NewRepository(dbpool)
	assetsService := assets.NewService(assetsRepo, rbacRepo)
	assetsHandler := assets.NewHandler(logger, assetsService, gate)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		AuthHandler:      authHandler,
		UsersHandler:     usersHandler,
		ContactsHandler:  contactsHandler,
		TasksHandler:     tasksHandler,
		TemplatesHandler: templatesHandler,
		AssetsHandler:    assetsHandler,
		RolesHandler:     rolesHandler,
		JobHandler:       jobHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server exit", slog.Any("error", err))
		os.Exit(1)
	}
}
