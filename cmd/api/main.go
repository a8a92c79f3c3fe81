package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmfierro/bookhaven-backend/api/routes"
	"github.com/dmfierro/bookhaven-backend/internal/activities"
	"github.com/dmfierro/bookhaven-backend/internal/auth"
	"github.com/dmfierro/bookhaven-backend/internal/books"
	"github.com/dmfierro/bookhaven-backend/internal/loans"
	"github.com/dmfierro/bookhaven-backend/internal/notify"
	"github.com/dmfierro/bookhaven-backend/internal/readers"
	"github.com/dmfierro/bookhaven-backend/internal/stats"
	"github.com/dmfierro/bookhaven-backend/internal/users"
	"github.com/dmfierro/bookhaven-backend/pkg/auth/session"
	"github.com/dmfierro/bookhaven-backend/pkg/config"
	"github.com/dmfierro/bookhaven-backend/pkg/db"
	"github.com/dmfierro/bookhaven-backend/pkg/logger"
	"github.com/dmfierro/bookhaven-backend/pkg/metrics"
	"github.com/dmfierro/bookhaven-backend/pkg/migrate"
	"github.com/dmfierro/bookhaven-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	loansRepo := loans.NewRepository(dbClient.DB())
	booksRepo := books.NewRepository(dbClient.DB())
	readersRepo := readers.NewRepository(dbClient.DB())
	activitiesRepo := activities.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(dbClient.DB()),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	lendingService, err := loans.NewService(loansRepo, dbClient, loans.NewInventory(), readersRepo, activitiesRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create lending service", err)
		os.Exit(1)
	}

	bookService, err := books.NewService(booksRepo, dbClient, loansRepo, activitiesRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create book service", err)
		os.Exit(1)
	}

	readerService, err := readers.NewService(readersRepo, dbClient, loansRepo, activitiesRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create reader service", err)
		os.Exit(1)
	}

	statsService, err := stats.NewService(booksRepo, readersRepo, loansRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create stats service", err)
		os.Exit(1)
	}

	activityService, err := activities.NewService(activitiesRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create activity service", err)
		os.Exit(1)
	}

	var notifyService notify.Service
	if cfg.SMTP.Enabled() {
		sender, err := notify.NewSMTPSender(cfg.SMTP)
		if err != nil {
			logg.Error(context.Background(), "failed to create smtp sender", err)
			os.Exit(1)
		}
		notifyService, err = notify.NewService(loansRepo, readersRepo, booksRepo, sender)
		if err != nil {
			logg.Error(context.Background(), "failed to create notify service", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "smtp not configured, due reminders disabled")
	}

	httpMetrics := metrics.NewHTTPMetrics(prometheus.DefaultRegisterer)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:      cfg,
			Logger:      logg,
			Redis:       redisClient,
			Session:     sessionManager,
			Metrics:     httpMetrics,
			DBPinger:    dbClient,
			RedisPinger: redisClient,
			Auth:        authService,
			Books:       bookService,
			Readers:     readerService,
			Lendings:    lendingService,
			Stats:       statsService,
			Activities:  activityService,
			Notify:      notifyService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
