package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/taskforge/taskforge-backend/api/routes"
	"github.com/taskforge/taskforge-backend/internal/credit"
	"github.com/taskforge/taskforge-backend/internal/disputes"
	"github.com/taskforge/taskforge-backend/internal/ledger"
	"github.com/taskforge/taskforge-backend/internal/notifications"
	"github.com/taskforge/taskforge-backend/internal/projects"
	"github.com/taskforge/taskforge-backend/internal/settlements"
	"github.com/taskforge/taskforge-backend/internal/tasks"
	"github.com/taskforge/taskforge-backend/internal/users"
	"github.com/taskforge/taskforge-backend/pkg/config"
	"github.com/taskforge/taskforge-backend/pkg/db"
	"github.com/taskforge/taskforge-backend/pkg/logger"
	"github.com/taskforge/taskforge-backend/pkg/metrics"
	"github.com/taskforge/taskforge-backend/pkg/migrate"
	"github.com/taskforge/taskforge-backend/pkg/outbox"
	"github.com/taskforge/taskforge-backend/pkg/redis"
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

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(promRegistry)
	domainMetrics := metrics.NewDomainMetrics(promRegistry)

	gormDB := dbClient.DB()
	outboxSvc := outbox.NewService(outbox.NewRepository(gormDB), logg)

	usersRepo := users.NewRepository(gormDB)
	projectsRepo := projects.NewRepository(gormDB)
	tasksRepo := tasks.NewRepository(gormDB)
	settlementsRepo := settlements.NewRepository(gormDB)
	ledgerRepo := ledger.NewRepository(gormDB)
	creditRepo := credit.NewRepository(gormDB)
	disputesRepo := disputes.NewRepository(gormDB)
	notificationsRepo := notifications.NewRepository(gormDB)

	usersSvc, err := users.NewService(users.ServiceParams{
		Repo:           usersRepo,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	requireService(logg, "users", err)

	projectsSvc, err := projects.NewService(projectsRepo)
	requireService(logg, "projects", err)

	ledgerSvc, err := ledger.NewService(ledgerRepo, dbClient)
	requireService(logg, "ledger", err)

	creditSvc, err := credit.NewService(creditRepo, dbClient)
	requireService(logg, "credit", err)

	notificationsSvc, err := notifications.NewService(notificationsRepo)
	requireService(logg, "notifications", err)

	settlementsSvc, err := settlements.NewService(settlements.ServiceParams{
		Repo:    settlementsRepo,
		Users:   usersRepo,
		Ledger:  ledgerSvc,
		Outbox:  outboxSvc,
		Runner:  dbClient,
		Metrics: domainMetrics,
	})
	requireService(logg, "settlements", err)

	tasksSvc, err := tasks.NewService(tasks.ServiceParams{
		Repo:        tasksRepo,
		Projects:    projectsRepo,
		Settlements: settlementsSvc,
		Notifier:    notificationsSvc,
		Outbox:      outboxSvc,
		Runner:      dbClient,
	})
	requireService(logg, "tasks", err)

	disputesSvc, err := disputes.NewService(disputes.ServiceParams{
		Repo:     disputesRepo,
		Tasks:    tasksRepo,
		Projects: projectsRepo,
		Ledger:   ledgerSvc,
		Credit:   creditSvc,
		Outbox:   outboxSvc,
		Runner:   dbClient,
		Metrics:  domainMetrics,
	})
	requireService(logg, "disputes", err)

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
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, httpMetrics, promRegistry, routes.Services{
			Users:         usersSvc,
			Projects:      projectsSvc,
			Tasks:         tasksSvc,
			Settlements:   settlementsSvc,
			Ledger:        ledgerSvc,
			Credit:        creditSvc,
			Disputes:      disputesSvc,
			Notifications: notificationsSvc,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func requireService(logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to create "+name+" service", err)
	os.Exit(1)
}
