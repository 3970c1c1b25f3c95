package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/taskforge/taskforge-backend/api/controllers"
	"github.com/taskforge/taskforge-backend/api/middleware"
	"github.com/taskforge/taskforge-backend/internal/credit"
	"github.com/taskforge/taskforge-backend/internal/disputes"
	"github.com/taskforge/taskforge-backend/internal/ledger"
	"github.com/taskforge/taskforge-backend/internal/notifications"
	"github.com/taskforge/taskforge-backend/internal/projects"
	"github.com/taskforge/taskforge-backend/internal/settlements"
	"github.com/taskforge/taskforge-backend/internal/tasks"
	"github.com/taskforge/taskforge-backend/internal/users"
	"github.com/taskforge/taskforge-backend/pkg/config"
	"github.com/taskforge/taskforge-backend/pkg/enums"
	"github.com/taskforge/taskforge-backend/pkg/logger"
	"github.com/taskforge/taskforge-backend/pkg/metrics"
	"github.com/taskforge/taskforge-backend/pkg/redis"
)

// Services bundles the domain services wired into the HTTP surface.
type Services struct {
	Users         users.Service
	Projects      projects.Service
	Tasks         tasks.Service
	Settlements   settlements.Service
	Ledger        ledger.Service
	Credit        credit.Service
	Disputes      disputes.Service
	Notifications notifications.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisClient *redis.Client,
	httpMetrics *metrics.HTTPMetrics,
	promRegistry *prometheus.Registry,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"db":    dbP,
			"redis": redisClient,
		}))
	})

	if promRegistry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(svcs.Users, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).Post("/register", controllers.AuthRegister(svcs.Users, logg))
	})

	var idemStore redis.IdempotencyStore
	if redisClient != nil {
		idemStore = redisClient
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Get("/me", controllers.GetMe(svcs.Users, logg))

		r.Route("/users/{id}", func(r chi.Router) {
			r.Get("/points", controllers.GetUserPoints(svcs.Ledger, logg))
			r.Get("/points/transactions", controllers.ListUserPointTransactions(svcs.Ledger, logg))
		})

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", controllers.ListProjects(svcs.Projects, logg))
			r.Post("/", controllers.CreateProject(svcs.Projects, logg))
			r.Get("/{id}", controllers.GetProject(svcs.Projects, logg))
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", controllers.ListTasks(svcs.Tasks, logg))
			r.Post("/", controllers.CreateTask(svcs.Tasks, logg))
			r.Get("/{id}", controllers.GetTask(svcs.Tasks, logg))
			r.Post("/{id}/claim", controllers.ClaimTask(svcs.Tasks, logg))
			r.Post("/{id}/submit", controllers.SubmitTask(svcs.Tasks, logg))
			r.Post("/{id}/review", controllers.ReviewTask(svcs.Tasks, logg))
			r.Post("/{id}/cancel", controllers.CancelTask(svcs.Tasks, logg))
		})

		r.Route("/settlements", func(r chi.Router) {
			r.Get("/", controllers.ListSettlements(svcs.Settlements, logg))
			r.Get("/{id}", controllers.GetSettlement(svcs.Settlements, logg))
			r.With(middleware.RequireRole(string(enums.UserRoleAdmin), logg)).
				Post("/", controllers.Settle(svcs.Settlements, logg))
		})

		r.Route("/points", func(r chi.Router) {
			r.Get("/balance", controllers.GetBalance(svcs.Ledger, logg))
			r.Get("/transactions", controllers.ListTransactions(svcs.Ledger, logg))
			r.With(middleware.RequireRole(string(enums.UserRoleAdmin), logg)).
				Post("/adjust", controllers.AdjustPoints(svcs.Ledger, logg))
		})

		r.Route("/credit", func(r chi.Router) {
			r.Get("/history", controllers.GetCreditHistory(svcs.Credit, logg))
			r.With(middleware.RequireRole(string(enums.UserRoleAdmin), logg)).
				Post("/adjust", controllers.AdjustCredit(svcs.Credit, logg))
		})

		r.Route("/disputes", func(r chi.Router) {
			r.Get("/", controllers.ListDisputes(svcs.Disputes, logg))
			r.Post("/", controllers.OpenDispute(svcs.Disputes, logg))
			r.Get("/{id}", controllers.GetDispute(svcs.Disputes, logg))
			r.With(middleware.RequireRole(string(enums.UserRoleArbitrator), logg)).
				Post("/{id}/arbitrate", controllers.Arbitrate(svcs.Disputes, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(svcs.Notifications, logg))
			r.Post("/{id}/read", controllers.MarkNotificationRead(svcs.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(svcs.Notifications, logg))
		})
	})

	return r
}
