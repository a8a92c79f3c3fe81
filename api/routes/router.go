package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmfierro/bookhaven-backend/api/controllers"
	"github.com/dmfierro/bookhaven-backend/api/middleware"
	"github.com/dmfierro/bookhaven-backend/internal/activities"
	"github.com/dmfierro/bookhaven-backend/internal/auth"
	"github.com/dmfierro/bookhaven-backend/internal/books"
	"github.com/dmfierro/bookhaven-backend/internal/loans"
	"github.com/dmfierro/bookhaven-backend/internal/notify"
	"github.com/dmfierro/bookhaven-backend/internal/readers"
	"github.com/dmfierro/bookhaven-backend/internal/stats"
	"github.com/dmfierro/bookhaven-backend/pkg/auth/session"
	"github.com/dmfierro/bookhaven-backend/pkg/config"
	"github.com/dmfierro/bookhaven-backend/pkg/enums"
	"github.com/dmfierro/bookhaven-backend/pkg/logger"
	"github.com/dmfierro/bookhaven-backend/pkg/metrics"
	"github.com/dmfierro/bookhaven-backend/pkg/redis"
)

// Deps bundles everything the HTTP surface needs. Services come in as
// interfaces so the router stays wiring-only.
type Deps struct {
	Config  *config.Config
	Logger  *logger.Logger
	Redis   *redis.Client
	Session session.AccessSessionChecker
	Metrics *metrics.HTTPMetrics

	DBPinger    controllers.Pinger
	RedisPinger controllers.Pinger

	Auth       auth.Service
	Books      books.Service
	Readers    readers.Service
	Lendings   loans.Service
	Stats      stats.Service
	Activities activities.Service
	Notify     notify.Service
}

func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware())
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	signupPolicy := middleware.NewAuthRateLimitPolicy(
		"signup",
		cfg.AuthRateLimit.SignupWindow,
		cfg.AuthRateLimit.SignupIPLimit,
		cfg.AuthRateLimit.SignupEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"postgres": d.DBPinger,
			"redis":    d.RedisPinger,
		}))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(signupPolicy, d.Redis, logg)).Post("/signup", controllers.AuthSignup(d.Auth, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, d.Redis, logg)).Post("/login", controllers.AuthLogin(d.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(d.Auth, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, d.Session, logg))
			r.Post("/logout", controllers.AuthLogout(d.Auth, logg))
			r.Get("/me", controllers.AuthMe(d.Auth, logg))
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, d.Session, logg))
		r.Use(middleware.Idempotency(d.Redis, logg))

		r.Route("/books", func(r chi.Router) {
			r.Get("/", controllers.ListBooks(d.Books, logg))
			r.Post("/", controllers.CreateBook(d.Books, logg))
			r.Get("/{bookId}", controllers.GetBook(d.Books, logg))
			r.Patch("/{bookId}", controllers.UpdateBook(d.Books, logg))
			r.With(middleware.RequireRole(string(enums.UserRoleAdmin), logg)).
				Delete("/{bookId}", controllers.DeleteBook(d.Books, logg))
		})

		r.Route("/readers", func(r chi.Router) {
			r.Get("/", controllers.ListReaders(d.Readers, logg))
			r.Post("/", controllers.RegisterReader(d.Readers, logg))
			r.Get("/{readerId}", controllers.GetReader(d.Readers, logg))
			r.Patch("/{readerId}", controllers.UpdateReader(d.Readers, logg))
			r.With(middleware.RequireRole(string(enums.UserRoleAdmin), logg)).
				Delete("/{readerId}", controllers.DeleteReader(d.Readers, logg))
		})

		r.Route("/lendings", func(r chi.Router) {
			r.Get("/", controllers.ListLendings(d.Lendings, logg))
			r.Post("/lend", controllers.LendBook(d.Lendings, logg))
			r.Post("/return/{lendingId}", controllers.ReturnBook(d.Lendings, logg))
			r.Get("/{lendingId}", controllers.GetLending(d.Lendings, logg))
			r.Patch("/{lendingId}", controllers.EditLending(d.Lendings, logg))
			r.Delete("/{lendingId}", controllers.DeleteLending(d.Lendings, logg))
			r.Get("/reader/{readerId}", controllers.ListLendingsByReader(d.Lendings, logg))
			r.Get("/book/{bookId}", controllers.ListLendingsByBook(d.Lendings, logg))
		})

		r.Get("/stats/dashboard", controllers.DashboardStats(d.Stats, logg))
		r.Get("/activities", controllers.RecentActivities(d.Activities, logg))
		r.Post("/notifications/due-reminder", controllers.SendDueReminder(d.Notify, logg))
	})

	return r
}
