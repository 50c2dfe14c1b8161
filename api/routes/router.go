package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/crmbase-app/crmbase-backend/api/controllers"
	"github.com/crmbase-app/crmbase-backend/api/middleware"
	"github.com/crmbase-app/crmbase-backend/internal/auth"
	"github.com/crmbase-app/crmbase-backend/internal/companies"
	"github.com/crmbase-app/crmbase-backend/internal/contacts"
	"github.com/crmbase-app/crmbase-backend/internal/notes"
	"github.com/crmbase-app/crmbase-backend/internal/users"
	"github.com/crmbase-app/crmbase-backend/pkg/auth/session"
	"github.com/crmbase-app/crmbase-backend/pkg/config"
	"github.com/crmbase-app/crmbase-backend/pkg/db"
	"github.com/crmbase-app/crmbase-backend/pkg/logger"
	"github.com/crmbase-app/crmbase-backend/pkg/metrics"
	"github.com/crmbase-app/crmbase-backend/pkg/redis"
)

// NewRouter assembles the HTTP surface: health probes, the metrics endpoint,
// the public auth routes and the token-guarded API.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessions session.AccessSessionChecker,
	httpMetrics *metrics.HTTPMetrics,
	gatherer prometheus.Gatherer,
	authService auth.Service,
	userService users.Service,
	companyService companies.Service,
	noteService notes.Service,
	contactService contacts.Service,
	industryRepo controllers.IndustryLister,
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
		cfg.AuthRateLimit.LoginLoginLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterLoginLimit,
	)
	rateLimit := func(policy middleware.AuthRateLimitPolicy) func(http.Handler) http.Handler {
		if redisClient == nil {
			return passthrough
		}
		return middleware.AuthRateLimit(policy, redisClient, logg)
	}

	healthDeps := map[string]controllers.Pinger{"database": dbP}
	if redisClient != nil {
		healthDeps["redis"] = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, healthDeps))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	authGuard := middleware.Auth(cfg.JWT, sessions, logg)

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(rateLimit(registerPolicy)).Post("/register", controllers.AuthRegister(authService, logg))
		r.With(rateLimit(loginPolicy)).Post("/login", controllers.AuthLogin(authService, logg))
		r.With(authGuard).Post("/logout", controllers.AuthLogout(authService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(authGuard)

		r.Route("/companies", func(r chi.Router) {
			r.Get("/", controllers.CompaniesList(companyService, logg))
			r.Post("/", controllers.CompaniesCreate(companyService, logg))
			r.Get("/{companyId}", controllers.CompaniesGet(companyService, logg))
			r.Put("/{companyId}", controllers.CompaniesUpdate(companyService, logg))
			r.Delete("/{companyId}", controllers.CompaniesDelete(companyService, logg))
			r.Route("/{companyId}/notes", func(r chi.Router) {
				r.Post("/", controllers.NotesCreate(noteService, logg))
				r.Put("/{noteId}", controllers.NotesUpdate(noteService, logg))
				r.Delete("/{noteId}", controllers.NotesDelete(noteService, logg))
			})
			r.Route("/{companyId}/contacts", func(r chi.Router) {
				r.Post("/", controllers.ContactsCreate(contactService, logg))
				r.Put("/{contactId}", controllers.ContactsUpdate(contactService, logg))
				r.Delete("/{contactId}", controllers.ContactsDelete(contactService, logg))
			})
		})

		r.Get("/contacts/search", controllers.ContactsSearch(contactService, logg))

		r.Route("/users", func(r chi.Router) {
			r.With(middleware.RequireModerator(logg)).
				Get("/", controllers.UsersList(userService, logg))
			r.With(middleware.RequireModerator(logg)).
				Put("/", controllers.UsersBatchUpdate(userService, logg))
			r.Get("/me", controllers.UsersMe(userService, logg))
			r.Post("/me/password", controllers.UsersChangePassword(userService, logg))
			r.Get("/{userId}", controllers.UsersGet(userService, logg))
			r.Put("/{userId}", controllers.UsersUpdate(userService, logg))
			r.Delete("/{userId}", controllers.UsersDelete(userService, logg))
		})

		r.Get("/industries", controllers.IndustriesList(industryRepo, logg))
	})

	return r
}

func passthrough(next http.Handler) http.Handler {
	return next
}
