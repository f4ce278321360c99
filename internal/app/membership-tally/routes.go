package membershiptally

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/clubkasse/membership-tally/internal/http/handlers/auth/login"
	"github.com/clubkasse/membership-tally/internal/http/handlers/fees/preview"
	"github.com/clubkasse/membership-tally/internal/http/handlers/health"
	relationsget "github.com/clubkasse/membership-tally/internal/http/handlers/relations/get"
	relationsset "github.com/clubkasse/membership-tally/internal/http/handlers/relations/set"
	tallycreate "github.com/clubkasse/membership-tally/internal/http/handlers/tally/create"
	tallylist "github.com/clubkasse/membership-tally/internal/http/handlers/tally/list"
	tallyread "github.com/clubkasse/membership-tally/internal/http/handlers/tally/read"
	"github.com/clubkasse/membership-tally/internal/http/middlewarectx"
	authservice "github.com/clubkasse/membership-tally/internal/services/auth"
	feesservice "github.com/clubkasse/membership-tally/internal/services/fees"
	relationsservice "github.com/clubkasse/membership-tally/internal/services/relations"
	tallyservice "github.com/clubkasse/membership-tally/internal/services/tally"
	"github.com/clubkasse/membership-tally/internal/storage/repository"
)

// RegisterRoutes registers all routes of the application.
func RegisterRoutes(r chi.Router, logger *slog.Logger, db *repository.Storage, authService *authservice.Service, feesService *feesservice.Service, relationsService *relationsservice.Service, tallyService *tallyservice.Service) {
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Open endpoints
		r.Post("/login", login.New(logger, authService).ServeHTTP)
		r.Get("/health", health.New(logger, db).ServeHTTP)

		// JWT-protected group
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(authService, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Post("/tallies", tallycreate.New(logger, tallyService).ServeHTTP)
			r.Get("/tallies", tallylist.New(logger, tallyService).ServeHTTP)
			r.Get("/tallies/{id}", tallyread.New(logger, tallyService).ServeHTTP)
			r.Get("/members/{id}/fees", preview.New(logger, feesService).ServeHTTP)
			r.Get("/members/{id}/relatives", relationsget.New(logger, relationsService).ServeHTTP)
			r.Put("/members/{id}/relatives", relationsset.New(logger, relationsService).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
