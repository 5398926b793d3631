package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/soundshelf/soundshelf-backend/api/controllers"
	"github.com/soundshelf/soundshelf-backend/api/middleware"
	"github.com/soundshelf/soundshelf-backend/internal/tracks"
	"github.com/soundshelf/soundshelf-backend/internal/uploads"
	"github.com/soundshelf/soundshelf-backend/pkg/config"
	"github.com/soundshelf/soundshelf-backend/pkg/db"
	"github.com/soundshelf/soundshelf-backend/pkg/logger"
	"github.com/soundshelf/soundshelf-backend/pkg/metrics"
	"github.com/soundshelf/soundshelf-backend/pkg/storage/local"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	store *local.Store,
	pipeline *uploads.Pipeline,
	trackService tracks.Service,
	registry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()

	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	httpMetrics := metrics.NewHTTPMetrics(registry)

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(cfg.CORS),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	r.Route("/api/v1/music", func(r chi.Router) {
		r.Get("/", controllers.ListTracks(trackService, logg))
		r.With(middleware.Upload(pipeline, logg)).Post("/", controllers.CreateTrack(trackService, logg))
		r.Route("/{trackId}", func(r chi.Router) {
			r.Get("/", controllers.GetTrack(trackService, logg))
			r.Put("/", controllers.UpdateTrack(trackService, logg))
			r.Patch("/", controllers.UpdateTrack(trackService, logg))
			r.Delete("/", controllers.DeleteTrack(trackService, logg))
		})
	})

	r.Get("/uploads/{filename}", controllers.ServeUpload(store, logg))

	return r
}
