package handlers

import (
	"context"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"placeReviewsAPI/middleware"
	"placeReviewsAPI/services"
)

type RouterConfig struct {
	Places      *PlaceHandler
	Admin       *AdminHandler
	Pages       *PageHandler
	Sessions    middleware.SessionVerifier
	RateLimiter *middleware.RateLimiter
	Logger      *zap.Logger

	// Health reports whether the blob store is reachable.
	Health func(ctx context.Context) error

	MetricsUser string
	MetricsPass string
	PprofSecret string
}

func NewRouter(cfg RouterConfig) *mux.Router {
	r := mux.NewRouter()

	standardRouter := r.PathPrefix("/").Subrouter()
	if cfg.RateLimiter != nil {
		standardRouter.Use(cfg.RateLimiter.Middleware)
	}
	standardRouter.Use(middleware.MonitorMiddleware(cfg.Logger))
	standardRouter.Use(middleware.AdminMiddleware(cfg.Sessions))

	standardRouter.Handle("/metrics", middleware.BasicAuthMiddleware(cfg.MetricsUser, cfg.MetricsPass)(promhttp.Handler())).Methods("GET")
	standardRouter.PathPrefix("/debug/pprof/").Handler(middleware.PprofSecurityMiddleware(cfg.PprofSecret)(pprofMux()))

	standardRouter.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if cfg.Health != nil {
			if err := cfg.Health(ctx); err != nil {
				respondWithJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status": "unhealthy",
					"error":  "storage unavailable",
				})
				return
			}
		}
		respondWithJSON(w, http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": "place-reviews-api",
		})
	}).Methods("GET")

	// -------------------------------------------------------------------------
	// HTML PAGES
	// -------------------------------------------------------------------------
	standardRouter.HandleFunc("/", cfg.Pages.ListPage).Methods("GET")
	standardRouter.HandleFunc("/places/{id:[0-9]+}", cfg.Pages.DetailPage).Methods("GET")
	standardRouter.HandleFunc("/admin/login", cfg.Pages.LoginPage).Methods("GET")
	standardRouter.HandleFunc("/admin/login", cfg.Pages.LoginForm).Methods("POST")
	standardRouter.HandleFunc("/admin/logout", cfg.Pages.LogoutForm).Methods("POST")

	forms := standardRouter.NewRoute().Subrouter()
	forms.Use(middleware.RequireAdminPage)
	forms.HandleFunc("/places", cfg.Pages.CreatePlaceForm).Methods("POST")
	forms.HandleFunc("/places/{id:[0-9]+}/delete", cfg.Pages.DeletePlaceForm).Methods("POST")
	forms.HandleFunc("/places/{id:[0-9]+}/reviews", cfg.Pages.AddReviewForm).Methods("POST")
	forms.HandleFunc("/places/{id:[0-9]+}/reviews/{reviewID:[0-9]+}/delete", cfg.Pages.DeleteReviewForm).Methods("POST")

	// -------------------------------------------------------------------------
	// API V1 SUBROUTER
	// -------------------------------------------------------------------------
	api := standardRouter.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/places", cfg.Places.GetPlaces).Methods("GET")
	api.HandleFunc("/places/{id:[0-9]+}", cfg.Places.GetPlace).Methods("GET")
	api.HandleFunc("/admin/login", cfg.Admin.Login).Methods("POST")
	api.HandleFunc("/admin/logout", cfg.Admin.Logout).Methods("POST")
	api.HandleFunc("/admin/status", cfg.Admin.Status).Methods("GET")

	// -------------------------------------------------------------------------
	// ADMIN ROUTES (REQUIRE SESSION)
	// -------------------------------------------------------------------------
	protected := api.NewRoute().Subrouter()
	protected.Use(middleware.RequireAdmin)

	protected.HandleFunc("/places", cfg.Places.CreatePlace).Methods("POST")
	protected.HandleFunc("/places/{id:[0-9]+}", cfg.Places.DeletePlace).Methods("DELETE")
	protected.HandleFunc("/places/{id:[0-9]+}/reviews", cfg.Places.AddReview).Methods("POST")
	protected.HandleFunc("/places/{id:[0-9]+}/reviews/{reviewID:[0-9]+}", cfg.Places.DeleteReview).Methods("DELETE")
	protected.HandleFunc("/admin/reset", cfg.Places.ResetPlaces).Methods("POST")
	protected.HandleFunc("/snapshot", cfg.Places.GetSnapshot).Methods("GET")

	return r
}

func pprofMux() http.Handler {
	m := http.NewServeMux()
	m.HandleFunc("/debug/pprof/", pprof.Index)
	m.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	m.HandleFunc("/debug/pprof/profile", pprof.Profile)
	m.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	m.HandleFunc("/debug/pprof/trace", pprof.Trace)
	return m
}

// compile-time check that the admin service can back AdminMiddleware
var _ middleware.SessionVerifier = (*services.AdminService)(nil)
