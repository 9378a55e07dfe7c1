package router

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Rajatpundir7/DBMS-AGRI/internal/analytics"
	"github.com/Rajatpundir7/DBMS-AGRI/internal/catalog"
	"github.com/Rajatpundir7/DBMS-AGRI/internal/diagnosis"
	httpmiddleware "github.com/Rajatpundir7/DBMS-AGRI/internal/http/middleware"
	"github.com/Rajatpundir7/DBMS-AGRI/pkg/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	DiagnosisHandler   *diagnosis.Handler
	ProductsHandler    *catalog.Handler
	AnalyticsHandler   *analytics.Handler
	JWTSecret          string
	CORSAllowedOrigins []string
	MetricsHandler     http.Handler

	// Local image store (optional); files under UploadsDir are served at UploadsPrefix.
	UploadsDir    string
	UploadsPrefix string

	// Per-caller limiter for diagnosis submissions (optional).
	DiagnosisLimiter *httpmiddleware.RateLimiter
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5, "application/json"))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	auth := httpmiddleware.Auth(cfg.JWTSecret)

	r.Group(func(public chi.Router) {
		public.Get("/health", health)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.UploadsDir != "" {
			prefix := "/" + strings.Trim(cfg.UploadsPrefix, "/")
			if prefix == "/" {
				prefix = "/uploads"
			}
			files := http.StripPrefix(prefix, http.FileServer(http.Dir(cfg.UploadsDir)))
			public.Handle(prefix+"/*", files)
		}
		if cfg.ProductsHandler != nil {
			public.Mount("/api/products", cfg.ProductsHandler.Routes())
		}
	})

	if cfg.DiagnosisHandler != nil {
		r.Mount("/api/diagnosis", cfg.DiagnosisHandler.Routes(auth, httpmiddleware.RateLimit(cfg.DiagnosisLimiter)))
	}

	r.Route("/api/admin", func(admin chi.Router) {
		admin.Use(auth)
		admin.Use(httpmiddleware.RequireRole(httpmiddleware.RoleAdmin))
		if cfg.DiagnosisHandler != nil {
			admin.Mount("/diagnoses", cfg.DiagnosisHandler.AdminRoutes())
		}
		if cfg.AnalyticsHandler != nil {
			admin.Mount("/analytics", cfg.AnalyticsHandler.Routes())
		}
	})

	return r
}

func health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok", "message": "Kisan Sewa Kendra API is running"})
}
