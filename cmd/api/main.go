package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/Rajatpundir7/DBMS-AGRI/cmd/mainconfig"
	"github.com/Rajatpundir7/DBMS-AGRI/internal/analytics"
	"github.com/Rajatpundir7/DBMS-AGRI/internal/api/router"
	"github.com/Rajatpundir7/DBMS-AGRI/internal/app/bootstrap"
	"github.com/Rajatpundir7/DBMS-AGRI/internal/catalog"
	appconfig "github.com/Rajatpundir7/DBMS-AGRI/internal/config"
	"github.com/Rajatpundir7/DBMS-AGRI/internal/diagnosis"
	httpmiddleware "github.com/Rajatpundir7/DBMS-AGRI/internal/http/middleware"
	"github.com/Rajatpundir7/DBMS-AGRI/internal/observability/metrics"
	"github.com/Rajatpundir7/DBMS-AGRI/pkg/logging"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting Kisan Sewa Kendra API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)
	if cfg.JWTSecret == "" {
		logger.Warn("JWT_SECRET is empty; authenticated routes will reject every request")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	pool := bootstrap.BuildPostgresPool(ctx, cfg.DatabaseURL, logger)
	defer bootstrap.Close(redisClient, pool)

	metricsHandler, diagnosisMetrics := setupDiagnosisMetrics()
	handler, limiter, err := setupRouter(ctx, cfg, awsCfg, redisClient, pool, diagnosisMetrics, metricsHandler, logger)
	if err != nil {
		logger.Error("failed to wire API", "error", err)
		os.Exit(1)
	}
	go limiter.Run(ctx)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.AssessmentTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

func setupDiagnosisMetrics() (http.Handler, *metrics.DiagnosisMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), metrics.NewDiagnosisMetrics(reg)
}

func setupRouter(
	ctx context.Context,
	cfg *appconfig.Config,
	awsCfg aws.Config,
	redisClient *redis.Client,
	pool *pgxpool.Pool,
	diagnosisMetrics *metrics.DiagnosisMetrics,
	metricsHandler http.Handler,
	logger *logging.Logger,
) (http.Handler, *httpmiddleware.RateLimiter, error) {
	images, err := bootstrap.BuildMediaStore(cfg, awsCfg)
	if err != nil {
		return nil, nil, err
	}
	source, err := bootstrap.BuildCatalogSource(cfg, awsCfg, redisClient, logger)
	if err != nil {
		return nil, nil, err
	}
	products := catalog.New(source, logger)

	vision, err := bootstrap.BuildVisionModel(ctx, cfg, awsCfg, logger)
	if err != nil {
		return nil, nil, err
	}

	service := diagnosis.NewService(diagnosis.Deps{
		Ingestor:   diagnosis.NewIngestor(images.Store, cfg.MaxImages, cfg.MaxImageBytes, logger).WithMetrics(diagnosisMetrics),
		Encoder:    diagnosis.NewEncoder(images.Store, logger).WithMetrics(diagnosisMetrics),
		Assessor:   diagnosis.NewAssessmentClient(vision, cfg.AssessmentTimeout, logger),
		Matcher:    diagnosis.NewMatcher(products, logger),
		Repository: bootstrap.BuildDiagnosisRepository(cfg, awsCfg, logger),
		Products:   products,
		Events:     bootstrap.BuildEventRecorder(cfg, awsCfg, pool, logger),
		Metrics:    diagnosisMetrics,
		Logger:     logger,
	})

	limiter := httpmiddleware.NewRateLimiter(cfg.DiagnosisRatePerSec, cfg.DiagnosisRateBurst)
	routerCfg := &router.Config{
		Logger:             logger,
		DiagnosisHandler:   diagnosis.NewHandler(service, logger),
		ProductsHandler:    catalog.NewHandler(products, logger),
		JWTSecret:          cfg.JWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		MetricsHandler:     metricsHandler,
		DiagnosisLimiter:   limiter,
	}
	if pool != nil {
		routerCfg.AnalyticsHandler = analytics.NewHandler(analytics.NewPostgresRecorder(pool), logger)
	}
	if images.Local != nil {
		routerCfg.UploadsDir = images.Local.Root()
		routerCfg.UploadsPrefix = images.Local.PublicPrefix()
	}
	return router.New(routerCfg), limiter, nil
}
