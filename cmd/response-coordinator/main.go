package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/reliefops/go-disaster-response/internal/api"
	"github.com/reliefops/go-disaster-response/internal/config"
	"github.com/reliefops/go-disaster-response/internal/coordinator"
	"github.com/reliefops/go-disaster-response/internal/department"
	"github.com/reliefops/go-disaster-response/internal/gis"
	"github.com/reliefops/go-disaster-response/internal/logging"
	"github.com/reliefops/go-disaster-response/internal/observability"
	"github.com/reliefops/go-disaster-response/internal/priority"
	"github.com/reliefops/go-disaster-response/internal/repository"
	"github.com/reliefops/go-disaster-response/internal/rescore"
	"github.com/reliefops/go-disaster-response/internal/weather"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("Server starting", "host", cfg.Server.Host, "port", cfg.Server.Port)

	db, err := repository.NewSQLiteDB(cfg.DB.Path)
	if err != nil {
		logging.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	metrics := observability.NewMetrics()

	var geocoder gis.Geocoder = gis.NewClient(cfg.Geocoder.URL, cfg.Geocoder.UserAgent, cfg.Geocoder.Timeout)
	geocoder = gis.NewCachedGeocoder(geocoder, cfg.Geocoder.CacheSize)

	var sites *gis.SiteIndex
	if cfg.Sites.Path != "" {
		sites, err = gis.LoadSiteIndex(cfg.Sites.Path)
		if err != nil {
			logging.Fatalf("Failed to load infrastructure sites: %v", err)
		}
		slog.Info("infrastructure sites loaded", "path", cfg.Sites.Path, "count", sites.Len())
	}

	var classifier priority.WeatherClassifier
	if cfg.Weather.Enabled {
		classifier = weather.NewClient(cfg.Weather.URL, cfg.Weather.Timeout, slog.Default())
	}

	coord := coordinator.New(db, geocoder, classifier, sites, metrics)
	roster := department.NewRoster(db, metrics)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var rescorer *rescore.Rescorer
	if cfg.Rescore.Enabled {
		rescorer = rescore.New(db, classifier, metrics, rescore.Options{
			Interval:   cfg.Rescore.Interval,
			Workers:    cfg.Rescore.Workers,
			BufferSize: cfg.Rescore.BufferSize,
		})
		rescorer.Start(ctx)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false, // Set to false when using wildcard origins
	}))
	router.Use(api.RateLimitMiddleware(cfg.Server.RateLimit))

	handler := api.NewHandler(coord, db, roster)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	cancel()
	if rescorer != nil {
		rescorer.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
}
