package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpMetrics "whichGLP/app/echo-server/metrics"
	"whichGLP/app/echo-server/router"
	"whichGLP/business/aggregation"
	"whichGLP/business/listing"
	"whichGLP/business/materializer"
	"whichGLP/business/recommendation"
	"whichGLP/business/snapshot"
	"whichGLP/business/stats"
	"whichGLP/business/statscache"
	"whichGLP/domain"
	"whichGLP/internal/middleware"
	psqlRepo "whichGLP/internal/repository/postgres"
	"whichGLP/internal/repository/recommender"
	redisRepo "whichGLP/internal/repository/redis"
	"whichGLP/internal/rest"
	"whichGLP/pkg/config"
	"whichGLP/pkg/database"
	redisClient "whichGLP/pkg/database/redis"
	"whichGLP/pkg/logger"
	"whichGLP/pkg/metrics"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/thejerf/suture/v4"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	defer logger.Sync()
	logger.Info("Starting WhichGLP insights API", "version", cfg.App.Version)

	metrics.Init()
	httpMetrics.Init()

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	logger.Info("Database connected successfully")

	// Shared stats tier is optional; without it each replica computes its own.
	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = redisClient.NewRedisClient(cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to redis", "error", err)
		}
		logger.Info("Redis connected successfully")
	}

	// Init validate
	validate := validator.New()

	// Init repo
	experienceRepo := psqlRepo.NewExperienceRepository(db)
	snapshots := snapshot.NewStore()

	// Init service
	mat := materializer.NewMaterializer(experienceRepo, snapshots, cfg.Materializer.RefreshTimeout)
	engine := aggregation.NewEngine(aggregation.Options{
		TopSideEffects: cfg.Stats.TopSideEffects,
		TopLocations:   cfg.Stats.TopLocations,
		NullBooleans:   aggregation.NullBooleanPolicy(cfg.Stats.NullBooleanPolicy),
	})

	cacheOpts := []statscache.Option{
		statscache.WithTTL(cfg.Stats.CacheTTL),
		statscache.WithComputeTimeout(cfg.Stats.ComputeTimeout),
		statscache.WithSnapshotVersion(func() uint64 { return snapshots.Current().Version() }),
	}
	var statsCacheRepo *redisRepo.StatsCacheRepository
	if rdb != nil {
		statsCacheRepo = redisRepo.NewStatsCacheRepository(rdb, cfg.Redis.KeyPrefix)
		cacheOpts = append(cacheOpts, statscache.WithSharedStore(statsCacheRepo))
	}
	statsCache := statscache.New(func(ctx context.Context) ([]domain.DrugStatistics, uint64, error) {
		snap := snapshots.Current()
		stats, err := engine.ComputeAll(ctx, snap)
		return stats, snap.Version(), err
	}, cacheOpts...)
	mat.Subscribe(statsCache)

	// A nil provider makes the service report the recommender as unavailable.
	var provider recommendation.Provider
	var recommenderRepo *recommender.RecommenderRepository
	if cfg.Recommender.URL != "" {
		recommenderRepo = recommender.NewRecommenderRepository(recommender.RecommenderConfig{
			BaseURL: cfg.Recommender.URL,
			Timeout: cfg.Recommender.Timeout,
		})
		provider = recommenderRepo
	}

	statsService := stats.NewStatsService(statsCache, engine, snapshots)
	listingService := listing.NewListingService(snapshots)
	recommendationService := recommendation.NewRecommendationService(provider, validate, cfg.Recommender.Timeout)

	// Init handler
	deps := map[string]rest.Pinger{"postgres": experienceRepo}
	if statsCacheRepo != nil {
		deps["redis"] = statsCacheRepo
	}
	if recommenderRepo != nil {
		deps["recommender"] = recommenderRepo
	}

	healthHandler := rest.NewHealthHandler(snapshots, deps)
	statsHandler := rest.NewStatsHandler(statsService, cfg.Server.RequestTimeout)
	experienceHandler := rest.NewExperienceHandler(listingService, validate, cfg.Server.RequestTimeout)
	recommendationHandler := rest.NewRecommendationHandler(recommendationService, cfg.Recommender.Timeout)
	adminHandler := rest.NewAdminHandler(mat)

	// Background refresh runs under a supervisor so a panicking cycle is restarted.
	supervisor := suture.New("whichglp", suture.Spec{
		EventHook: func(ev suture.Event) {
			logger.Warn("supervisor event", "event", ev.String())
		},
	})
	supervisor.Add(materializer.NewRefreshService(mat, materializer.RefreshServiceConfig{
		RefreshOnStartup: cfg.Materializer.RefreshOnStartup,
		Interval:         cfg.Materializer.RefreshInterval,
	}))

	svcCtx, stopServices := context.WithCancel(context.Background())
	supervisorDone := supervisor.ServeBackground(svcCtx)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(middleware.RequestLogger())
	e.Use(httpMetrics.Middleware())

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Setup routes
	api := e.Group("/api/v1")
	router.SetupHealthRoutes(api, healthHandler)
	router.SetupStatsRoutes(api, statsHandler)
	router.SetupExperienceRoutes(api, experienceHandler)
	router.SetupRecommendationRoutes(api, recommendationHandler)
	router.SetupAdminRoutes(api, adminHandler, cfg.Server.AdminToken)

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown server
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	stopServices()
	select {
	case err := <-supervisorDone:
		if err != nil && err != context.Canceled {
			logger.Error("Supervisor stopped with error", "error", err)
		}
	case <-ctx.Done():
		logger.Warn("Supervisor did not stop in time")
	}

	if err := redisClient.CloseRedisClient(rdb); err != nil {
		logger.Error("Redis close error", "error", err)
	}
	if err := database.ClosePostgres(db); err != nil {
		logger.Error("Database close error", "error", err)
	}

	logger.Info("Server stopped")
}
