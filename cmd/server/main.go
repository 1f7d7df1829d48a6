package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/pricetrack/buybox-service/config"
	"github.com/pricetrack/buybox-service/internal/database"
	"github.com/pricetrack/buybox-service/internal/feed"
	"github.com/pricetrack/buybox-service/internal/handlers"
	"github.com/pricetrack/buybox-service/internal/middleware"
	"github.com/pricetrack/buybox-service/internal/offer"
	"github.com/pricetrack/buybox-service/internal/pricing"
	"github.com/pricetrack/buybox-service/internal/refresh"
	"github.com/pricetrack/buybox-service/internal/sink"
	"github.com/pricetrack/buybox-service/internal/store"
	"github.com/pricetrack/buybox-service/internal/telemetry"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := initLogger(cfg.Logging)

	logger.Info().Msg("Starting buybox service")

	ctx := context.Background()

	cleanup := telemetry.MustInit(ctx, telemetry.GetConfigFromEnv())
	defer cleanup(ctx)

	var changeLister handlers.ChangeLister
	var changeRecorder refresh.ChangeRecorder
	if dbURL := config.GetDatabaseURL(); dbURL != "" {
		if err := database.Connect(
			ctx,
			dbURL,
			cfg.Database.MaxConnections,
			cfg.Database.MinConnections,
			cfg.Database.MaxConnLifetime,
			cfg.Database.MaxConnIdleTime,
		); err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer database.Close()
		logger.Info().Msg("Database connected")

		changeLister = database.ListPriceChanges
		changeRecorder = dbChangeRecorder{}
	} else {
		logger.Warn().Msg("DATABASE_URL not set, price-change history disabled")
	}

	snapshot := store.New()
	metrics := telemetry.NewMetricsRecorder()

	feedClient := feed.NewClient(feed.Config{
		ListingURL:        cfg.Feed.ListingURL,
		URLFeedURL:        cfg.Feed.URLFeedURL,
		Timeout:           cfg.Feed.Timeout,
		MaxRetries:        cfg.Feed.MaxRetries,
		RequestsPerSecond: cfg.Feed.RequestsPerSecond,
	}, *logger)

	sinkClient := sink.NewClient(cfg.Sink.PricingURL, cfg.Sink.ActivationURL, cfg.Sink.APIKey, cfg.Sink.Timeout)
	updater := pricing.NewUpdater(snapshot, sinkClient, *logger)
	refresher := refresh.New(feedClient, snapshot, changeRecorder, metrics, *logger, cfg.Refresh.Timeout)

	handlers.Init(snapshot, updater, sinkClient, refresher, metrics, changeLister)

	if cfg.Refresh.OnStart {
		if _, err := refresher.Run(ctx); err != nil {
			logger.Warn().Err(err).Msg("Initial feed refresh failed, serving empty snapshot")
		}
	}

	stopRefresh, err := refresher.Start(cfg.Refresh.Schedule)
	if err != nil {
		logger.Fatal().Err(err).Str("schedule", cfg.Refresh.Schedule).Msg("Invalid refresh schedule")
	}

	if cfg.Logging.Level == "info" || cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	setupMiddleware(router, logger)

	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	internal := router.Group("/internal")
	internal.Use(middleware.InternalAuthMiddleware(cfg.Server.InternalAPIKey))
	internal.Use(middleware.ServiceRateLimitMiddleware(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.BurstSize))
	{
		internal.GET("/health", handlers.HealthCheck)
		internal.GET("/offers", handlers.ListOffers)
		internal.GET("/urls", handlers.ListURLs)
		internal.PATCH("/urls/activation", handlers.ToggleActivation)

		buybox := internal.Group("/buybox")
		{
			buybox.GET("", handlers.ListWinners)
			buybox.POST("/evaluate", handlers.Evaluate)
			buybox.GET("/export", handlers.Export)
		}

		pricingGroup := internal.Group("/pricing")
		{
			pricingGroup.POST("/suggest", handlers.Suggest)
			pricingGroup.PATCH("", handlers.UpdatePricing)
		}

		statsGroup := internal.Group("/stats")
		{
			statsGroup.GET("/marketplaces", handlers.MarketplaceStats)
			statsGroup.GET("/compare", handlers.CompareStats)
			statsGroup.GET("/extremes", handlers.ExtremeStats)
		}

		internal.GET("/price-changes", handlers.PriceChanges)
		internal.POST("/refresh", handlers.TriggerRefresh)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")
	stopRefresh()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server exited")
}

// dbChangeRecorder adapts the database package to the refresh.ChangeRecorder
// interface.
type dbChangeRecorder struct{}

func (dbChangeRecorder) RecordPriceChanges(ctx context.Context, changes []offer.PriceChange) error {
	return database.BulkInsertPriceChanges(ctx, changes)
}

func initLogger(cfg config.LoggingConfig) *zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var output io.Writer
	if cfg.Format == "json" {
		output = os.Stdout
	} else {
		output = zerolog.ConsoleWriter{Out: os.Stdout, NoColor: cfg.NoColor}
	}

	logger := zerolog.New(output).Level(level).With().Timestamp().Str("service", "buybox-service").Logger()
	return &logger
}

func setupMiddleware(router *gin.Engine, logger *zerolog.Logger) {
	router.Use(func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		end := time.Now()
		latency := end.Sub(start)

		logger.Info().
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", query).
			Int("status", c.Writer.Status()).
			Dur("latency", latency).
			Str("ip", c.ClientIP()).
			Msg("HTTP request")
	})
}
