package main

import (
	"strconv"
	"time"

	"srm-service/internal/handler"
	"srm-service/internal/middleware"
	"srm-service/internal/service"
	"srm-service/internal/store"
	"srm-service/pkg/config"
	"srm-service/pkg/database"
	"srm-service/pkg/jwtutil"
	"srm-service/pkg/logger"
	"srm-service/pkg/notify"
	"srm-service/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	logger.InitLogger(cfg)
	log := logger.GetLogger()
	log.Info("Starting SRM service...", zap.String("environment", cfg.Server.Env))

	// Initialize JWT utilities
	jwtutil.Initialize(&cfg.JWT)
	log.Info("JWT utilities initialized")

	// Initialize Prometheus metrics
	prometheus.InitMetrics(cfg)
	log.Info("Prometheus metrics initialized")

	// Initialize database and run migrations
	if err := database.InitDB(cfg); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established and migrations completed",
		zap.String("db_host", cfg.DB.Host),
		zap.String("db_name", cfg.DB.DBName))

	// Wire the authorization and lifecycle core
	st := store.NewGorm(database.GetDB())
	identity := service.NewIdentity(st)
	menus := service.NewMenuResolver(st, identity)
	gate := service.NewGate(identity, menus)

	var notifier service.Notifier = service.NopNotifier{}
	if client := notify.New(&cfg.Notify); client != nil {
		notifier = client
		log.Info("Notification collaborator configured", zap.String("base_url", cfg.Notify.BaseURL))
	}

	lifecycle := service.NewLifecycle(st, notifier, log)
	reputation := service.NewReputation(st)
	roles := service.NewRoles(st)
	library := service.NewLibrary(st, identity)
	dispatcher := handler.NewDispatcher(gate, menus, lifecycle, reputation, roles, library)

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)

	// Request logging middleware
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			// Process request
			err := next(c)

			// Calculate duration
			duration := time.Since(start).Seconds()
			status := c.Response().Status

			// Log request details
			log := logger.FromContext(c)
			log.Info("HTTP Request",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.Int("status", status),
				zap.Float64("duration_s", duration),
				zap.String("ip", c.RealIP()),
			)

			prometheus.HttpRequestsTotal.WithLabelValues(
				c.Request().Method,
				c.Request().URL.Path,
				strconv.Itoa(status),
			).Inc()

			prometheus.HttpRequestDuration.WithLabelValues(
				c.Request().Method,
				c.Request().URL.Path,
				strconv.Itoa(status),
			).Observe(duration)

			return err
		}
	})

	// Public routes that don't require authentication
	e.GET("/", handler.Hello)
	e.GET("/health", handler.Hello)

	// Prometheus metrics endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// The action-dispatch boundary; everything behind it requires a
	// valid principal token.
	api := e.Group("/api")
	api.Use(middleware.AuthMiddleware)
	api.POST("/actions", dispatcher.Dispatch)

	// Start server
	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
