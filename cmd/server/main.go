package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	config "github.com/avatarctic/erp-cache/configs"
	"github.com/avatarctic/erp-cache/internal/application/services"
	"github.com/avatarctic/erp-cache/internal/core/domain/cache"
	"github.com/avatarctic/erp-cache/internal/core/ports"
	"github.com/avatarctic/erp-cache/internal/infrastructure/db"
	"github.com/avatarctic/erp-cache/internal/infrastructure/health"
	"github.com/avatarctic/erp-cache/internal/infrastructure/httpserver"
	"github.com/avatarctic/erp-cache/internal/infrastructure/memory"
	"github.com/avatarctic/erp-cache/internal/infrastructure/redis"
	"github.com/avatarctic/erp-cache/internal/infrastructure/repositories"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	logger := newLogger(cfg.Log)
	logger.Info("Starting ERP cache service...")

	ctx := context.Background()

	database, err := db.NewDatabase(ctx, &cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database:", err)
	}
	defer database.Close()

	logger.Info("Connected to database successfully")

	if err := database.Migrate(cfg.Database.MigrationsPath); err != nil {
		logger.Warn("Failed to run migrations:", err)
	}

	// The remote store is attempted once; the connection keeps its handle for probes and shutdown.
	redisConn := redis.NewConnection(&cfg.Redis, logger)

	cacheManager := services.NewCacheManager(ctx, redisConn.Connect, memory.NewStore(), services.CacheManagerOptions{
		Policy:      cache.NewPolicy(cfg.Cache.TTLOverrides),
		StatsSample: cfg.Cache.StatsSample,
		Metrics:     services.NewCacheMetrics(prometheus.DefaultRegisterer),
	}, logger)
	remote := redisConn.Store()
	if remote != nil {
		defer remote.Close()
	}

	dashboardRepo := repositories.NewDashboardRepository(database, logger)
	productRepo := repositories.NewProductRepository(database, logger)
	reportRepo := repositories.NewReportRepository(database, logger)

	dashboardService := services.NewDashboardService(dashboardRepo, cacheManager, logger)
	catalogService := services.NewCatalogService(productRepo, cacheManager, logger)
	reportService := services.NewReportService(reportRepo, cacheManager, services.NewCoalescingLoader(), logger)

	var pinger health.Pinger
	if remote != nil {
		pinger = remote
	}
	hcSlice := []ports.HealthChecker{
		health.NewDBHealthChecker(database),
		health.NewCacheHealthChecker(cacheManager, pinger),
	}

	serverConfig := &httpserver.ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		TLSCertFile:    cfg.Server.TLSCertFile,
		TLSKeyFile:     cfg.Server.TLSKeyFile,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Environment:    cfg.Server.Environment,
	}

	deps := httpserver.ServerDeps{
		DashboardService: dashboardService,
		CatalogService:   catalogService,
		ReportService:    reportService,
		CacheService:     cacheManager,
		HealthCheckers:   hcSlice,
	}

	server := httpserver.NewServer(serverConfig, logger, deps)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("Failed to start server:", err)
		}
	}()

	logger.Infof("Server started on %s:%s", cfg.Server.Host, cfg.Server.Port)

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}

func newLogger(cfg config.LogConfig) *logrus.Logger {
	logger := logrus.New()
	if cfg.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(level)
	}
	return logger
}
