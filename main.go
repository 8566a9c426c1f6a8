package main

import (
	"context"
	"fmt"
	"os"

	"course_sales/api"
	"course_sales/internal/config"
	"course_sales/internal/database"
	"course_sales/internal/legacy"
	"course_sales/internal/metrics"
	"course_sales/internal/sales"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	os.Exit(serve())
}

// serve returns the process exit code once every deferred cleanup in run has finished.
func serve() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		return 1
	}

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error building logger: %v\n", err)
		return 1
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", zap.Error(err))
		return 1
	}
	return 0
}

func run(cfg *config.Config, logger *zap.Logger) error {
	verifier, err := sales.NewVerifier(cfg.StripeWebhookSecret)
	if err != nil {
		return err
	}

	db, err := database.Open(cfg.DatabaseDSN, logger, sales.Models()...)
	if err != nil {
		return err
	}
	defer database.Close(db)

	var legacyStore legacy.Store
	if cfg.LegacyEnabled() {
		client, mongoDB, err := legacy.Connect(context.Background(), cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return err
		}
		defer client.Disconnect(context.Background())
		legacyStore = legacy.NewMongoStore(mongoDB, cfg.MongoCollection)
	} else {
		logger.Warn("MONGO_URI not set, legacy mirror disabled")
	}

	registry := prometheus.NewRegistry()
	webhookMetrics := metrics.NewWebhookMetrics(registry)
	salesService := sales.NewService(sales.NewGormStorage(db), legacyStore, logger).WithMetrics(webhookMetrics)

	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	api.InitRoutes(r, salesService, verifier, webhookMetrics, logger)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	logger.Info("starting server", zap.String("port", cfg.Port))
	return r.Run(":" + cfg.Port)
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.IsDev() {
		zcfg = zap.NewDevelopmentConfig()
	}
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	zcfg.Level = level
	return zcfg.Build()
}
