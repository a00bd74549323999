package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"road-route-server/bootstrap"
	"road-route-server/config"
	"road-route-server/handlers"
	"road-route-server/observability"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", os.Getenv("ROUTE_CONFIG"), "Path to a YAML/JSON/TOML config file")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using default environment variables")
	}

	if err := run(*configPath); err != nil {
		log.Fatalf("Road route server stopped: %v", err)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logger, err := observability.NewLogger(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	components, err := bootstrap.Build(ctx, cfg, logger, metrics)
	if err != nil {
		logger.Error("Failed to set up geometry source", zap.Error(err))
		return err
	}
	defer components.Close()
	components.Warm(ctx, logger)

	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(handlers.GinRequestID())
	r.Use(handlers.GinLogger(logger))

	corsConfig := cors.DefaultConfig()
	if len(cfg.Server.CORSOrigins) == 0 || cfg.Server.CORSOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.Server.CORSOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", handlers.RequestIDHeader}
	r.Use(cors.New(corsConfig))

	handler := handlers.NewRouteHandler(components.Service, components.Snapshots, components.Source.Name(), logger)
	handler.RegisterRoutes(r)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	logger.Info("Road route server starting",
		zap.String("address", cfg.Server.Address),
		zap.String("source", cfg.Source.Kind),
		zap.Bool("graph_cache", cfg.Cache.Enabled),
	)
	srv := bootstrap.NewServer(cfg.Server.Address, r)
	if err := bootstrap.Serve(ctx, srv, logger, bootstrap.ShutdownTimeout); err != nil {
		logger.Error("Server stopped", zap.Error(err))
		return err
	}
	return nil
}
