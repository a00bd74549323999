// Command directions serves the routing API on a gorilla/mux router.
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

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", os.Getenv("ROUTE_CONFIG"), "Path to a config file")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using default environment variables")
	}

	if err := run(*configPath); err != nil {
		log.Fatalf("Directions server stopped: %v", err)
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := observability.NewMetrics()
	components, err := bootstrap.Build(ctx, cfg, logger, metrics)
	if err != nil {
		logger.Error("Failed to set up geometry source", zap.Error(err))
		return err
	}
	defer components.Close()
	components.Warm(ctx, logger)

	r := mux.NewRouter()
	r.Use(handlers.RequestID, handlers.Logging(logger))
	handlers.NewDirectionsHandler(components.Service, logger).RegisterRoutes(r)
	r.Handle("/metrics", metrics.Handler()).Methods("GET")

	logger.Info("Directions server running", zap.String("address", cfg.Server.Address))
	srv := bootstrap.NewServer(cfg.Server.Address, r)
	if err := bootstrap.Serve(ctx, srv, logger, bootstrap.ShutdownTimeout); err != nil {
		logger.Error("Server stopped", zap.Error(err))
		return err
	}
	return nil
}
