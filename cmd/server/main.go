package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lk2023060901/yt-content-manager/internal/conf"
	"github.com/lk2023060901/yt-content-manager/internal/pkg/injector"
	"github.com/lk2023060901/yt-content-manager/internal/pkg/logger"
	"go.uber.org/zap"
)

var (
	configFile = flag.String("config", "config.yaml", "config file path")
)

func main() {
	flag.Parse()

	// Load configuration
	config, err := conf.LoadConfig(*configFile)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log, err := logger.New(&config.Log)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	logger.SetGlobal(log)

	if err := config.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	log.Info("config loaded successfully",
		zap.String("model", config.Generation.Model),
		zap.String("endpoint", config.Generation.APIEndpoint))

	app, cleanup, err := injector.InitializeApp(config, log)
	if err != nil {
		log.Fatal("failed to initialize app", zap.Error(err))
	}
	defer cleanup()

	go func() {
		if err := app.HTTPServer.Start(); err != nil {
			log.Fatal("failed to start HTTP server", zap.Error(err))
		}
	}()

	if app.GRPCServer.Enabled() {
		go func() {
			if err := app.GRPCServer.Start(); err != nil {
				log.Fatal("failed to start gRPC server", zap.Error(err))
			}
		}()
	}

	log.Info("servers started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down servers...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if app.GRPCServer.Enabled() {
		app.GRPCServer.Stop()
	}

	if err := app.HTTPServer.Stop(ctx); err != nil {
		log.Error("HTTP server forced to shutdown", zap.Error(err))
	}

	log.Info("servers exited")
}
