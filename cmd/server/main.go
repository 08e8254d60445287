package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/protein-atlas-server/internal/api"
	"github.com/protein-atlas-server/internal/config"
	"github.com/protein-atlas-server/internal/history"
	"github.com/protein-atlas-server/internal/service"
	"github.com/protein-atlas-server/pkg/external"
)

func main() {
	// Load configuration
	configManager, err := config.NewManager()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	if err := configManager.Validate(); err != nil {
		logrus.Fatalf("Configuration validation failed: %v", err)
	}

	cfg := configManager.GetConfig()
	logger := newLogger(cfg.Logging.Level, cfg.Logging.Format)

	// External source adapters
	apiCfg := cfg.ExternalAPI
	uniprotClient := external.NewUniProtClient(apiCfg.UniProt, logger)
	ncbiClient := external.NewNCBIClient(apiCfg.NCBI, logger)
	structureClient, err := external.NewStructureClient(apiCfg.Structure, logger)
	if err != nil {
		logger.Fatalf("Failed to create structure client: %v", err)
	}
	stringClient := external.NewStringDBClient(apiCfg.String, logger)
	diseaseDrugClient := external.NewDiseaseDrugClient(apiCfg.DiseaseDrug, logger)

	// Core services
	cache := service.NewQueryCache()
	reconciler := service.NewReconciler(
		uniprotClient,
		ncbiClient,
		ncbiClient,
		structureClient,
		stringClient,
		diseaseDrugClient,
		cache,
		logger,
	)
	chat := service.NewChatFormatter()

	historyStore, err := history.NewSQLiteStore(cfg.History.DBPath)
	if err != nil {
		logger.Fatalf("Failed to open history store: %v", err)
	}
	defer historyStore.Close()

	server := api.NewServer(cfg, reconciler, chat, historyStore, logger)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	logger.WithFields(logrus.Fields{
		"host": cfg.Server.Host,
		"port": cfg.Server.Port,
	}).Info("Starting protein atlas server")

	if err := server.Start(ctx); err != nil {
		logger.Fatalf("Server failed: %v", err)
	}

	logger.Info("Server stopped")
}

// newLogger builds the process logger from the logging configuration.
func newLogger(level, format string) *logrus.Logger {
	logger := logrus.New()

	parsed, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)

	if strings.ToLower(format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return logger
}
