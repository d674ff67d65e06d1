package main

import (
	"context"
	"fmt"
	"log" // Use standard log only for initial fatal errors before logger is set up
	"os"
	"os/signal"
	"syscall"

	"intradayProcessor/config"
	"intradayProcessor/internal/adapters/barfile"
	"intradayProcessor/internal/adapters/binanceclient"
	"intradayProcessor/internal/adapters/logger"
	"intradayProcessor/internal/adapters/sqlite"
	"intradayProcessor/internal/app"
	"intradayProcessor/internal/ports"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Initialize Logger
	appLogger, err := logger.NewZapLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()
	appLogger.Info(context.Background(), "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String()})

	// Cancel in-flight fetches on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Initialize Repository (Database Adapter)
	repo, err := sqlite.NewRepository(sqlite.Config{
		DBPath: cfg.DBPath,
		Logger: appLogger,
	})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize database repository")
		log.Fatalf("FATAL: Failed to initialize database repository: %v", err) // Also log to stderr
	}
	defer func() {
		if err := repo.Close(); err != nil {
			appLogger.Error(context.Background(), err, "Error closing database repository")
		}
	}()
	appLogger.Info(ctx, "Database repository initialized")

	// 4. Initialize Bar Provider
	provider, err := newProvider(cfg, appLogger)
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize bar provider")
		log.Fatalf("FATAL: Failed to initialize bar provider: %v", err)
	}
	appLogger.Info(ctx, "Bar provider initialized", map[string]interface{}{"source": cfg.DataSource})

	// 5. Initialize Application Service
	processor, err := app.NewProcessorService(cfg, appLogger, provider, repo)
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize processor service")
		log.Fatalf("FATAL: Failed to initialize processor service: %v", err)
	}

	// 6. Process the configured session
	batch, err := processor.ProcessSessions(ctx, cfg.Symbols, cfg.SessionDate)
	fmt.Println(batch.CombinedText())
	if err != nil {
		appLogger.Error(context.Background(), err, "Processing interrupted")
		_ = appLogger.Sync()
		os.Exit(1)
	}

	appLogger.Info(context.Background(), "Application finished gracefully.", map[string]interface{}{"runID": batch.RunID})
}

// newProvider builds the bar provider named by DATA_SOURCE.
func newProvider(cfg *config.Config, appLogger ports.Logger) (ports.BarProvider, error) {
	switch cfg.DataSource {
	case config.SourceCSV:
		return barfile.NewCSVProvider(cfg.DataDir, appLogger), nil
	case config.SourceParquet:
		return barfile.NewParquetProvider(cfg.DataDir, appLogger), nil
	default:
		return binanceclient.New(binanceclient.Config{
			APIKey:      cfg.APIKey,
			SecretKey:   cfg.SecretKey,
			UseTestnet:  cfg.IsTestnet,
			Logger:      appLogger,
			RetryDelay:  cfg.FetchRetryDelay,
			MaxAttempts: cfg.FetchMaxAttempts,
		})
	}
}
