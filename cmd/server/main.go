package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/garyjia/procure-indent/internal/application/service"
	"github.com/garyjia/procure-indent/internal/config"
	"github.com/garyjia/procure-indent/internal/document"
	"github.com/garyjia/procure-indent/internal/domain/workflow"
	"github.com/garyjia/procure-indent/internal/infrastructure/persistence/repository"
	"github.com/garyjia/procure-indent/internal/infrastructure/persistence/sqlite"
	httpserver "github.com/garyjia/procure-indent/internal/interfaces/http"
	"github.com/garyjia/procure-indent/internal/worker"
	"github.com/garyjia/procure-indent/pkg/database"
	"github.com/garyjia/procure-indent/pkg/utils"
)

func main() {
	// Load .env if present; real environment wins
	_ = gotenv.Load()

	// Load configuration
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Procurement Indent Workflow System",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	// Initialize database
	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Create necessary directories
	if err := os.MkdirAll(cfg.Documents.OutputDir, 0755); err != nil {
		logger.Fatal("Failed to create output directory", zap.Error(err))
	}

	// Build the approval ladder and SLA windows from configuration
	stages, err := cfg.StageTable()
	if err != nil {
		logger.Fatal("Invalid approval stage configuration", zap.Error(err))
	}
	slaHours, err := cfg.SLAHours()
	if err != nil {
		logger.Fatal("Invalid SLA configuration", zap.Error(err))
	}
	slaClock := workflow.NewSLAClock(slaHours)

	// Initialize repositories
	txManager := sqlite.NewDB(db.DB, logger)
	indentRepo := repository.NewIndentRepository(db.DB, logger)
	approvalRepo := repository.NewApprovalRepository(db.DB, logger)
	vendorRepo := repository.NewVendorRepository(db.DB, logger)
	poRepo := repository.NewPurchaseOrderRepository(db.DB, logger)
	notificationRepo := repository.NewNotificationRepository(db.DB, logger)

	// Initialize services
	sugar := utils.NewSugaredLogger(logger)
	notificationService := service.NewNotificationService(notificationRepo, sugar)
	poFormGenerator := document.NewPOFormGenerator(cfg.Documents.OutputDir, cfg.Documents.CompanyName, logger)
	indentService := service.NewIndentService(
		indentRepo,
		approvalRepo,
		vendorRepo,
		poRepo,
		txManager,
		stages,
		slaClock,
		notificationService,
		poFormGenerator,
		sugar,
	)
	vendorService := service.NewVendorService(vendorRepo, sugar)

	// Initialize background workers
	workers := worker.NewManager(logger)
	workers.Register(worker.NewSLAMonitor(
		indentRepo,
		notificationService,
		slaClock,
		cfg.Workflow.MonitorPeriod,
		logger,
	))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := workers.StartAll(ctx); err != nil {
		logger.Fatal("Failed to start background workers", zap.Error(err))
	}
	defer workers.StopAll()

	// Initialize HTTP server
	server := httpserver.NewServer(
		httpserver.ServerConfig{
			Host:         cfg.Server.Host,
			Port:         cfg.Server.Port,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		indentService,
		vendorService,
		notificationService,
		sugar,
	)

	// Start server in a goroutine
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start(ctx)
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("Shutting down server...", zap.String("signal", sig.String()))
		cancel()
		<-serverErr
	case err := <-serverErr:
		if err != nil {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}

	logger.Info("Server exited successfully")
}
