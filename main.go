package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/amirphl/mini-crm/app/handlers"
	"github.com/amirphl/mini-crm/app/logger"
	"github.com/amirphl/mini-crm/app/router"
	"github.com/amirphl/mini-crm/app/scheduler"
	"github.com/amirphl/mini-crm/app/services"
	businessflow "github.com/amirphl/mini-crm/business_flow"
	"github.com/amirphl/mini-crm/config"
	"github.com/amirphl/mini-crm/repository"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var envFile string

type Application struct {
	router    *router.FiberRouter
	config    *config.ProductionConfig
	logger    *zap.Logger
	db        *gorm.DB
	stopFuncs []func()
}

func main() {
	root := &cobra.Command{
		Use:          "mini-crm",
		Short:        "Mini CRM backend: customers, orders and email campaigns",
		SilenceUsage: true,
		RunE:         runServe,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "optional .env file; process environment wins")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE:  runServe,
	})
	root.AddCommand(newMigrateCommand())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.ProductionConfig, *zap.Logger, error) {
	cfg, err := config.LoadProductionConfig(envFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := config.ValidateProductionConfig(cfg); err != nil {
		return nil, nil, err
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return cfg, log, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	app, err := initializeApplication(cfg, log)
	if err != nil {
		log.Error("failed to initialize application", zap.Error(err))
		return err
	}

	app.router.SetupRoutes()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Dispatch.SweepInterval > 0 {
		sweeper := scheduler.NewDispatchSweeper(repository.NewCampaignRepository(app.db),
			cfg.Dispatch.SweepInterval, cfg.Dispatch.StaleAfter, log)
		app.stopFuncs = append(app.stopFuncs, sweeper.Start(ctx))
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- app.router.Start(cfg.Server.Address())
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			log.Error("server stopped unexpectedly", zap.Error(err))
			return err
		}
	case <-ctx.Done():
		log.Info("shutting down gracefully")
	}

	for _, fn := range app.stopFuncs {
		fn()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := app.router.Shutdown(shutdownCtx); err != nil {
		log.Error("error during shutdown", zap.Error(err))
	}
	if sqlDB, err := app.db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	log.Info("server stopped")
	return nil
}

// initializeDatabase opens the pool without requiring the database to be reachable, so the
// health probe keeps answering while storage is down
func initializeDatabase(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
		Logger: gormlogger.New(zap.NewStdLog(log.Named("gorm")), gormlogger.Config{
			SlowThreshold:             cfg.SlowQueryTime,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		log.Warn("database not reachable at startup", zap.Error(err))
	} else {
		log.Info("database connection established",
			zap.Int("max_open_conns", cfg.MaxOpenConns),
			zap.Int("max_idle_conns", cfg.MaxIdleConns))
	}

	return db, nil
}

// initializeMailService picks the configured provider. Missing credentials leave the
// transport unconfigured rather than failing startup.
func initializeMailService(cfg *config.ProductionConfig, log *zap.Logger) services.MailService {
	var provider services.EmailProvider

	switch {
	case cfg.Email.Provider == "mock":
		provider = services.NewMockEmailProvider(log)
	case !cfg.Email.Configured():
		log.Warn("email transport not configured, every send will fail", zap.String("provider", cfg.Email.Provider))
	case cfg.Email.Provider == "ses":
		ses, err := services.NewSESEmailProvider(context.Background(), cfg.Email.SESRegion,
			cfg.Email.SESAccessKeyID, cfg.Email.SESSecretAccessKey, cfg.Email.FromName, cfg.Email.SESConfigurationSet)
		if err != nil {
			log.Error("failed to initialize SES provider", zap.Error(err))
		} else {
			provider = ses
		}
	default:
		provider = services.NewSMTPEmailProvider(cfg.Email.Host, cfg.Email.Port, cfg.Email.Secure,
			cfg.Email.Username, cfg.Email.Password, cfg.Email.FromName)
	}

	return services.NewMailService(provider, cfg.Email.FromEmail, log)
}

func initializeApplication(cfg *config.ProductionConfig, log *zap.Logger) (*Application, error) {
	db, err := initializeDatabase(cfg.Database, log)
	if err != nil {
		return nil, err
	}

	customerRepo := repository.NewCustomerRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	campaignRepo := repository.NewCampaignRepository(db)
	communicationRepo := repository.NewCommunicationRepository(db)
	userRepo := repository.NewUserRepository(db)

	mailer := initializeMailService(cfg, log)
	verifier := services.NewGoogleIdentityVerifier(cfg.Google.ClientID)
	if cfg.Google.ClientID == "" {
		log.Warn("GOOGLE_CLIENT_ID not set, google login will reject every token")
	}

	customerFlow := businessflow.NewCustomerFlow(customerRepo, log)
	orderFlow := businessflow.NewOrderFlow(orderRepo, customerRepo, log)
	campaignFlow := businessflow.NewCampaignFlow(
		campaignRepo,
		customerRepo,
		communicationRepo,
		mailer,
		cfg.Dispatch,
		log,
	)
	communicationFlow := businessflow.NewCommunicationFlow(communicationRepo, campaignRepo, customerRepo, log)
	authFlow := businessflow.NewAuthFlow(verifier, userRepo, log)
	emailFlow := businessflow.NewEmailFlow(mailer, cfg.Environment, log)

	appRouter := router.NewFiberRouter(cfg, router.Handlers{
		Health:        handlers.NewHealthHandler(cfg.Environment),
		Auth:          handlers.NewAuthHandler(authFlow),
		Customer:      handlers.NewCustomerHandler(customerFlow),
		Order:         handlers.NewOrderHandler(orderFlow),
		Campaign:      handlers.NewCampaignHandler(campaignFlow),
		Communication: handlers.NewCommunicationHandler(communicationFlow),
		Email:         handlers.NewEmailHandler(emailFlow),
	}, log)

	return &Application{
		router: appRouter,
		config: cfg,
		logger: log,
		db:     db,
	}, nil
}
