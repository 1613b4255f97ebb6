// internal/app.go
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jmoiron/sqlx"

	router "custody-wallet/internal/api"
	"custody-wallet/internal/api/handler"
	apimw "custody-wallet/internal/api/middleware"
	"custody-wallet/internal/config"
	"custody-wallet/internal/notify"
	"custody-wallet/internal/repository"
	"custody-wallet/internal/repository/dynamo"
	"custody-wallet/internal/repository/postgres"
	"custody-wallet/internal/service"
	"custody-wallet/internal/util"
	"custody-wallet/pkg/db"
)

// Application holds all the initialized components of the application.
type Application struct {
	Config *config.AppConfig
	Logger *slog.Logger
	DB     *sqlx.DB

	// Repositories
	WalletRepository      repository.WalletRepository
	TransactionRepository repository.TransactionRepository
	PaymentRepository     repository.PaymentRepository
	SummaryRepository     repository.SummaryRepository

	Publisher notify.Publisher

	// Services
	TransferService service.TransferService
	ApprovalService service.ApprovalService
	SummaryService  service.SummaryService

	// HTTP API
	Authenticator *apimw.Authenticator
	HTTPHandler   http.Handler

	awsConfig *aws.Config
}

// NewApplication creates a new Application instance.
func NewApplication() *Application {
	return &Application{}
}

// Initialize loads configuration from the environment and initializes all
// application components.
func (app *Application) Initialize(ctx context.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	return app.InitializeWithConfig(ctx, cfg)
}

// InitializeWithConfig initializes all application components from cfg.
func (app *Application) InitializeWithConfig(ctx context.Context, cfg *config.AppConfig) error {
	// 1. Configuration and logger
	app.Config = cfg
	util.InitLogger(cfg.LogLevel)
	app.Logger = util.GetLogger()
	app.Logger.Info("Application configuration loaded successfully.", "db_driver", cfg.DB.Driver, "summary_store", cfg.SummaryStore)

	// 2. Connect to Database
	database, err := db.Open(app.Config.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = database
	app.Logger.Info("Database connection established.")

	if app.Config.AutoMigrate {
		if err := db.Migrate(ctx, app.DB); err != nil {
			return err
		}
		app.Logger.Info("Database schema applied.")
	}

	// 3. Initialize Repositories
	app.WalletRepository = postgres.NewWalletRepository(app.DB)
	app.TransactionRepository = postgres.NewTransactionRepository(app.DB)
	app.PaymentRepository = postgres.NewPaymentRepository(app.DB)
	switch app.Config.SummaryStore {
	case config.SummaryStoreDynamoDB:
		awsCfg, err := app.loadAWSConfig(ctx)
		if err != nil {
			return err
		}
		app.SummaryRepository = dynamo.NewSummaryStore(dynamodb.NewFromConfig(awsCfg), app.Config.SummaryTable)
	default:
		app.SummaryRepository = postgres.NewSummaryRepository(app.DB)
	}
	app.Logger.Info("Repositories initialized.")

	// 4. Event publisher
	if app.Config.EventQueueURL != "" {
		awsCfg, err := app.loadAWSConfig(ctx)
		if err != nil {
			return err
		}
		app.Publisher = notify.NewSQSPublisher(sqs.NewFromConfig(awsCfg), app.Config.EventQueueURL)
	} else {
		app.Publisher = notify.NewLogPublisher(app.Logger)
	}

	// 5. Initialize Services
	txFuncs := service.DefaultTxFuncs()
	mutator := service.NewBalanceMutator(app.WalletRepository)
	app.TransferService = service.NewTransferService(
		app.DB, // This is the DBTxBeginner
		app.DB, // This is the DBExecutor
		app.WalletRepository,
		app.TransactionRepository,
		mutator,
		app.Config.Threshold,
		app.Publisher,
		txFuncs,
		app.Logger,
	)
	app.ApprovalService = service.NewApprovalService(
		app.DB,
		app.DB,
		app.TransactionRepository,
		mutator,
		app.Publisher,
		txFuncs,
		app.Logger,
	)
	app.SummaryService = service.NewSummaryService(app.DB, app.PaymentRepository, app.SummaryRepository, app.Logger)
	app.Logger.Info("Services initialized.", "settlement_threshold", app.Config.Threshold.String())

	// 6. Initialize HTTP Handlers and Router
	app.Authenticator = apimw.NewAuthenticator(app.Config.JWTSecret)
	app.HTTPHandler = router.NewRouter(router.RouterConfig{
		TransferHandler: handler.NewTransferHandler(app.TransferService, app.Logger),
		AdminHandler:    handler.NewAdminHandler(app.ApprovalService, app.SummaryService, app.Logger),
		Authenticator:   app.Authenticator,
		AllowedOrigins:  app.Config.CORSOrigins,
		Logger:          app.Logger,
	})
	app.Logger.Info("HTTP router and handlers initialized.")

	return nil
}

func (app *Application) loadAWSConfig(ctx context.Context) (aws.Config, error) {
	if app.awsConfig != nil {
		return *app.awsConfig, nil
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return aws.Config{}, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}
	app.awsConfig = &cfg
	return cfg, nil
}

// Shutdown gracefully shuts down application resources.
func (app *Application) Shutdown(ctx context.Context) error {
	app.Logger.Info("Shutting down application...")
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			app.Logger.Error("Failed to close database connection", "error", err)
			return fmt.Errorf("failed to close database connection: %w", err)
		}
		app.Logger.Info("Database connection closed.")
	}
	app.Logger.Info("Application shut down gracefully.")
	return nil
}
