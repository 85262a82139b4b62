// Package routes defines the API routing configuration.
// It sets up all HTTP routes and their corresponding handlers,
// including middleware and authentication requirements.
package routes

import (
	"strings"

	"ledgerpay/internal/config"
	"ledgerpay/internal/events"
	kafkaevents "ledgerpay/internal/events/kafka"
	"ledgerpay/internal/handlers"
	"ledgerpay/internal/middleware"
	"ledgerpay/internal/repositories"
	"ledgerpay/internal/services/auth"
	"ledgerpay/internal/services/ledger"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SetupRoutes configures all application routes and wires the service graph.
// It returns the ledger service so the caller can run maintenance loops.
func SetupRoutes(app *fiber.App, db *gorm.DB) ledger.Service {
	walletRepo := repositories.NewWalletRepository(db)
	userRepo := repositories.NewUserRepository(db, repositories.CacheService)

	var publisher events.Publisher = events.NoopPublisher{}
	if brokers := config.GetEnv("KAFKA_BROKERS", ""); brokers != "" {
		publisher = kafkaevents.NewPublisher(strings.Split(brokers, ","))
	}

	ledgerService := ledger.NewService(
		walletRepo,
		userRepo,
		repositories.CacheService,
		publisher,
		ledger.Config{},
		&ledger.NoopMetricsCollector{},
	)
	authService := auth.NewService(userRepo)

	walletHandler := handlers.NewWalletHandler(ledgerService)
	authHandler := handlers.NewAuthHandler(authService)

	app.Get("/health", handlers.HealthCheck)

	api := app.Group("/api")

	// Public endpoints (no auth required)
	api.Post("/register", authHandler.Register)
	api.Post("/login", authHandler.Login)

	// Authenticated wallet endpoints
	wallet := api.Group("/wallet", middleware.AuthRequired())
	wallet.Post("/", walletHandler.CreateWallet)
	wallet.Post("/credit", walletHandler.Credit)
	wallet.Post("/debit", walletHandler.Debit)
	wallet.Post("/transfer", walletHandler.Transfer)
	wallet.Get("/balance", walletHandler.GetBalance)
	wallet.Get("/ledger", walletHandler.ListEntries)

	return ledgerService
}
