// Command seed creates a demo user and provisions their wallet.
package main

import (
	"context"
	"log"
	"os"

	"ledgerpay/internal/config"
	"ledgerpay/internal/models"
	"ledgerpay/internal/repositories"
	"ledgerpay/internal/services/ledger"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	config.LoadEnv()

	email := os.Getenv("SEED_EMAIL")
	password := os.Getenv("SEED_PASSWORD")
	if email == "" || password == "" {
		log.Fatal("SEED_EMAIL and SEED_PASSWORD must be set in environment")
	}
	currency := os.Getenv("SEED_CURRENCY")

	if err := repositories.InitDB(); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer func() {
		if repositories.DB != nil {
			if sqlDB, err := repositories.DB.DB(); err == nil {
				if err := sqlDB.Close(); err != nil {
					log.Printf("Failed to close PostgreSQL connection: %v", err)
				}
			}
		}
	}()

	var existing models.User
	if err := repositories.DB.Where("email = ?", email).First(&existing).Error; err == nil {
		log.Println("Seed user already exists")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("Failed to hash password:", err)
	}

	user := models.User{
		Email:    email,
		Password: string(hashedPassword),
		Name:     "Seed User",
	}
	if err := repositories.DB.Create(&user).Error; err != nil {
		log.Fatal("Failed to create seed user:", err)
	}

	walletRepo := repositories.NewWalletRepository(repositories.DB)
	userRepo := repositories.NewUserRepository(repositories.DB, nil)
	ledgerService := ledger.NewService(walletRepo, userRepo, nil, nil, ledger.Config{}, nil)

	descriptor, err := ledgerService.ProvisionWallet(context.Background(), user.ID, currency)
	if err != nil {
		log.Fatal("Failed to provision wallet:", err)
	}

	log.Printf("Seed user %d created with wallet %d (%s)", user.ID, descriptor.WalletID, descriptor.Currency)
}
