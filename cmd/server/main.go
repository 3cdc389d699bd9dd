package main

import (
	"context"
	"fmt"
	"log"

	"github.com/tmcfarlane/payables-booking-service/internal/config"
	"github.com/tmcfarlane/payables-booking-service/internal/database"
	"github.com/tmcfarlane/payables-booking-service/internal/handler"
	"github.com/tmcfarlane/payables-booking-service/internal/repository"
	"github.com/tmcfarlane/payables-booking-service/internal/server"
	"github.com/tmcfarlane/payables-booking-service/internal/service"
	"github.com/tmcfarlane/payables-booking-service/internal/storage"
	"github.com/tmcfarlane/payables-booking-service/internal/xero"
)

// @title Payables Booking Service API
// @version 1.0
// @description Books AI-extracted supplier invoices as draft bills in Xero, resolving expense categories to ledger accounts.
// @BasePath /
func main() {
	// Load configuration
	log.Println("Loading configuration...")
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize the Xero client stack
	tokens := xero.NewTokenStore(xero.TokenStoreConfig{
		TokenPath:    cfg.TokenFile,
		TenantPath:   cfg.TenantFile,
		ClientID:     cfg.XeroClientID,
		ClientSecret: cfg.XeroClientSecret,
		TokenURL:     cfg.XeroTokenURL,
		Timeout:      cfg.XeroTimeout,
	})
	client := xero.NewClient(xero.ClientConfig{
		BaseURL: cfg.XeroBaseURL,
		Tokens:  tokens,
		Timeout: cfg.XeroTimeout,
	})
	accounts := xero.NewAccountResolver(client)
	taxRates := xero.NewTaxRateResolver(client)

	// Create the booking service
	log.Println("Creating booking service...")
	bookingService := service.NewBookingService(client, accounts, taxRates, service.NewFuzzyCategorizer())

	// Optional booking audit log
	var auditRepo repository.BookingRepository
	if cfg.DatabaseURL != "" {
		log.Println("Connecting to audit database...")
		db, err := database.NewPostgresDB(context.Background(), cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		auditRepo = repository.NewPostgresBookingRepository(db.Pool())
		bookingService.SetRepository(auditRepo)
	}

	// Optional source PDF archive
	if cfg.S3AccessKeyID != "" && cfg.S3AccessKeySecret != "" {
		archive, err := storage.NewPDFArchiver(&storage.Config{
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			AccessKeySecret: cfg.S3AccessKeySecret,
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
		})
		if err != nil {
			log.Printf("Warning: PDF archive disabled: %v", err)
		} else {
			bookingService.SetArchive(archive)
		}
	}

	// Create handlers
	bookingHandler := handler.NewBookingHandler(bookingService)
	accountHandler := handler.NewAccountHandler(accounts)

	// Create and configure server
	log.Println("Configuring server...")
	appServer := server.NewServer(cfg, bookingHandler, accountHandler)
	if auditRepo != nil {
		handler.NewHistoryHandler(auditRepo).RegisterRoutes(appServer.Router())
	}

	// Start server (blocking call)
	log.Printf("Starting server on port %d...", cfg.Port)
	if err := appServer.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}

	fmt.Println("Server shutdown complete")
}
