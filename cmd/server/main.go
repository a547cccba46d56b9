// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/storelab/inventory-backend/internal/config"
	"github.com/storelab/inventory-backend/internal/database"
	"github.com/storelab/inventory-backend/internal/events"
	"github.com/storelab/inventory-backend/internal/router"
	"github.com/storelab/inventory-backend/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Configure logging
	if cfg.Environment == "production" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := database.Initialize(cfg.Database)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer database.Close(db)

	// Run database migrations
	if err := database.RunMigrations(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// Seed the catalog on first run
	if err := database.SeedInitialData(db); err != nil {
		log.Fatal("Failed to seed initial data:", err)
	}

	// Select the event publisher
	var publisher events.Publisher
	if cfg.Pusher.Enabled {
		publisher = events.NewAsyncPublisher(events.NewPusherPublisher(cfg.Pusher))
	} else {
		publisher = events.NewLogPublisher()
	}

	// Wire the stock lifecycle engine
	clk := clock.New()
	ledger := services.NewLedgerService(db, publisher, cfg.Inventory)
	workflow := services.NewRestockService(db, ledger, clk, cfg.Inventory.RestockApprovalDelay)
	ledger.SetWorkflow(workflow)

	// Re-arm approval timers for restocks interrupted by a restart
	if err := workflow.Recover(); err != nil {
		log.Fatal("Failed to recover pending restocks:", err)
	}

	// Start the auto-sell scheduler
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Inventory.AutoSellEnabled {
		scheduler := services.NewSchedulerService(db, ledger, clk, cfg.Inventory.AutoSellInterval)
		go scheduler.Run(ctx)
	}

	// Initialize router
	r := router.Initialize(cfg, ledger)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server:", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Stop background work: the scheduler loop and in-flight approval
	// timers. Recovery on the next start picks the timers back up.
	cancel()
	workflow.Shutdown()

	// Create a deadline for shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Shutdown server
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
