// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storelab/inventory-backend/internal/config"
	"github.com/storelab/inventory-backend/internal/handlers"
	"github.com/storelab/inventory-backend/internal/middleware"
	"github.com/storelab/inventory-backend/internal/services"
)

func Initialize(cfg *config.Config, ledger *services.LedgerService) *gin.Engine {
	// Initialize handlers
	inventoryHandler := handlers.NewInventoryHandler(ledger, cfg.Inventory.RestockApprovalDelay)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.Use(middleware.GeneralRateLimit())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// Product color images
	r.Static("/images", cfg.Server.ImagesDir)

	// API routes
	api := r.Group("/api")
	{
		api.GET("/products", inventoryHandler.GetProducts)
		api.GET("/products/:id/movements", inventoryHandler.GetMovements)
		api.GET("/inventory", inventoryHandler.GetInventory)

		// Mutations get a tighter rate limit
		write := api.Group("")
		write.Use(middleware.WriteRateLimit())
		{
			write.POST("/products/sell", inventoryHandler.TestSell)
			write.POST("/products/restock", inventoryHandler.RequestRestock)
			write.POST("/sell", inventoryHandler.Sell)
		}
	}

	return r
}
