// internal/handlers/inventory.go
package handlers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/storelab/inventory-backend/internal/models"
	"github.com/storelab/inventory-backend/internal/services"
	"github.com/storelab/inventory-backend/internal/utils"
)

type InventoryHandler struct {
	ledger        *services.LedgerService
	approvalDelay time.Duration
}

type SellRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"omitempty,min=1"`
}

type RestockRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Amount    int       `json:"amount" validate:"required,min=1"`
}

// productView decorates a product with its display image, which is
// derived from the color attribute.
type productView struct {
	models.Product
	Image string `json:"image"`
}

var imageByColor = map[string]string{
	"black": "/images/black.png",
	"blue":  "/images/blue.png",
	"green": "/images/green.png",
	"red":   "/images/red.png",
	"white": "/images/white.png",
}

func NewInventoryHandler(ledger *services.LedgerService, approvalDelay time.Duration) *InventoryHandler {
	return &InventoryHandler{
		ledger:        ledger,
		approvalDelay: approvalDelay,
	}
}

// GET /api/products
func (h *InventoryHandler) GetProducts(c *gin.Context) {
	products, err := h.ledger.ListProducts()
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	views := make([]productView, 0, len(products))
	for _, p := range products {
		views = append(views, productView{Product: p, Image: imageForColor(p.Color)})
	}

	utils.SuccessResponse(c, gin.H{
		"products": views,
	})
}

// GET /api/inventory
func (h *InventoryHandler) GetInventory(c *gin.Context) {
	products, err := h.ledger.ListProducts()
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	type inventoryRow struct {
		ID            uuid.UUID `json:"id"`
		Name          string    `json:"name"`
		StockQuantity int       `json:"stock_quantity"`
	}

	rows := make([]inventoryRow, 0, len(products))
	for _, p := range products {
		rows = append(rows, inventoryRow{ID: p.ID, Name: p.Name, StockQuantity: p.StockQuantity})
	}

	utils.SuccessResponse(c, gin.H{
		"inventory": rows,
	})
}

// POST /api/products/sell
//
// Test-sell contract: the quantity is clamped to available stock, so
// the call only fails when the product is already out of stock.
func (h *InventoryHandler) TestSell(c *gin.Context) {
	var req SellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	product, sold, err := h.ledger.SellClamped(req.ProductID, req.Quantity, models.MovementTypeSale)
	if err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			utils.NotFoundResponse(c, "Product not found")
			return
		}
		if errors.Is(err, services.ErrOutOfStock) {
			utils.BadRequestResponse(c, "Product not available or out of stock", nil)
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": fmt.Sprintf("Sold %d units of %s", sold, product.Name),
		"sold":    sold,
		"product": productView{Product: *product, Image: imageForColor(product.Color)},
	})
}

// POST /api/sell
//
// Strict contract: selling more than available is rejected and leaves
// stock unchanged.
func (h *InventoryHandler) Sell(c *gin.Context) {
	var req SellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	newStock, err := h.ledger.Sell(req.ProductID, req.Quantity)
	if err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			utils.NotFoundResponse(c, "Product not found")
			return
		}
		if errors.Is(err, services.ErrInsufficientStock) {
			utils.BadRequestResponse(c, "Not enough stock", nil)
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":   "Product sold!",
		"new_stock": newStock,
	})
}

// POST /api/products/restock
//
// Always responds immediately; the approval happens asynchronously
// after the configured delay.
func (h *InventoryHandler) RequestRestock(c *gin.Context) {
	var req RestockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	if err := h.ledger.RequestRestock(req.ProductID, req.Amount); err != nil {
		switch {
		case errors.Is(err, services.ErrProductNotFound):
			utils.NotFoundResponse(c, "Product not found")
		case errors.Is(err, services.ErrInvalidAmount):
			utils.BadRequestResponse(c, "Restock amount must be positive", nil)
		case errors.Is(err, services.ErrRestockAlreadyPending):
			utils.ConflictResponse(c, "A restock request is already pending for this product")
		default:
			utils.InternalErrorResponse(c, err.Error())
		}
		return
	}

	utils.SuccessResponse(c, gin.H{
		"accepted": true,
		"message":  fmt.Sprintf("Restock request pending. Approval in %s.", h.approvalDelay),
	})
}

// GET /api/products/:id/movements
func (h *InventoryHandler) GetMovements(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product ID", nil)
		return
	}

	params := utils.GetPaginationParams(c)

	movements, total, err := h.ledger.GetMovements(productID, params.Offset(), params.Limit)
	if err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			utils.NotFoundResponse(c, "Product not found")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(movements, total, params))
}

func imageForColor(color string) string {
	if image, ok := imageByColor[strings.ToLower(color)]; ok {
		return image
	}
	return imageByColor["white"]
}
