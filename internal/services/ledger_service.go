// internal/services/ledger_service.go
package services

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/storelab/inventory-backend/internal/config"
	"github.com/storelab/inventory-backend/internal/database"
	"github.com/storelab/inventory-backend/internal/events"
	"github.com/storelab/inventory-backend/internal/models"
)

var (
	ErrProductNotFound       = errors.New("product not found")
	ErrInvalidAmount         = errors.New("restock amount must be positive")
	ErrInsufficientStock     = errors.New("insufficient stock")
	ErrOutOfStock            = errors.New("product is out of stock")
	ErrRestockAlreadyPending = errors.New("a restock request is already pending for this product")
)

// RestockScheduler arms the delayed-approval timer for an accepted
// restock request. Implemented by RestockService.
type RestockScheduler interface {
	Schedule(productID uuid.UUID)
}

// LedgerService owns authoritative stock counts. Every mutation of a
// product's stock or restock fields goes through here, serialized per
// product, and is followed by a low-stock evaluation and an event.
type LedgerService struct {
	db        *gorm.DB
	publisher events.Publisher
	workflow  RestockScheduler
	threshold int
	logger    *logrus.Entry

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex

	// Episode state for the low-stock monitor. Process-scoped: an entry
	// exists only while the product sits below the threshold and the
	// alert for the current episode has already fired.
	episodeMu sync.Mutex
	alerted   map[uuid.UUID]bool

	reconcileOnce sync.Once
}

func NewLedgerService(db *gorm.DB, publisher events.Publisher, cfg config.InventoryConfig) *LedgerService {
	return &LedgerService{
		db:        db,
		publisher: publisher,
		threshold: cfg.LowStockThreshold,
		logger:    logrus.WithField("component", "ledger"),
		locks:     make(map[uuid.UUID]*sync.Mutex),
		alerted:   make(map[uuid.UUID]bool),
	}
}

// SetWorkflow wires the restock workflow in after construction; the two
// services reference each other.
func (s *LedgerService) SetWorkflow(w RestockScheduler) {
	s.workflow = w
}

// Sell decrements stock by quantity (default 1), strictly: a request
// exceeding available stock is rejected and leaves state unchanged.
// Returns the new stock level.
func (s *LedgerService) Sell(productID uuid.UUID, quantity int) (int, error) {
	if quantity <= 0 {
		quantity = 1
	}

	lock := s.productLock(productID)
	lock.Lock()
	defer lock.Unlock()

	product, err := s.loadProduct(productID)
	if err != nil {
		return 0, err
	}

	if quantity > product.StockQuantity {
		return 0, ErrInsufficientStock
	}

	if err := s.applySale(product, quantity, models.MovementTypeSale, "manual sale"); err != nil {
		return 0, err
	}

	return product.StockQuantity, nil
}

// SellClamped is the lenient "test sell" contract used by the HTTP
// test endpoint and the depletion scheduler: the quantity is clamped to
// available stock, and the call fails only when the product is already
// out of stock. Returns the product after the sale and the units sold.
func (s *LedgerService) SellClamped(productID uuid.UUID, quantity int, movement models.MovementType) (*models.Product, int, error) {
	if quantity <= 0 {
		quantity = 1
	}

	lock := s.productLock(productID)
	lock.Lock()
	defer lock.Unlock()

	product, err := s.loadProduct(productID)
	if err != nil {
		return nil, 0, err
	}

	if product.StockQuantity <= 0 {
		return nil, 0, ErrOutOfStock
	}

	if quantity > product.StockQuantity {
		quantity = product.StockQuantity
	}

	note := "test sale"
	if movement == models.MovementTypeAutoSale {
		note = "automatic sale"
	}
	if err := s.applySale(product, quantity, movement, note); err != nil {
		return nil, 0, err
	}

	return product, quantity, nil
}

// RequestRestock accepts a restock request and hands it to the restock
// workflow. At most one request may be in flight per product.
func (s *LedgerService) RequestRestock(productID uuid.UUID, amount int) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	lock := s.productLock(productID)
	lock.Lock()
	defer lock.Unlock()

	product, err := s.loadProduct(productID)
	if err != nil {
		return err
	}

	if product.PendingRestock > 0 {
		return ErrRestockAlreadyPending
	}

	updates := map[string]interface{}{
		"pending_restock": amount,
		"restock_status":  models.RestockStatusPending,
	}
	if err := s.db.Model(product).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to record restock request: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"product": product.Name,
		"amount":  amount,
	}).Info("Restock request accepted, waiting for approval")

	if s.workflow != nil {
		s.workflow.Schedule(product.ID)
	}

	return nil
}

// ApplyApprovedRestock is invoked only by the restock workflow timer.
// A fire that races a manual resolution or a removed product is a
// logged no-op, never an error: no caller waits on the timer.
func (s *LedgerService) ApplyApprovedRestock(productID uuid.UUID) error {
	lock := s.productLock(productID)
	lock.Lock()
	defer lock.Unlock()

	product, err := s.loadProduct(productID)
	if errors.Is(err, ErrProductNotFound) {
		s.logger.WithField("product_id", productID).Warn("Restock approval fired for missing product")
		return nil
	}
	if err != nil {
		return err
	}

	if product.PendingRestock <= 0 {
		s.logger.WithField("product", product.Name).Warn("Restock approval fired with no pending restock")
		return nil
	}

	approved := product.PendingRestock
	newStock := product.StockQuantity + approved

	err = database.WithTransaction(s.db, func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"stock_quantity":  newStock,
			"pending_restock": 0,
			"restock_status":  models.RestockStatusApproved,
		}
		if err := tx.Model(product).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to apply restock: %w", err)
		}

		movement := &models.StockMovement{
			ProductID:      product.ID,
			Type:           models.MovementTypeRestock,
			Quantity:       approved,
			ResultingStock: newStock,
			Note:           "warehouse restock approved",
		}
		if err := tx.Create(movement).Error; err != nil {
			return fmt.Errorf("failed to record stock movement: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	product.StockQuantity = newStock
	product.PendingRestock = 0
	product.RestockStatus = models.RestockStatusApproved

	s.logger.WithFields(logrus.Fields{
		"product":   product.Name,
		"approved":  approved,
		"new_stock": newStock,
	}).Info("Restock applied")

	s.publish(events.Restocked{ID: product.ID, Name: product.Name, StockQuantity: newStock})
	s.evaluateStock(product)

	return nil
}

// ListProducts returns the full catalog. The first call after startup
// performs the cold-start low-stock reconciliation, so products that
// were already low before any mutation still get their alert.
func (s *LedgerService) ListProducts() ([]models.Product, error) {
	var products []models.Product
	if err := s.db.Order("name").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	s.reconcileOnce.Do(func() {
		for i := range products {
			s.evaluateStock(&products[i])
		}
	})

	return products, nil
}

// GetMovements returns the movement history for a product, newest
// first.
func (s *LedgerService) GetMovements(productID uuid.UUID, offset, limit int) ([]models.StockMovement, int64, error) {
	if _, err := s.loadProduct(productID); err != nil {
		return nil, 0, err
	}

	query := s.db.Model(&models.StockMovement{}).Where("product_id = ?", productID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count stock movements: %w", err)
	}

	var movements []models.StockMovement
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&movements).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch stock movements: %w", err)
	}

	return movements, total, nil
}

// Helper methods

func (s *LedgerService) loadProduct(productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := s.db.First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &product, nil
}

// applySale assumes the caller holds the product lock and has already
// checked stock availability.
func (s *LedgerService) applySale(product *models.Product, quantity int, movementType models.MovementType, note string) error {
	newStock := product.StockQuantity - quantity

	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := tx.Model(product).Update("stock_quantity", newStock).Error; err != nil {
			return fmt.Errorf("failed to update stock: %w", err)
		}

		movement := &models.StockMovement{
			ProductID:      product.ID,
			Type:           movementType,
			Quantity:       -quantity,
			ResultingStock: newStock,
			Note:           note,
		}
		if err := tx.Create(movement).Error; err != nil {
			return fmt.Errorf("failed to record stock movement: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	product.StockQuantity = newStock

	s.logger.WithFields(logrus.Fields{
		"product":   product.Name,
		"sold":      quantity,
		"remaining": newStock,
	}).Info("Product sold")

	s.publish(events.Sold{ID: product.ID, Name: product.Name, StockQuantity: newStock})
	s.evaluateStock(product)

	return nil
}

// evaluateStock is the low-stock monitor. A LowStock event fires once
// when stock crosses below the threshold and not again until stock has
// recovered to the threshold or above.
func (s *LedgerService) evaluateStock(product *models.Product) {
	s.episodeMu.Lock()
	alerted := s.alerted[product.ID]

	switch {
	case product.StockQuantity < s.threshold && !alerted:
		s.alerted[product.ID] = true
		s.episodeMu.Unlock()

		s.logger.WithFields(logrus.Fields{
			"product": product.Name,
			"stock":   product.StockQuantity,
		}).Warn("Stock below threshold, restock approval pending")

		s.publish(events.LowStock{ID: product.ID, Name: product.Name})

	case product.StockQuantity >= s.threshold && alerted:
		// Episode over: re-arm future alerting. Recovery itself is
		// observable through the Sold/Restocked events' stock values.
		delete(s.alerted, product.ID)
		s.episodeMu.Unlock()

	default:
		s.episodeMu.Unlock()
	}
}

func (s *LedgerService) publish(event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(event); err != nil {
		s.logger.WithError(err).WithField("event", event.EventName()).
			Warn("Failed to publish event")
	}
}

func (s *LedgerService) productLock(productID uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[productID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[productID] = lock
	}
	return lock
}
