// internal/services/scheduler_service.go
package services

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/storelab/inventory-backend/internal/models"
)

// SchedulerService drives ambient load: on a fixed interval it picks a
// random product with positive stock and sells one unit through the
// ledger's clamped path. Tick failures are logged and never stop the
// loop.
type SchedulerService struct {
	db       *gorm.DB
	ledger   *LedgerService
	clock    clock.Clock
	interval time.Duration
	logger   *logrus.Entry
}

func NewSchedulerService(db *gorm.DB, ledger *LedgerService, clk clock.Clock, interval time.Duration) *SchedulerService {
	return &SchedulerService{
		db:       db,
		ledger:   ledger,
		clock:    clk,
		interval: interval,
		logger:   logrus.WithField("component", "scheduler"),
	}
}

// Run blocks until the context is cancelled.
func (s *SchedulerService) Run(ctx context.Context) {
	s.logger.WithField("interval", s.interval).Info("Auto-sell scheduler started")

	ticker := s.clock.Ticker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Auto-sell scheduler stopped")
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}

// Tick performs one auto-sell round.
func (s *SchedulerService) Tick() {
	var products []models.Product
	if err := s.db.Where("stock_quantity > 0").Find(&products).Error; err != nil {
		s.logger.WithError(err).Error("Failed to fetch products for auto-selling")
		return
	}

	if len(products) == 0 {
		s.logger.Info("No products available for selling")
		return
	}

	pick := products[rand.IntN(len(products))]

	product, sold, err := s.ledger.SellClamped(pick.ID, 1, models.MovementTypeAutoSale)
	if err != nil {
		// The pick can race a concurrent sale down to zero stock.
		if errors.Is(err, ErrOutOfStock) || errors.Is(err, ErrProductNotFound) {
			s.logger.WithField("product", pick.Name).Info("Auto-sell skipped, product no longer sellable")
			return
		}
		s.logger.WithError(err).WithField("product", pick.Name).Error("Auto-sell failed")
		return
	}

	s.logger.WithFields(logrus.Fields{
		"product":   product.Name,
		"sold":      sold,
		"remaining": product.StockQuantity,
	}).Info("Auto sold")
}
