// internal/services/restock_service.go
package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/storelab/inventory-backend/internal/models"
)

// RestockService runs the delayed-approval workflow: an accepted
// restock request is approved after a fixed delay by a one-shot timer
// that invokes the ledger. One timer per product; the ledger's
// duplicate-request rejection keeps it that way.
type RestockService struct {
	db     *gorm.DB
	ledger *LedgerService
	clock  clock.Clock
	delay  time.Duration
	logger *logrus.Entry

	mu     sync.Mutex
	timers map[uuid.UUID]*clock.Timer
	closed bool
}

func NewRestockService(db *gorm.DB, ledger *LedgerService, clk clock.Clock, delay time.Duration) *RestockService {
	return &RestockService{
		db:     db,
		ledger: ledger,
		clock:  clk,
		delay:  delay,
		logger: logrus.WithField("component", "restock"),
		timers: make(map[uuid.UUID]*clock.Timer),
	}
}

// Schedule arms the approval timer for a product whose restock request
// the ledger has just accepted.
func (s *RestockService) Schedule(productID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	if _, armed := s.timers[productID]; armed {
		return
	}

	s.logger.WithFields(logrus.Fields{
		"product_id": productID,
		"delay":      s.delay,
	}).Info("Restock approval timer armed")

	s.timers[productID] = s.clock.AfterFunc(s.delay, func() {
		s.approve(productID)
	})
}

// Recover re-arms a fresh approval timer for every product persisted
// with a pending restock, so a request accepted before a restart is
// never silently lost. The remaining wait resets to the full delay.
func (s *RestockService) Recover() error {
	var products []models.Product
	if err := s.db.Where("pending_restock > 0").Find(&products).Error; err != nil {
		return fmt.Errorf("failed to scan for pending restocks: %w", err)
	}

	for i := range products {
		s.logger.WithFields(logrus.Fields{
			"product": products[i].Name,
			"amount":  products[i].PendingRestock,
		}).Info("Resuming pending restock")
		s.Schedule(products[i].ID)
	}

	return nil
}

// Shutdown cancels all in-flight timers without side effects. Recovery
// on the next start restores eventual approval.
func (s *RestockService) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	for productID, timer := range s.timers {
		timer.Stop()
		delete(s.timers, productID)
	}
}

func (s *RestockService) approve(productID uuid.UUID) {
	s.mu.Lock()
	delete(s.timers, productID)
	closed := s.closed
	s.mu.Unlock()

	if closed {
		return
	}

	if err := s.ledger.ApplyApprovedRestock(productID); err != nil {
		s.logger.WithError(err).WithField("product_id", productID).
			Error("Failed to apply approved restock")
	}
}
