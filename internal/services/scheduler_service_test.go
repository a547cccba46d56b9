// internal/services/scheduler_service_test.go
package services

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/storelab/inventory-backend/internal/events"
	"github.com/storelab/inventory-backend/internal/models"
)

type SchedulerTestSuite struct {
	suite.Suite
	db        *gorm.DB
	clock     *clock.Mock
	publisher *recorderPublisher
	ledger    *LedgerService
	scheduler *SchedulerService
}

func (suite *SchedulerTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	suite.clock = clock.NewMock()
	suite.publisher = &recorderPublisher{}
	suite.ledger = NewLedgerService(suite.db, suite.publisher, testInventoryConfig())
	suite.scheduler = NewSchedulerService(suite.db, suite.ledger, suite.clock, 30*time.Second)
}

func (suite *SchedulerTestSuite) totalStock() int {
	var products []models.Product
	suite.Require().NoError(suite.db.Find(&products).Error)

	total := 0
	for _, p := range products {
		total += p.StockQuantity
	}
	return total
}

func (suite *SchedulerTestSuite) TestTickSellsExactlyOneUnit() {
	createProduct(suite.T(), suite.db, "Classic Tee", "Black", 50)
	createProduct(suite.T(), suite.db, "Trail Hoodie", "Blue", 40)

	before := suite.totalStock()
	suite.scheduler.Tick()

	suite.Equal(before-1, suite.totalStock())
	suite.Len(suite.publisher.byName(events.EventSold), 1)

	var movements []models.StockMovement
	suite.Require().NoError(suite.db.Find(&movements).Error)
	suite.Require().Len(movements, 1)
	suite.Equal(models.MovementTypeAutoSale, movements[0].Type)
	suite.Equal(-1, movements[0].Quantity)
}

func (suite *SchedulerTestSuite) TestTickSkipsProductsWithoutStock() {
	empty := createProduct(suite.T(), suite.db, "Field Cap", "Green", 0)
	stocked := createProduct(suite.T(), suite.db, "Classic Tee", "Black", 5)

	for i := 0; i < 5; i++ {
		suite.scheduler.Tick()
	}

	var reloadedEmpty, reloadedStocked models.Product
	suite.Require().NoError(suite.db.First(&reloadedEmpty, "id = ?", empty.ID).Error)
	suite.Require().NoError(suite.db.First(&reloadedStocked, "id = ?", stocked.ID).Error)

	suite.Equal(0, reloadedEmpty.StockQuantity)
	suite.Equal(0, reloadedStocked.StockQuantity)
}

func (suite *SchedulerTestSuite) TestTickNoSellableProducts() {
	createProduct(suite.T(), suite.db, "Field Cap", "Green", 0)

	// A tick against an exhausted catalog is a no-op, not a failure
	suite.scheduler.Tick()

	suite.Empty(suite.publisher.byName(events.EventSold))
	suite.Equal(0, suite.totalStock())
}

func (suite *SchedulerTestSuite) TestRunStopsOnCancel() {
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		suite.scheduler.Run(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		suite.Fail("scheduler did not stop on context cancellation")
	}
}

func TestSchedulerSuite(t *testing.T) {
	suite.Run(t, new(SchedulerTestSuite))
}
