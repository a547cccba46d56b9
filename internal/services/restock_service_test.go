// internal/services/restock_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/storelab/inventory-backend/internal/events"
	"github.com/storelab/inventory-backend/internal/models"
)

const testApprovalDelay = 15 * time.Second

type RestockTestSuite struct {
	suite.Suite
	db        *gorm.DB
	clock     *clock.Mock
	publisher *recorderPublisher
	ledger    *LedgerService
	workflow  *RestockService
}

func (suite *RestockTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	suite.clock = clock.NewMock()
	suite.publisher = &recorderPublisher{}
	suite.ledger = NewLedgerService(suite.db, suite.publisher, testInventoryConfig())
	suite.workflow = NewRestockService(suite.db, suite.ledger, suite.clock, testApprovalDelay)
	suite.ledger.SetWorkflow(suite.workflow)
}

func (suite *RestockTestSuite) reload(id uuid.UUID) *models.Product {
	var product models.Product
	suite.Require().NoError(suite.db.First(&product, "id = ?", id).Error)
	return &product
}

func (suite *RestockTestSuite) TestApprovalAfterDelay() {
	product := createProduct(suite.T(), suite.db, "Trail Hoodie", "Blue", 10)

	suite.NoError(suite.ledger.RequestRestock(product.ID, 10))

	// Still pending just before the delay elapses
	suite.clock.Add(testApprovalDelay - time.Second)
	reloaded := suite.reload(product.ID)
	suite.Equal(10, reloaded.StockQuantity)
	suite.Equal(models.RestockStatusPending, reloaded.RestockStatus)

	suite.clock.Add(time.Second)
	reloaded = suite.reload(product.ID)
	suite.Equal(20, reloaded.StockQuantity)
	suite.Equal(0, reloaded.PendingRestock)
	suite.Equal(models.RestockStatusApproved, reloaded.RestockStatus)

	restocked := suite.publisher.byName(events.EventRestock)
	suite.Require().Len(restocked, 1)
	suite.Equal(20, restocked[0].(events.Restocked).StockQuantity)
}

func (suite *RestockTestSuite) TestSecondRequestRejectedWhilePending() {
	product := createProduct(suite.T(), suite.db, "Trail Hoodie", "Blue", 10)

	suite.NoError(suite.ledger.RequestRestock(product.ID, 10))
	suite.ErrorIs(suite.ledger.RequestRestock(product.ID, 99), ErrRestockAlreadyPending)

	suite.clock.Add(testApprovalDelay)

	// Only the first request was applied
	suite.Equal(20, suite.reload(product.ID).StockQuantity)
}

func (suite *RestockTestSuite) TestNewCycleAfterApproval() {
	product := createProduct(suite.T(), suite.db, "Trail Hoodie", "Blue", 10)

	suite.NoError(suite.ledger.RequestRestock(product.ID, 10))
	suite.clock.Add(testApprovalDelay)

	// Approval resolves the cycle, so a fresh request is accepted
	suite.NoError(suite.ledger.RequestRestock(product.ID, 5))
	suite.clock.Add(testApprovalDelay)

	suite.Equal(25, suite.reload(product.ID).StockQuantity)
}

func (suite *RestockTestSuite) TestRecoverReArmsPersistedPending() {
	// A request accepted before a restart: persisted pending state,
	// but no timer in this process
	product := createProduct(suite.T(), suite.db, "Trail Hoodie", "Blue", 10)
	suite.Require().NoError(suite.db.Model(product).Updates(map[string]interface{}{
		"pending_restock": 8,
		"restock_status":  models.RestockStatusPending,
	}).Error)

	suite.NoError(suite.workflow.Recover())
	suite.clock.Add(testApprovalDelay)

	reloaded := suite.reload(product.ID)
	suite.Equal(18, reloaded.StockQuantity)
	suite.Equal(0, reloaded.PendingRestock)
	suite.Equal(models.RestockStatusApproved, reloaded.RestockStatus)
}

func (suite *RestockTestSuite) TestShutdownAbandonsTimers() {
	product := createProduct(suite.T(), suite.db, "Trail Hoodie", "Blue", 10)

	suite.NoError(suite.ledger.RequestRestock(product.ID, 10))
	suite.workflow.Shutdown()
	suite.clock.Add(2 * testApprovalDelay)

	// The pending state survives for recovery on the next start
	reloaded := suite.reload(product.ID)
	suite.Equal(10, reloaded.StockQuantity)
	suite.Equal(10, reloaded.PendingRestock)
	suite.Equal(models.RestockStatusPending, reloaded.RestockStatus)
}

func (suite *RestockTestSuite) TestFullLifecycleScenario() {
	// P1 starts at 30
	product := createProduct(suite.T(), suite.db, "P1", "Red", 30)

	// Sell 6 -> 24, exactly one low-stock alert
	newStock, err := suite.ledger.Sell(product.ID, 6)
	suite.NoError(err)
	suite.Equal(24, newStock)
	suite.Len(suite.publisher.byName(events.EventLowStock), 1)

	// Restock 50 -> after the delay, 74 and resolved
	suite.NoError(suite.ledger.RequestRestock(product.ID, 50))
	suite.clock.Add(testApprovalDelay)

	reloaded := suite.reload(product.ID)
	suite.Equal(74, reloaded.StockQuantity)
	suite.Equal(0, reloaded.PendingRestock)
	suite.Equal(models.RestockStatusApproved, reloaded.RestockStatus)

	restocked := suite.publisher.byName(events.EventRestock)
	suite.Require().Len(restocked, 1)
	suite.Equal(74, restocked[0].(events.Restocked).StockQuantity)

	// Sell 60 -> 14, a second episode alerts once
	newStock, err = suite.ledger.Sell(product.ID, 60)
	suite.NoError(err)
	suite.Equal(14, newStock)
	suite.Len(suite.publisher.byName(events.EventLowStock), 2)
}

func TestRestockSuite(t *testing.T) {
	suite.Run(t, new(RestockTestSuite))
}
