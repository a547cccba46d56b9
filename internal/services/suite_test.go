// internal/services/suite_test.go
package services

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/storelab/inventory-backend/internal/config"
	"github.com/storelab/inventory-backend/internal/events"
	"github.com/storelab/inventory-backend/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A single connection keeps every goroutine on the same in-memory
	// database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.Product{}, &models.StockMovement{}))

	return db
}

func testInventoryConfig() config.InventoryConfig {
	return config.InventoryConfig{
		LowStockThreshold: 25,
	}
}

func createProduct(t *testing.T, db *gorm.DB, name, color string, stock int) *models.Product {
	t.Helper()

	product := &models.Product{
		Name:          name,
		Color:         color,
		Category:      "apparel",
		Price:         19.99,
		StockQuantity: stock,
		RestockStatus: models.RestockStatusNone,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

// recorderPublisher captures published events for assertions.
type recorderPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorderPublisher) Publish(e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorderPublisher) byName(name string) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []events.Event
	for _, e := range r.events {
		if e.EventName() == name {
			out = append(out, e)
		}
	}
	return out
}

func (r *recorderPublisher) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
