// internal/database/connection.go
package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/storelab/inventory-backend/internal/config"
	"github.com/storelab/inventory-backend/internal/models"
)

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var gormConfig *gorm.Config

	// Configure GORM logger
	if cfg.LogLevel == "silent" {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		}
	} else {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Info),
		}
	}

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Database connection established successfully")
	return db, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("Error getting underlying sql.DB: %v", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Printf("Error closing database connection: %v", err)
	} else {
		log.Println("Database connection closed successfully")
	}
}

func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	// Run auto-migrations
	err := db.AutoMigrate(
		&models.Product{},
		&models.StockMovement{},
	)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Create indexes
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		// Product indexes
		"CREATE INDEX IF NOT EXISTS idx_products_category ON products(category)",
		"CREATE INDEX IF NOT EXISTS idx_products_stock ON products(stock_quantity)",
		"CREATE INDEX IF NOT EXISTS idx_products_pending_restock ON products(pending_restock) WHERE pending_restock > 0",

		// Stock movement indexes
		"CREATE INDEX IF NOT EXISTS idx_stock_movements_product ON stock_movements(product_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_stock_movements_type ON stock_movements(type, created_at DESC)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			log.Printf("Warning: Failed to create index: %s, Error: %v", index, err)
			// Continue with other indexes instead of failing completely
		}
	}

	return nil
}

// Seed initial data
func SeedInitialData(db *gorm.DB) error {
	log.Println("Seeding initial data...")

	var productCount int64
	if err := db.Model(&models.Product{}).Count(&productCount).Error; err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}

	if productCount > 0 {
		return nil
	}

	catalog := []models.Product{
		{Name: "Classic Tee", Brand: "Northline", Color: "Black", Size: "M", Material: "Cotton", Category: "apparel", Price: 19.99, StockQuantity: 120, RestockStatus: models.RestockStatusNone},
		{Name: "Trail Hoodie", Brand: "Northline", Color: "Blue", Size: "L", Material: "Fleece", Category: "apparel", Price: 49.99, StockQuantity: 80, RestockStatus: models.RestockStatusNone},
		{Name: "Canvas Sneaker", Brand: "Walkway", Color: "White", Size: "42", Material: "Canvas", Category: "footwear", Price: 59.99, StockQuantity: 60, RestockStatus: models.RestockStatusNone},
		{Name: "Field Cap", Brand: "Walkway", Color: "Green", Size: "OS", Material: "Cotton", Category: "accessories", Price: 14.99, StockQuantity: 45, RestockStatus: models.RestockStatusNone},
		{Name: "Weekend Duffel", Brand: "Carrier", Color: "Red", Size: "OS", Material: "Nylon", Category: "bags", Price: 89.99, StockQuantity: 30, RestockStatus: models.RestockStatusNone},
	}

	for i := range catalog {
		if err := db.Create(&catalog[i]).Error; err != nil {
			return fmt.Errorf("failed to seed product %q: %w", catalog[i].Name, err)
		}
	}

	log.Println("Initial data seeding completed")
	return nil
}

// Transaction helper
func WithTransaction(db *gorm.DB, fn func(*gorm.DB) error) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
