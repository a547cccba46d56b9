// internal/models/product.go
package models

import (
	"github.com/lib/pq"
)

type Product struct {
	BaseModel
	Name           string         `json:"name" gorm:"size:255;not null;index"`
	Brand          string         `json:"brand" gorm:"size:100"`
	Color          string         `json:"color" gorm:"size:50"`
	Size           string         `json:"size" gorm:"size:50"`
	Material       string         `json:"material" gorm:"size:100"`
	Category       string         `json:"category" gorm:"size:100;index"`
	Price          float64        `json:"price" gorm:"type:decimal(10,2);not null"`
	Tags           pq.StringArray `json:"tags" gorm:"type:text[]"`
	StockQuantity  int            `json:"stock_quantity" gorm:"not null;default:0"`
	PendingRestock int            `json:"pending_restock" gorm:"not null;default:0"`
	RestockStatus  RestockStatus  `json:"restock_status" gorm:"type:varchar(20);default:'none';index"`

	// Relationships
	Movements []StockMovement `json:"movements,omitempty" gorm:"foreignKey:ProductID"`
}
