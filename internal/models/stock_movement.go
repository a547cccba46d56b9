// internal/models/stock_movement.go
package models

import (
	"github.com/google/uuid"
)

// StockMovement records a single change to a product's stock level.
// Rows are written in the same transaction as the stock mutation.
type StockMovement struct {
	BaseModel
	ProductID      uuid.UUID    `json:"product_id" gorm:"type:uuid;not null;index"`
	Type           MovementType `json:"type" gorm:"type:varchar(20);not null;index"`
	Quantity       int          `json:"quantity" gorm:"not null"` // negative for sales, positive for restocks
	ResultingStock int          `json:"resulting_stock" gorm:"not null"`
	Note           string       `json:"note,omitempty" gorm:"size:255"`

	Product Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}
