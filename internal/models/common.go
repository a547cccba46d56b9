// internal/models/common.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// BeforeCreate assigns the ID so the same schema works on every
// database the tests and the server run against.
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Enums
type RestockStatus string

const (
	RestockStatusNone     RestockStatus = "none"
	RestockStatusPending  RestockStatus = "pending"
	RestockStatusApproved RestockStatus = "approved"
	RestockStatusDenied   RestockStatus = "denied"
)

type MovementType string

const (
	MovementTypeSale     MovementType = "sale"
	MovementTypeAutoSale MovementType = "auto_sale"
	MovementTypeRestock  MovementType = "restock"
)
