package model

import (
	"time"

	"github.com/google/uuid"
)

// Movement types. The sign of NewQty-PreviousQty must match the type:
// entry ⇒ positive, exit ⇒ negative, correction ⇒ either.
const (
	MovementEntry      = "entry"
	MovementExit       = "exit"
	MovementCorrection = "correction"
)

// StockMovement is the immutable ledger record of one quantity change.
// Product fields are denormalized at write time so history stays readable
// after the product is edited or deleted. Never updated or deleted by the app.
type StockMovement struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`

	ProductName string `gorm:"not null"`
	SKU         string
	Image       string

	Type string `gorm:"type:varchar(12);not null"` // entry | exit | correction
	// Amount is the positive magnitude of the change.
	Amount      int `gorm:"not null"`
	PreviousQty int `gorm:"not null"`
	NewQty      int `gorm:"not null"`
	CreatedAt   time.Time
}

// TableName overrides GORM's default pluralization.
func (StockMovement) TableName() string { return "stock_movements" }
