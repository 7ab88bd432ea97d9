package model

import (
	"time"

	"github.com/google/uuid"
)

// Product is one stocked variant: a concrete (color, size) combination of a
// parent model. Name is shared across variants of the same parent; SKU and
// barcode identify the variant itself.
// Quantity is guarded both here (CHECK constraint) and pre-flight in the
// ledger service — a write producing a negative quantity never reaches the DB.
type Product struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name    string    `gorm:"index;not null"`
	SKU     *string   `gorm:"column:sku;uniqueIndex"`
	Barcode *string   `gorm:"uniqueIndex"`
	Image   *string
	Color   string `gorm:"not null"`
	Size    string `gorm:"not null"`
	// Quantity in whole units, never negative.
	Quantity  int `gorm:"not null;default:0;check:quantity >= 0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
