package model

import (
	"time"

	"github.com/google/uuid"
)

// StockAlert is one zero-crossing event: the product went from a positive
// quantity to exactly zero between two consecutive snapshots. At most one
// alert exists per transition (the detector guarantees this); the dispatcher
// appends blindly.
type StockAlert struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductName string    `gorm:"not null"`
	Color       string
	Size        string
	// DetectedAt is client-local detection time, not a server timestamp.
	DetectedAt time.Time `gorm:"not null"`
	CreatedAt  time.Time
}

func (StockAlert) TableName() string { return "stock_alerts" }
