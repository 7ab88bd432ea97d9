package repository

import (
	"context"

	"github.com/DrgGomes/cft-estoque-fast/internal/model"

	"gorm.io/gorm"
)

// AlertRepository persists the in-app sold-out alert log.
type AlertRepository interface {
	Create(ctx context.Context, a *model.StockAlert) error
	List(ctx context.Context, limit int) ([]model.StockAlert, int64, error)
}

type alertRepo struct{ db *gorm.DB }

func NewAlertRepository(db *gorm.DB) AlertRepository { return &alertRepo{db: db} }

func (r *alertRepo) Create(ctx context.Context, a *model.StockAlert) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *alertRepo) List(ctx context.Context, limit int) ([]model.StockAlert, int64, error) {
	if limit < 1 || limit > 500 {
		limit = 100
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&model.StockAlert{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var alerts []model.StockAlert
	err := r.db.WithContext(ctx).Order("detected_at DESC").Limit(limit).Find(&alerts).Error
	return alerts, total, err
}
