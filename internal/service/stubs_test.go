package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/DrgGomes/cft-estoque-fast/internal/dto"
	"github.com/DrgGomes/cft-estoque-fast/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory repository stubs. DB() returns nil, so transactional service code
// runs its body directly against these maps.

type stubProductRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]*model.Product
}

func newStubProductRepo(products ...*model.Product) *stubProductRepo {
	r := &stubProductRepo{products: make(map[uuid.UUID]*model.Product)}
	for _, p := range products {
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		r.products[p.ID] = p
	}
	return r
}

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	cp := *p
	return &cp, nil
}

func (r *stubProductRepo) FindByCode(_ context.Context, code string) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lower := strings.ToLower(code)
	for _, p := range r.products {
		if p.SKU != nil && strings.ToLower(*p.SKU) == lower {
			cp := *p
			return &cp, nil
		}
		if p.Barcode != nil && strings.ToLower(*p.Barcode) == lower {
			cp := *p
			return &cp, nil
		}
	}
	return nil, errors.New("record not found")
}

func (r *stubProductRepo) List(_ context.Context, _ dto.ProductFilter) ([]model.Product, int64, error) {
	snapshot, _ := r.Snapshot(context.Background())
	return snapshot, int64(len(snapshot)), nil
}

func (r *stubProductRepo) Snapshot(_ context.Context) ([]model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, *p)
	}
	return out, nil
}

func (r *stubProductRepo) Update(_ context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[p.ID]; !ok {
		return errors.New("record not found")
	}
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *stubProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.products, id)
	return nil
}

func (r *stubProductRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Product, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubProductRepo) SetQuantityTx(_ *gorm.DB, id uuid.UUID, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return errors.New("record not found")
	}
	p.Quantity = quantity
	return nil
}

func (r *stubProductRepo) CreateTx(_ *gorm.DB, p *model.Product) error {
	return r.Create(context.Background(), p)
}

func (r *stubProductRepo) DB() *gorm.DB { return nil }

func (r *stubProductRepo) quantity(id uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.products[id]; ok {
		return p.Quantity
	}
	return -1
}

type stubMovementRepo struct {
	mu        sync.Mutex
	movements []model.StockMovement
}

func (r *stubMovementRepo) CreateTx(_ *gorm.DB, m *model.StockMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.movements = append(r.movements, *m)
	return nil
}

func (r *stubMovementRepo) List(_ context.Context, filter dto.MovementFilter) ([]model.StockMovement, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.StockMovement, 0, len(r.movements))
	for _, m := range r.movements {
		if filter.ProductID != "" && m.ProductID.String() != filter.ProductID {
			continue
		}
		if filter.Type != "" && m.Type != filter.Type {
			continue
		}
		out = append(out, m)
	}
	return out, int64(len(out)), nil
}

func (r *stubMovementRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.movements)
}

type stubAlertRepo struct {
	mu      sync.Mutex
	alerts  []model.StockAlert
	failFor string // product name whose insert should fail
}

func (r *stubAlertRepo) Create(_ context.Context, a *model.StockAlert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failFor != "" && a.ProductName == r.failFor {
		return errors.New("insert failed")
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	r.alerts = append(r.alerts, *a)
	return nil
}

func (r *stubAlertRepo) List(_ context.Context, _ int) ([]model.StockAlert, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.StockAlert, len(r.alerts))
	copy(out, r.alerts)
	return out, int64(len(out)), nil
}
