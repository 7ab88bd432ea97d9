package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/DrgGomes/cft-estoque-fast/internal/dto"
	"github.com/DrgGomes/cft-estoque-fast/internal/grid"
	"github.com/DrgGomes/cft-estoque-fast/internal/infra"
	"github.com/DrgGomes/cft-estoque-fast/internal/model"
	"github.com/DrgGomes/cft-estoque-fast/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Adjustment is one requested quantity change: positive delta is an entry,
// negative an exit. Zero deltas are dropped before any write.
type Adjustment struct {
	ProductID uuid.UUID
	Delta     int
}

// LedgerService applies quantity changes as single all-or-nothing operations,
// writing the new quantity and exactly one immutable movement per changed
// product. It is the only writer of stock quantities in the system.
type LedgerService interface {
	// Apply commits the whole set atomically: either every pair's quantity
	// and movement land, or none do. A delta that would take a product
	// negative rejects the entire batch before anything is visible.
	Apply(ctx context.Context, adjustments []Adjustment) ([]model.StockMovement, error)

	// SetQuantity is the direct-edit path: the caller states the desired
	// absolute quantity, the delta is derived from current stock. Delta 0 is
	// a no-op (no write, no history).
	SetQuantity(ctx context.Context, productID uuid.UUID, quantity int) (*model.Product, []model.StockMovement, error)

	// BulkCreate seeds one product per generated grid row, each at quantity
	// 0, in one transaction. Creation writes no movements — history records
	// only quantity changes on existing stock.
	BulkCreate(ctx context.Context, name string, image *string, rows []grid.Row) ([]model.Product, error)

	ListMovements(ctx context.Context, filter dto.MovementFilter) ([]model.StockMovement, int64, error)
}

type ledgerService struct {
	products  repository.ProductRepository
	movements repository.MovementRepository
	rdb       *redis.Client
	audit     infra.AuditProducer // nil when the kafka stream is disabled
}

func NewLedgerService(
	products repository.ProductRepository,
	movements repository.MovementRepository,
	rdb *redis.Client,
	audit infra.AuditProducer,
) LedgerService {
	return &ledgerService{products: products, movements: movements, rdb: rdb, audit: audit}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

func (s *ledgerService) Apply(ctx context.Context, adjustments []Adjustment) ([]model.StockMovement, error) {
	// Zero deltas are no-ops; strip them before deciding whether to write.
	pending := make([]Adjustment, 0, len(adjustments))
	for _, adj := range adjustments {
		if adj.Delta != 0 {
			pending = append(pending, adj)
		}
	}
	if len(pending) == 0 {
		return nil, nil
	}

	var created []model.StockMovement
	txErr := runTx(ctx, s.products.DB(), func(tx *gorm.DB) error {
		for _, adj := range pending {
			p, err := s.products.FindByIDTx(tx, adj.ProductID)
			if err != nil {
				return fmt.Errorf("product %s not found", adj.ProductID)
			}

			newQty := p.Quantity + adj.Delta
			if newQty < 0 {
				return fmt.Errorf("insufficient stock for %s: have %d, requested %d", p.Name, p.Quantity, -adj.Delta)
			}

			if err := s.products.SetQuantityTx(tx, p.ID, newQty); err != nil {
				return err
			}

			movementType := model.MovementEntry
			amount := adj.Delta
			if adj.Delta < 0 {
				movementType = model.MovementExit
				amount = -adj.Delta
			}

			sku, image := "", ""
			if p.SKU != nil {
				sku = *p.SKU
			}
			if p.Image != nil {
				image = *p.Image
			}

			m := model.StockMovement{
				ProductID:   p.ID,
				ProductName: p.Name,
				SKU:         sku,
				Image:       image,
				Type:        movementType,
				Amount:      amount,
				PreviousQty: p.Quantity,
				NewQty:      newQty,
			}
			if err := s.movements.CreateTx(tx, &m); err != nil {
				return err
			}
			created = append(created, m)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.publishCommitted(ctx, created)
	return created, nil
}

func (s *ledgerService) SetQuantity(ctx context.Context, productID uuid.UUID, quantity int) (*model.Product, []model.StockMovement, error) {
	if quantity < 0 {
		return nil, nil, errors.New("quantity cannot be negative")
	}

	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, nil, errors.New("product not found")
	}

	delta := quantity - p.Quantity
	if delta == 0 {
		return p, nil, nil
	}

	movements, err := s.Apply(ctx, []Adjustment{{ProductID: productID, Delta: delta}})
	if err != nil {
		return nil, nil, err
	}
	p.Quantity = quantity
	return p, movements, nil
}

func (s *ledgerService) BulkCreate(ctx context.Context, name string, image *string, rows []grid.Row) ([]model.Product, error) {
	for i, row := range rows {
		if row.SKU == "" {
			return nil, fmt.Errorf("row %d (%s/%s) has an empty sku", i+1, row.Color, row.Size)
		}
	}

	created := make([]model.Product, 0, len(rows))
	txErr := runTx(ctx, s.products.DB(), func(tx *gorm.DB) error {
		for _, row := range rows {
			sku := row.SKU
			p := model.Product{
				Name:     name,
				SKU:      &sku,
				Image:    image,
				Color:    row.Color,
				Size:     row.Size,
				Quantity: 0,
			}
			if row.Barcode != "" {
				barcode := row.Barcode
				p.Barcode = &barcode
			}
			if err := s.products.CreateTx(tx, &p); err != nil {
				return fmt.Errorf("create variant %s: %w", row.SKU, err)
			}
			created = append(created, p)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.publishCommitted(ctx, nil)
	return created, nil
}

func (s *ledgerService) ListMovements(ctx context.Context, filter dto.MovementFilter) ([]model.StockMovement, int64, error) {
	return s.movements.List(ctx, filter)
}

// publishCommitted notifies subscribers that the collection changed and
// streams audit events. Both are best-effort: the transaction is already
// committed, so failures here are logged and swallowed.
func (s *ledgerService) publishCommitted(ctx context.Context, movements []model.StockMovement) {
	if s.rdb != nil {
		if err := s.rdb.Publish(ctx, infra.StockChangedChannel, "changed").Err(); err != nil {
			log.Error().Err(err).Msg("ledger: failed to publish stock change")
		}
	}
	if s.audit != nil {
		for i := range movements {
			if err := s.audit.PublishMovement(ctx, &movements[i]); err != nil {
				log.Error().Err(err).Str("movement_id", movements[i].ID.String()).
					Msg("ledger: failed to publish audit event")
			}
		}
	}
}
