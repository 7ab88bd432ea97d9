package service

import (
	"context"
	"errors"
	"time"

	"github.com/DrgGomes/cft-estoque-fast/internal/dto"
	"github.com/DrgGomes/cft-estoque-fast/internal/infra"
	"github.com/DrgGomes/cft-estoque-fast/internal/model"
	"github.com/DrgGomes/cft-estoque-fast/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ProductService defines the business logic contract for the variant catalog.
type ProductService interface {
	Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	GetByCode(ctx context.Context, code string) (*dto.ProductResponse, error)
	List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type productService struct {
	repo repository.ProductRepository
	rdb  *redis.Client
}

func NewProductService(repo repository.ProductRepository, rdb *redis.Client) ProductService {
	return &productService{repo: repo, rdb: rdb}
}

func (s *productService) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	p := &model.Product{
		Name:     req.Name,
		SKU:      req.SKU,
		Barcode:  req.Barcode,
		Image:    req.Image,
		Color:    req.Color,
		Size:     req.Size,
		Quantity: 0, // stock always starts at zero; quantities arrive via the ledger
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.publishChanged(ctx)
	return ProductToResponse(p), nil
}

func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("product not found")
	}
	return ProductToResponse(p), nil
}

func (s *productService) GetByCode(ctx context.Context, code string) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, errors.New("no product matches this code")
	}
	return ProductToResponse(p), nil
}

func (s *productService) List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	resp := &dto.ProductListResponse{
		Data:  make([]dto.ProductResponse, len(products)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	if filter.Limit > 0 {
		resp.TotalPages = int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	}
	for i := range products {
		resp.Data[i] = *ProductToResponse(&products[i])
	}
	return resp, nil
}

func (s *productService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("product not found")
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.SKU != nil {
		p.SKU = req.SKU
	}
	if req.Barcode != nil {
		p.Barcode = req.Barcode
	}
	if req.Image != nil {
		p.Image = req.Image
	}
	if req.Color != nil {
		p.Color = *req.Color
	}
	if req.Size != nil {
		p.Size = *req.Size
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.publishChanged(ctx)
	return ProductToResponse(p), nil
}

func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return errors.New("product not found")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	// History survives: movements keep denormalized product fields.
	s.publishChanged(ctx)
	return nil
}

func (s *productService) publishChanged(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Publish(ctx, infra.StockChangedChannel, "changed").Err(); err != nil {
		log.Error().Err(err).Msg("products: failed to publish stock change")
	}
}

// ─── Shared mappers ──────────────────────────────────────────────────────────

func ProductToResponse(p *model.Product) *dto.ProductResponse {
	resp := &dto.ProductResponse{
		ID:       p.ID.String(),
		Name:     p.Name,
		SKU:      p.SKU,
		Barcode:  p.Barcode,
		Image:    p.Image,
		Color:    p.Color,
		Size:     p.Size,
		Quantity: p.Quantity,
	}
	if p.UpdatedAt.IsZero() {
		resp.UpdatedAt = model.PendingServerTime()
	} else {
		resp.UpdatedAt = model.ResolvedServerTime(p.UpdatedAt)
	}
	return resp
}

// MovementToResponse is shared by the ledger, quick-entry and stock surfaces.
func MovementToResponse(m *model.StockMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:          m.ID.String(),
		ProductID:   m.ProductID.String(),
		ProductName: m.ProductName,
		SKU:         m.SKU,
		Image:       m.Image,
		Type:        m.Type,
		Amount:      m.Amount,
		PreviousQty: m.PreviousQty,
		NewQty:      m.NewQty,
		Timestamp:   m.CreatedAt.Format(time.RFC3339),
	}
}
