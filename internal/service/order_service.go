package service

import (
	"context"
	"fmt"

	"github.com/DrgGomes/cft-estoque-fast/internal/dto"
	"github.com/DrgGomes/cft-estoque-fast/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Composer formats a structured order list into an outbound chat message.
// Formatting and delivery are external; the core only supplies the list.
type Composer interface {
	Compose(customerName string, lines []dto.OrderLine) (string, error)
}

// OrderService builds the (sku-or-description, quantity) list for an outbound
// order message.
type OrderService interface {
	BuildMessage(ctx context.Context, req dto.OrderMessageRequest) (*dto.OrderMessageResponse, error)
}

type orderService struct {
	products repository.ProductRepository
	composer Composer // may be nil
}

func NewOrderService(products repository.ProductRepository, composer Composer) OrderService {
	return &orderService{products: products, composer: composer}
}

func (s *orderService) BuildMessage(ctx context.Context, req dto.OrderMessageRequest) (*dto.OrderMessageResponse, error) {
	lines := make([]dto.OrderLine, 0, len(req.Items))
	for _, item := range req.Items {
		id, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("invalid product_id %q", item.ProductID)
		}
		p, err := s.products.FindByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("product %s not found", item.ProductID)
		}

		description := p.Name + " " + p.Color + " " + p.Size
		if p.SKU != nil && *p.SKU != "" {
			description = *p.SKU
		}
		lines = append(lines, dto.OrderLine{Description: description, Quantity: item.Quantity})
	}

	resp := &dto.OrderMessageResponse{CustomerName: req.CustomerName, Lines: lines}
	if s.composer != nil {
		msg, err := s.composer.Compose(req.CustomerName, lines)
		if err != nil {
			// Formatting is best-effort; the structured list is the contract.
			log.Warn().Err(err).Msg("orders: composer failed")
		} else {
			resp.Message = msg
		}
	}
	return resp, nil
}
