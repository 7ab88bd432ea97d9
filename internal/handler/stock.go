package handler

import (
	"net/http"

	"github.com/DrgGomes/cft-estoque-fast/internal/apierror"
	"github.com/DrgGomes/cft-estoque-fast/internal/dto"
	"github.com/DrgGomes/cft-estoque-fast/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type StockHandler struct{ ledger service.LedgerService }

func NewStockHandler(ledger service.LedgerService) *StockHandler {
	return &StockHandler{ledger: ledger}
}

// SetQuantity godoc
// @Summary Set the absolute stock quantity of a variant
// @Tags stock
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param body body dto.SetQuantityRequest true "Desired quantity"
// @Success 200 {object} dto.MovementResponse
// @Failure 422 {object} apierror.ValidationError
// @Router /v1/products/{id}/quantity [put]
func (h *StockHandler) SetQuantity(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return
	}
	var req dto.SetQuantityRequest
	if !bindAndValidate(c, &req) {
		return
	}

	product, movements, err := h.ledger.SetQuantity(c.Request.Context(), id, *req.Quantity)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}

	resp := gin.H{"quantity": product.Quantity}
	if len(movements) > 0 {
		m := service.MovementToResponse(&movements[0])
		resp["movement"] = m
	}
	c.JSON(http.StatusOK, resp)
}

func (h *StockHandler) ListMovements(c *gin.Context) {
	var filter dto.MovementFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	movements, total, err := h.ledger.ListMovements(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Failed to list movements"))
		return
	}

	resp := dto.MovementListResponse{
		Data:  make([]dto.MovementResponse, len(movements)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	if filter.Limit > 0 {
		resp.TotalPages = int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	}
	for i := range movements {
		resp.Data[i] = service.MovementToResponse(&movements[i])
	}
	c.JSON(http.StatusOK, resp)
}
