package handler

import (
	"net/http"

	"github.com/DrgGomes/cft-estoque-fast/internal/apierror"
	"github.com/DrgGomes/cft-estoque-fast/internal/dto"
	"github.com/DrgGomes/cft-estoque-fast/internal/grid"
	"github.com/DrgGomes/cft-estoque-fast/internal/service"

	"github.com/gin-gonic/gin"
)

type GridHandler struct{ ledger service.LedgerService }

func NewGridHandler(ledger service.LedgerService) *GridHandler {
	return &GridHandler{ledger: ledger}
}

// Preview godoc
// @Summary Generate the color x size variation rows for a base SKU
// @Tags grid
// @Accept json
// @Produce json
// @Param body body dto.GridPreviewRequest true "Color and size sets"
// @Success 200 {object} dto.GridPreviewResponse
// @Router /v1/grid/preview [post]
func (h *GridHandler) Preview(c *gin.Context) {
	var req dto.GridPreviewRequest
	if !bindAndValidate(c, &req) {
		return
	}

	colors := grid.NewOrderedSet(req.Colors...)
	sizes := grid.NewOrderedSet(req.Sizes...)
	rows := grid.Generate(req.BaseSKU, colors, sizes, req.Previous)

	c.JSON(http.StatusOK, dto.GridPreviewResponse{Rows: rows})
}

func (h *GridHandler) Create(c *gin.Context) {
	var req dto.GridCreateRequest
	if !bindAndValidate(c, &req) {
		return
	}

	created, err := h.ledger.BulkCreate(c.Request.Context(), req.Name, req.Image, req.Rows)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}

	resp := dto.GridCreateResponse{Created: make([]dto.ProductResponse, len(created))}
	for i := range created {
		resp.Created[i] = *service.ProductToResponse(&created[i])
	}
	c.JSON(http.StatusCreated, resp)
}
