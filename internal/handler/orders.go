package handler

import (
	"net/http"

	"github.com/DrgGomes/cft-estoque-fast/internal/apierror"
	"github.com/DrgGomes/cft-estoque-fast/internal/dto"
	"github.com/DrgGomes/cft-estoque-fast/internal/service"

	"github.com/gin-gonic/gin"
)

type OrdersHandler struct{ svc service.OrderService }

func NewOrdersHandler(svc service.OrderService) *OrdersHandler {
	return &OrdersHandler{svc: svc}
}

func (h *OrdersHandler) BuildMessage(c *gin.Context) {
	var req dto.OrderMessageRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.BuildMessage(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}
