package handler

import (
	"net/http"
	"strconv"

	"github.com/DrgGomes/cft-estoque-fast/internal/apierror"
	"github.com/DrgGomes/cft-estoque-fast/internal/service"

	"github.com/gin-gonic/gin"
)

type AlertsHandler struct{ svc service.AlertService }

func NewAlertsHandler(svc service.AlertService) *AlertsHandler {
	return &AlertsHandler{svc: svc}
}

func (h *AlertsHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	resp, err := h.svc.List(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Failed to list alerts"))
		return
	}
	c.JSON(http.StatusOK, resp)
}
