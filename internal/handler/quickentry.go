package handler

import (
	"errors"
	"net/http"

	"github.com/DrgGomes/cft-estoque-fast/internal/apierror"
	"github.com/DrgGomes/cft-estoque-fast/internal/dto"
	"github.com/DrgGomes/cft-estoque-fast/internal/middleware"
	"github.com/DrgGomes/cft-estoque-fast/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type QuickEntryHandler struct{ svc service.QuickEntryService }

func NewQuickEntryHandler(svc service.QuickEntryService) *QuickEntryHandler {
	return &QuickEntryHandler{svc: svc}
}

func (h *QuickEntryHandler) StartSession(c *gin.Context) {
	claims := middleware.GetClaims(c)
	resp := h.svc.StartSession(claims.UserID)
	c.JSON(http.StatusCreated, resp)
}

func (h *QuickEntryHandler) GetSession(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	resp, err := h.svc.GetSession(id)
	if err != nil {
		writeQuickEntryError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Scan godoc
// @Summary Submit one scanned or typed code to a quick-entry session
// @Tags quick-entry
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param body body dto.ScanRequest true "Raw code"
// @Success 200 {object} dto.ScanFeedback
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/quick-entry/{id}/scan [post]
func (h *QuickEntryHandler) Scan(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	var req dto.ScanRequest
	if !bindAndValidate(c, &req) {
		return
	}
	feedback, err := h.svc.Scan(c.Request.Context(), id, req.Code)
	if err != nil {
		writeQuickEntryError(c, err)
		return
	}
	c.JSON(http.StatusOK, feedback)
}

func (h *QuickEntryHandler) UpdateItem(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid product ID"))
		return
	}
	var req dto.UpdateScannedItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateItem(id, productID, *req.Count)
	if err != nil {
		writeQuickEntryError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *QuickEntryHandler) RemoveItem(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid product ID"))
		return
	}
	resp, err := h.svc.RemoveItem(id, productID)
	if err != nil {
		writeQuickEntryError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *QuickEntryHandler) Review(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Review(id)
	if err != nil {
		writeQuickEntryError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *QuickEntryHandler) Commit(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Commit(c.Request.Context(), id)
	if err != nil {
		writeQuickEntryError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *QuickEntryHandler) Cancel(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	if err := h.svc.Cancel(id); err != nil {
		writeQuickEntryError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func sessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid session ID"))
		return uuid.Nil, false
	}
	return id, true
}

func writeQuickEntryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	case errors.Is(err, service.ErrNotScanning), errors.Is(err, service.ErrCommitInFlight):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	default:
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	}
}
