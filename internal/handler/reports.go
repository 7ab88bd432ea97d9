package handler

import (
	"net/http"
	"time"

	"github.com/DrgGomes/cft-estoque-fast/internal/apierror"
	"github.com/DrgGomes/cft-estoque-fast/internal/infra"
	"github.com/DrgGomes/cft-estoque-fast/internal/repository"

	"github.com/gin-gonic/gin"
)

type ReportsHandler struct{ products repository.ProductRepository }

func NewReportsHandler(products repository.ProductRepository) *ReportsHandler {
	return &ReportsHandler{products: products}
}

// StockPDF streams the current stock list as a PDF download.
func (h *ReportsHandler) StockPDF(c *gin.Context) {
	products, err := h.products.Snapshot(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Failed to load stock"))
		return
	}

	pdf, err := infra.GenerateStockReport(products, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Failed to generate report"))
		return
	}

	filename := "stock-" + time.Now().Format("2006-01-02") + ".pdf"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
