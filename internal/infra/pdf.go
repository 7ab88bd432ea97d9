package infra

// pdf.go — current-stock report generation using go-pdf/fpdf.
// A4 table: SKU, name, color, size, quantity, sold-out marker.

import (
	"bytes"
	"fmt"
	"time"

	"github.com/DrgGomes/cft-estoque-fast/internal/model"

	"github.com/go-pdf/fpdf"
)

// GenerateStockReport renders the full variant list as a PDF and returns the
// raw bytes; the handler streams them with the right content type.
func GenerateStockReport(products []model.Product, generatedAt time.Time) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 24

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, "Stock Report", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, generatedAt.Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	// ── Table header ─────────────────────────────────────────────────────────
	colSKU := contentW * 0.24
	colName := contentW * 0.36
	colColor := contentW * 0.14
	colSize := contentW * 0.10
	colQty := contentW * 0.16

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(colSKU, 6, "SKU", "B", 0, "L", false, 0, "")
	pdf.CellFormat(colName, 6, "Product", "B", 0, "L", false, 0, "")
	pdf.CellFormat(colColor, 6, "Color", "B", 0, "L", false, 0, "")
	pdf.CellFormat(colSize, 6, "Size", "B", 0, "C", false, 0, "")
	pdf.CellFormat(colQty, 6, "Quantity", "B", 1, "R", false, 0, "")

	// ── Rows ─────────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 8)
	for _, p := range products {
		sku := "-"
		if p.SKU != nil {
			sku = *p.SKU
		}
		name := p.Name
		if len(name) > 38 {
			name = name[:37] + "…"
		}

		qty := fmt.Sprintf("%d", p.Quantity)
		if p.Quantity == 0 {
			qty = "SOLD OUT"
		}

		pdf.CellFormat(colSKU, 5, sku, "", 0, "L", false, 0, "")
		pdf.CellFormat(colName, 5, name, "", 0, "L", false, 0, "")
		pdf.CellFormat(colColor, 5, p.Color, "", 0, "L", false, 0, "")
		pdf.CellFormat(colSize, 5, p.Size, "", 0, "C", false, 0, "")
		pdf.CellFormat(colQty, 5, qty, "", 1, "R", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render stock report: %w", err)
	}
	return buf.Bytes(), nil
}
