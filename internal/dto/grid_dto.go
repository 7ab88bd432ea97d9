package dto

import "github.com/DrgGomes/cft-estoque-fast/internal/grid"

// GridPreviewRequest regenerates the variation rows for the given color and
// size sets. Previous rows are passed back so typed barcodes survive
// regeneration after a set or base-SKU change.
type GridPreviewRequest struct {
	BaseSKU  string     `json:"base_sku"`
	Colors   []string   `json:"colors" validate:"required,min=1,unique"`
	Sizes    []string   `json:"sizes"  validate:"required,min=1,unique"`
	Previous []grid.Row `json:"previous"`
}

type GridPreviewResponse struct {
	Rows []grid.Row `json:"rows"`
}

// GridCreateRequest bulk-creates one product per row, each at quantity 0.
type GridCreateRequest struct {
	Name    string     `json:"name"  validate:"required,min=2,max=120"`
	Image   *string    `json:"image" validate:"omitempty,url"`
	BaseSKU string     `json:"base_sku" validate:"required"`
	Rows    []grid.Row `json:"rows"  validate:"required,min=1"`
}

type GridCreateResponse struct {
	Created []ProductResponse `json:"created"`
}
