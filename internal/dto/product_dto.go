package dto

import "github.com/DrgGomes/cft-estoque-fast/internal/model"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateProductRequest struct {
	Name    string  `json:"name"    validate:"required,min=2,max=120"`
	SKU     *string `json:"sku"     validate:"omitempty,min=1,max=60"`
	Barcode *string `json:"barcode" validate:"omitempty,min=4,max=18"`
	Image   *string `json:"image"   validate:"omitempty,url"`
	Color   string  `json:"color"   validate:"required,max=40"`
	Size    string  `json:"size"    validate:"required,max=20"`
}

type UpdateProductRequest struct {
	Name    *string `json:"name"    validate:"omitempty,min=2,max=120"`
	SKU     *string `json:"sku"     validate:"omitempty,min=1,max=60"`
	Barcode *string `json:"barcode" validate:"omitempty,min=4,max=18"`
	Image   *string `json:"image"   validate:"omitempty,url"`
	Color   *string `json:"color"   validate:"omitempty,max=40"`
	Size    *string `json:"size"    validate:"omitempty,max=20"`
}

// SetQuantityRequest is the direct-edit path: the caller states the desired
// absolute quantity and the service derives the signed delta from current
// stock. Quantity 0 is the explicit "zero out".
type SetQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,min=0"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProductFilter struct {
	// Search matches name, sku and barcode case-insensitively (substring).
	Search  string `form:"search"`
	Barcode string `form:"barcode"`
	Page    int    `form:"page,default=1"   validate:"min=1"`
	Limit   int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	SKU      *string `json:"sku"`
	Barcode  *string `json:"barcode"`
	Image    *string `json:"image"`
	Color    string  `json:"color"`
	Size     string  `json:"size"`
	Quantity int     `json:"quantity"`
	// UpdatedAt is null while a write is still in flight server-side.
	UpdatedAt model.ServerTime `json:"updated_at"`
}

type ProductListResponse struct {
	Data       []ProductResponse `json:"data"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}
