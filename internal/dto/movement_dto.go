package dto

type MovementFilter struct {
	ProductID string `form:"product_id" validate:"omitempty,uuid"`
	Type      string `form:"type"       validate:"omitempty,oneof=entry exit correction"`
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type MovementResponse struct {
	ID          string `json:"id"`
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	SKU         string `json:"sku"`
	Image       string `json:"image,omitempty"`
	Type        string `json:"type"`
	Amount      int    `json:"amount"`
	PreviousQty int    `json:"previous_qty"`
	NewQty      int    `json:"new_qty"`
	Timestamp   string `json:"timestamp"`
}

type MovementListResponse struct {
	Data       []MovementResponse `json:"data"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
}
