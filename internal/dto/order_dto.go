package dto

// ─── Order message composition ───────────────────────────────────────────────
// The core only builds the structured (description, quantity) list; message
// formatting and delivery are external collaborators.

type OrderMessageRequest struct {
	CustomerName string             `json:"customer_name" validate:"required,min=2,max=120"`
	Items        []OrderItemRequest `json:"items"         validate:"required,min=1,dive"`
}

type OrderItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity"   validate:"required,min=1"`
}

// OrderLine pairs a sku-or-description with a quantity.
type OrderLine struct {
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
}

type OrderMessageResponse struct {
	CustomerName string      `json:"customer_name"`
	Lines        []OrderLine `json:"lines"`
	// Message is present when a composer collaborator is configured.
	Message string `json:"message,omitempty"`
}
