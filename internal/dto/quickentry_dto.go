package dto

// ─── Quick entry (scan aggregation) ──────────────────────────────────────────

type ScanRequest struct {
	Code string `json:"code" validate:"required,min=1,max=64"`
}

// ScanFeedback is the transient advisory signal shown after each code:
// accepted (with resolved product), duplicate (debounced) or unknown.
// ExpiresAt tells the UI when to fade it out (~3 s); it carries no state.
type ScanFeedback struct {
	Status      string `json:"status"` // accepted | duplicate | unknown
	Code        string `json:"code"`
	ProductName string `json:"product_name,omitempty"`
	ExpiresAt   string `json:"expires_at"`
}

type UpdateScannedItemRequest struct {
	Count *int `json:"count" validate:"required,min=0"`
}

type ScannedItemResponse struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	SKU       string `json:"sku"`
	Color     string `json:"color"`
	Size      string `json:"size"`
	Count     int    `json:"count"`
}

type SessionResponse struct {
	ID    string                `json:"id"`
	State string                `json:"state"` // scanning | reviewing | committing
	Items []ScannedItemResponse `json:"items"`
}

type CommitResponse struct {
	Movements []MovementResponse `json:"movements"`
}
