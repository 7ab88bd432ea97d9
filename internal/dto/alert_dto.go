package dto

type AlertResponse struct {
	ID          string `json:"id"`
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Color       string `json:"color"`
	Size        string `json:"size"`
	DetectedAt  string `json:"detected_at"`
}

type AlertListResponse struct {
	Data  []AlertResponse `json:"data"`
	Total int64           `json:"total"`
}
