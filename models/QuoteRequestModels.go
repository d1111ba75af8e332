package models

import "time"

// Quote request lifecycle states.
const (
	QuoteRequestDraft  = "draft"
	QuoteRequestSent   = "sent"
	QuoteRequestClosed = "closed"
)

// QuoteRequest asks one supplier to price a list of materials.
type QuoteRequest struct {
	ID            int                `json:"id"`
	RequestNumber string             `json:"request_number"`
	SupplierID    int                `json:"supplier_id"`
	SupplierName  string             `json:"supplier_name"`
	Status        string             `json:"status"`
	Notes         string             `json:"notes"`
	CreatedBy     int                `json:"created_by"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
	Items         []QuoteRequestItem `json:"items"`
}

type QuoteRequestItem struct {
	ID             int     `json:"id"`
	QuoteRequestID int     `json:"quote_request_id"`
	MaterialID     int     `json:"material_id"`
	MaterialName   string  `json:"material_name"`
	Quantity       float64 `json:"quantity"`
	Unit           string  `json:"unit"`
}
