package models

import "time"

// Purchase order lifecycle states. Transitions are guarded in the
// handler: draft -> approved -> received, cancel allowed before received.
const (
	OrderDraft     = "draft"
	OrderApproved  = "approved"
	OrderReceived  = "received"
	OrderCancelled = "cancelled"
)

type PurchaseOrder struct {
	ID           int                 `json:"id"`
	OrderNumber  string              `json:"order_number"`
	SupplierID   int                 `json:"supplier_id"`
	SupplierName string              `json:"supplier_name"`
	Status       string              `json:"status"`
	Currency     string              `json:"currency"`
	ExchangeRate *float64            `json:"exchange_rate,omitempty"`
	TotalAmount  float64             `json:"total_amount"`
	Notes        string              `json:"notes"`
	CreatedBy    int                 `json:"created_by"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
	Items        []PurchaseOrderItem `json:"items"`
}

type PurchaseOrderItem struct {
	ID           int     `json:"id"`
	OrderID      int     `json:"order_id"`
	MaterialID   int     `json:"material_id"`
	MaterialName string  `json:"material_name"`
	Quantity     float64 `json:"quantity"`
	UnitPrice    float64 `json:"unit_price"`
}
