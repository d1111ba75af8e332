package models

import "time"

// Supplier is a vendor that can quote and deliver materials.
type Supplier struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	RIF          string    `json:"rif"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Address      string    `json:"address"`
	PaymentTerms string    `json:"payment_terms"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	CreatedBy    int       `json:"created_by"`
}
