package models

import "time"

// Supported quote currencies. USD is the base currency every price is
// normalized into; VES prices carry (or inherit) an exchange rate.
const (
	CurrencyUSD = "USD"
	CurrencyVES = "VES"
)

// QuoteEntry is one supplier's offer for one material inside a
// comparison. SupplierName is a cached display value: it must only be
// refreshed together with SupplierID, never on its own. ExchangeRate
// is a VES-only concept and stays nil for USD entries.
type QuoteEntry struct {
	SupplierID   int      `json:"supplier_id"`
	SupplierName string   `json:"supplier_name"`
	UnitPrice    float64  `json:"unit_price"`
	Currency     string   `json:"currency"`
	ExchangeRate *float64 `json:"exchange_rate,omitempty"`
}

// MaterialComparison pairs a material with its quote entries. Entry
// order is insertion order and only matters for stable rendering.
type MaterialComparison struct {
	Material Material     `json:"material"`
	Quotes   []QuoteEntry `json:"quotes"`
}

// ComparisonEntry is a QuoteEntry annotated by the comparison engine.
// ConvertedPrice is nil exactly when IsValid is false.
type ComparisonEntry struct {
	QuoteEntry
	ConvertedPrice *float64 `json:"converted_price"`
	IsValid        bool     `json:"is_valid"`
	Error          string   `json:"error,omitempty"`
	IsBest         bool     `json:"is_best"`
}

// ComparisonResult is the derived, never-persisted output for one
// material. BestPrice is nil when no entry is valid.
type ComparisonResult struct {
	Material  Material          `json:"material"`
	Entries   []ComparisonEntry `json:"entries"`
	BestPrice *float64          `json:"best_price"`
}

// QuoteComparisonItem is one persisted row of a snapshot: the material
// reference plus its quotes serialized as JSONB.
type QuoteComparisonItem struct {
	MaterialID   int          `json:"material_id"`
	MaterialName string       `json:"material_name"`
	Quotes       []QuoteEntry `json:"quotes"`
}

// QuoteComparison is a named snapshot of a full comparison state.
// Reloading it must reconstruct an equivalent in-memory comparison.
type QuoteComparison struct {
	ID           int                   `json:"id"`
	Name         string                `json:"name"`
	BaseCurrency string                `json:"base_currency"`
	ExchangeRate *float64              `json:"exchange_rate"`
	CreatedBy    int                   `json:"created_by"`
	CreatedAt    time.Time             `json:"created_at"`
	Items        []QuoteComparisonItem `json:"items"`
}

// ComputeComparisonRequest is the stateless compute endpoint's input:
// the comparison state plus the session's global exchange rate.
type ComputeComparisonRequest struct {
	ExchangeRate *float64             `json:"exchange_rate"`
	Materials    []MaterialComparison `json:"materials"`
}
