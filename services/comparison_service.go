package services

import (
	"backend/models"
	"errors"
	"fmt"
	"math"
)

// Per-entry validation messages, surfaced inline next to the offending
// quote entry. They never abort the computation of other entries.
const (
	MsgIncompleteData  = "Datos incompletos o inválidos."
	MsgMissingVESRate  = "Falta Tasa de Cambio para VES a USD."
	MsgConversionError = "Error en el cálculo de conversión."
)

var (
	// ErrDuplicateMaterial is returned by AddMaterial when the material
	// is already part of the comparison. The caller surfaces it; the
	// session state is left unchanged.
	ErrDuplicateMaterial = errors.New("material already added to the comparison")

	// ErrEntryIndex is returned when a quote entry index does not exist
	// for the addressed material.
	ErrEntryIndex = errors.New("quote entry index out of range")

	// ErrEmptyComparison is returned when saving a comparison that has
	// no materials.
	ErrEmptyComparison = errors.New("at least one material is required")

	// ErrUnknownField is returned by UpdateQuoteEntry for a field name
	// it does not know.
	ErrUnknownField = errors.New("unknown quote entry field")
)

// Updatable quote entry fields accepted by UpdateQuoteEntry.
const (
	FieldSupplierID   = "supplierId"
	FieldUnitPrice    = "unitPrice"
	FieldCurrency     = "currency"
	FieldExchangeRate = "exchangeRate"
)

// SupplierNameLookup resolves a supplier id to its display name, so the
// denormalized SupplierName on a quote entry can be refreshed in the
// same call that changes SupplierID.
type SupplierNameLookup interface {
	SupplierName(supplierID int) (string, error)
}

// SupplierNameLookupFunc adapts a plain function to SupplierNameLookup.
type SupplierNameLookupFunc func(supplierID int) (string, error)

func (f SupplierNameLookupFunc) SupplierName(supplierID int) (string, error) {
	return f(supplierID)
}

// ComparisonSession holds the in-memory state of one quote comparison
// being built. All mutations are synchronous; derived results come from
// ComputeComparisonResults and are never stored back.
//
// A session is in one of two modes: unsaved/new (SnapshotID == 0, a
// save inserts) or bound (SnapshotID > 0, a save updates that id).
type ComparisonSession struct {
	BaseCurrency  string
	InputCurrency string
	GlobalRate    *float64
	SnapshotID    int
	Materials     []models.MaterialComparison

	names SupplierNameLookup
}

// NewComparisonSession starts an empty unsaved comparison. The base
// currency is always USD; InputCurrency is the default currency new
// quote entries are created with.
func NewComparisonSession(names SupplierNameLookup) *ComparisonSession {
	return &ComparisonSession{
		BaseCurrency:  models.CurrencyUSD,
		InputCurrency: models.CurrencyUSD,
		names:         names,
	}
}

// AddMaterial appends a material with an empty quote list. A material
// already present is rejected, never silently merged.
func (s *ComparisonSession) AddMaterial(m models.Material) error {
	for _, mc := range s.Materials {
		if mc.Material.ID == m.ID {
			return fmt.Errorf("%w: %s", ErrDuplicateMaterial, m.Name)
		}
	}
	s.Materials = append(s.Materials, models.MaterialComparison{Material: m, Quotes: []models.QuoteEntry{}})
	return nil
}

// RemoveMaterial drops the material from the comparison. Removing an
// absent id is a no-op.
func (s *ComparisonSession) RemoveMaterial(materialID int) {
	for i, mc := range s.Materials {
		if mc.Material.ID == materialID {
			s.Materials = append(s.Materials[:i], s.Materials[i+1:]...)
			return
		}
	}
}

// AddQuoteEntry appends an empty quote entry to the material, defaulting
// the currency to the session input currency and the exchange rate to
// the global rate only when that currency is VES. Unknown material ids
// are ignored.
func (s *ComparisonSession) AddQuoteEntry(materialID int) {
	for i, mc := range s.Materials {
		if mc.Material.ID != materialID {
			continue
		}
		entry := models.QuoteEntry{Currency: s.InputCurrency}
		if entry.Currency == models.CurrencyVES && s.GlobalRate != nil {
			rate := *s.GlobalRate
			entry.ExchangeRate = &rate
		}
		s.Materials[i].Quotes = append(s.Materials[i].Quotes, entry)
		return
	}
}

// UpdateQuoteEntry mutates one field of one quote entry. Switching the
// currency to USD clears the exchange rate; changing the supplier id
// refreshes the cached supplier name through the session lookup (an
// unresolvable supplier leaves the name empty rather than stale).
func (s *ComparisonSession) UpdateQuoteEntry(materialID, index int, field string, value interface{}) error {
	for i, mc := range s.Materials {
		if mc.Material.ID != materialID {
			continue
		}
		if index < 0 || index >= len(mc.Quotes) {
			return fmt.Errorf("%w: material %d index %d", ErrEntryIndex, materialID, index)
		}
		entry := &s.Materials[i].Quotes[index]

		switch field {
		case FieldSupplierID:
			id, ok := toInt(value)
			if !ok {
				return fmt.Errorf("%w: supplierId must be numeric", ErrUnknownField)
			}
			entry.SupplierID = id
			entry.SupplierName = ""
			if s.names != nil && id != 0 {
				if name, err := s.names.SupplierName(id); err == nil {
					entry.SupplierName = name
				}
			}
		case FieldUnitPrice:
			price, ok := toFloat(value)
			if !ok {
				return fmt.Errorf("%w: unitPrice must be numeric", ErrUnknownField)
			}
			entry.UnitPrice = price
		case FieldCurrency:
			currency, ok := value.(string)
			if !ok || (currency != models.CurrencyUSD && currency != models.CurrencyVES) {
				return fmt.Errorf("%w: currency must be USD or VES", ErrUnknownField)
			}
			entry.Currency = currency
			if currency == models.CurrencyUSD {
				entry.ExchangeRate = nil
			}
		case FieldExchangeRate:
			if value == nil {
				entry.ExchangeRate = nil
				return nil
			}
			rate, ok := toFloat(value)
			if !ok {
				return fmt.Errorf("%w: exchangeRate must be numeric", ErrUnknownField)
			}
			entry.ExchangeRate = &rate
		default:
			return fmt.Errorf("%w: %q", ErrUnknownField, field)
		}
		return nil
	}
	return fmt.Errorf("%w: material %d not in comparison", ErrEntryIndex, materialID)
}

// RemoveQuoteEntry removes one entry by position.
func (s *ComparisonSession) RemoveQuoteEntry(materialID, index int) error {
	for i, mc := range s.Materials {
		if mc.Material.ID != materialID {
			continue
		}
		if index < 0 || index >= len(mc.Quotes) {
			return fmt.Errorf("%w: material %d index %d", ErrEntryIndex, materialID, index)
		}
		s.Materials[i].Quotes = append(mc.Quotes[:index], mc.Quotes[index+1:]...)
		return nil
	}
	return fmt.Errorf("%w: material %d not in comparison", ErrEntryIndex, materialID)
}

// Reset returns the session to unsaved/new mode with an empty material
// list, discarding unsaved edits.
func (s *ComparisonSession) Reset() {
	s.SnapshotID = 0
	s.GlobalRate = nil
	s.InputCurrency = models.CurrencyUSD
	s.Materials = nil
}

// Results recomputes the derived comparison for the current state.
func (s *ComparisonSession) Results() []models.ComparisonResult {
	return ComputeComparisonResults(s.Materials, s.GlobalRate)
}

// Snapshot serializes the session into its persisted form. The returned
// snapshot carries the session's bound id (0 means insert).
func (s *ComparisonSession) Snapshot(name string, createdBy int) (models.QuoteComparison, error) {
	if len(s.Materials) == 0 {
		return models.QuoteComparison{}, ErrEmptyComparison
	}
	snap := models.QuoteComparison{
		ID:           s.SnapshotID,
		Name:         name,
		BaseCurrency: s.BaseCurrency,
		ExchangeRate: s.GlobalRate,
		CreatedBy:    createdBy,
	}
	for _, mc := range s.Materials {
		quotes := make([]models.QuoteEntry, len(mc.Quotes))
		copy(quotes, mc.Quotes)
		snap.Items = append(snap.Items, models.QuoteComparisonItem{
			MaterialID:   mc.Material.ID,
			MaterialName: mc.Material.Name,
			Quotes:       quotes,
		})
	}
	return snap, nil
}

// LoadSnapshot replaces the session state with a persisted snapshot,
// binding the session to its id. load(save(state)) reproduces an
// equivalent comparison, modulo the assigned id.
func (s *ComparisonSession) LoadSnapshot(snap models.QuoteComparison) {
	s.SnapshotID = snap.ID
	s.BaseCurrency = snap.BaseCurrency
	if s.BaseCurrency == "" {
		s.BaseCurrency = models.CurrencyUSD
	}
	s.GlobalRate = snap.ExchangeRate
	s.Materials = nil
	for _, item := range snap.Items {
		quotes := make([]models.QuoteEntry, len(item.Quotes))
		copy(quotes, item.Quotes)
		s.Materials = append(s.Materials, models.MaterialComparison{
			Material: models.Material{ID: item.MaterialID, Name: item.MaterialName},
			Quotes:   quotes,
		})
	}
}

// ComputeComparisonResults normalizes every quote entry into USD and
// picks the lowest valid price per material. Pure: the same inputs
// always produce the same results, and the inputs are never mutated.
//
// Rate resolution for VES entries: the entry's own rate wins, otherwise
// the global rate applies. VES prices are divided by the rate (VES is
// the higher-denomination currency being reduced to USD).
func ComputeComparisonResults(materials []models.MaterialComparison, globalRate *float64) []models.ComparisonResult {
	results := make([]models.ComparisonResult, 0, len(materials))

	for _, mc := range materials {
		result := models.ComparisonResult{
			Material: mc.Material,
			Entries:  make([]models.ComparisonEntry, 0, len(mc.Quotes)),
		}

		for _, quote := range mc.Quotes {
			entry := models.ComparisonEntry{QuoteEntry: quote}

			rateToUse := quote.ExchangeRate
			if quote.Currency == models.CurrencyVES && rateToUse == nil {
				rateToUse = globalRate
			}

			switch {
			case quote.SupplierID == 0 || quote.UnitPrice <= 0:
				entry.Error = MsgIncompleteData
			case quote.Currency == models.CurrencyVES && (rateToUse == nil || *rateToUse <= 0):
				entry.Error = MsgMissingVESRate
			default:
				converted := quote.UnitPrice
				if quote.Currency == models.CurrencyVES {
					converted = quote.UnitPrice / *rateToUse
				}
				if math.IsNaN(converted) || math.IsInf(converted, 0) {
					entry.Error = MsgConversionError
				} else {
					entry.ConvertedPrice = &converted
					entry.IsValid = true
				}
			}

			result.Entries = append(result.Entries, entry)
		}

		for i := range result.Entries {
			e := result.Entries[i]
			if !e.IsValid || e.ConvertedPrice == nil {
				continue
			}
			if result.BestPrice == nil || *e.ConvertedPrice < *result.BestPrice {
				price := *e.ConvertedPrice
				result.BestPrice = &price
			}
		}

		// Ties: every entry matching the minimum is flagged best.
		if result.BestPrice != nil {
			for i := range result.Entries {
				e := &result.Entries[i]
				if e.IsValid && e.ConvertedPrice != nil && *e.ConvertedPrice == *result.BestPrice {
					e.IsBest = true
				}
			}
		}

		results = append(results, result)
	}

	return results
}

func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
