package services

import (
	"testing"

	"backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ratePtr(r float64) *float64 { return &r }

func mapLookup(names map[int]string) SupplierNameLookup {
	return SupplierNameLookupFunc(func(id int) (string, error) {
		if name, ok := names[id]; ok {
			return name, nil
		}
		return "", assert.AnError
	})
}

func TestComputeUSDPassesThroughUnchanged(t *testing.T) {
	materials := []models.MaterialComparison{{
		Material: models.Material{ID: 1, Name: "Cemento"},
		Quotes: []models.QuoteEntry{
			{SupplierID: 10, SupplierName: "Ferretería A", UnitPrice: 12.5, Currency: models.CurrencyUSD},
		},
	}}

	results := ComputeComparisonResults(materials, nil)
	require.Len(t, results, 1)
	entry := results[0].Entries[0]
	require.True(t, entry.IsValid)
	require.NotNil(t, entry.ConvertedPrice)
	assert.Equal(t, 12.5, *entry.ConvertedPrice)
	assert.Empty(t, entry.Error)
}

func TestComputeVESDividesByRate(t *testing.T) {
	cases := []struct {
		name       string
		price      float64
		entryRate  *float64
		globalRate *float64
		want       float64
	}{
		{"entry rate", 400, ratePtr(40), nil, 10},
		{"global rate fallback", 200, nil, ratePtr(50), 4},
		{"entry rate wins over global", 400, ratePtr(40), ratePtr(100), 10},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			materials := []models.MaterialComparison{{
				Material: models.Material{ID: 1, Name: "Harina"},
				Quotes: []models.QuoteEntry{
					{SupplierID: 7, UnitPrice: tc.price, Currency: models.CurrencyVES, ExchangeRate: tc.entryRate},
				},
			}}

			results := ComputeComparisonResults(materials, tc.globalRate)
			entry := results[0].Entries[0]
			require.True(t, entry.IsValid)
			require.NotNil(t, entry.ConvertedPrice)
			assert.Equal(t, tc.want, *entry.ConvertedPrice)
		})
	}
}

func TestComputeVESWithoutRateIsInvalid(t *testing.T) {
	materials := []models.MaterialComparison{{
		Material: models.Material{ID: 2, Name: "Harina"},
		Quotes: []models.QuoteEntry{
			{SupplierID: 3, SupplierName: "SupplierC", UnitPrice: 5, Currency: models.CurrencyVES},
		},
	}}

	results := ComputeComparisonResults(materials, nil)
	entry := results[0].Entries[0]
	assert.False(t, entry.IsValid)
	assert.Nil(t, entry.ConvertedPrice)
	assert.Equal(t, MsgMissingVESRate, entry.Error)
	assert.Nil(t, results[0].BestPrice)
}

func TestComputeNonPositiveRateIsInvalid(t *testing.T) {
	zero := 0.0
	materials := []models.MaterialComparison{{
		Material: models.Material{ID: 2, Name: "Harina"},
		Quotes: []models.QuoteEntry{
			{SupplierID: 3, UnitPrice: 5, Currency: models.CurrencyVES, ExchangeRate: &zero},
		},
	}}

	results := ComputeComparisonResults(materials, nil)
	entry := results[0].Entries[0]
	assert.False(t, entry.IsValid)
	assert.Equal(t, MsgMissingVESRate, entry.Error)
}

func TestComputeIncompleteEntriesAreInvalid(t *testing.T) {
	cases := []struct {
		name  string
		entry models.QuoteEntry
	}{
		{"no supplier", models.QuoteEntry{UnitPrice: 10, Currency: models.CurrencyUSD}},
		{"zero price", models.QuoteEntry{SupplierID: 1, UnitPrice: 0, Currency: models.CurrencyUSD}},
		{"negative price", models.QuoteEntry{SupplierID: 1, UnitPrice: -4, Currency: models.CurrencyVES, ExchangeRate: ratePtr(40)}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			materials := []models.MaterialComparison{{
				Material: models.Material{ID: 1, Name: "Azúcar"},
				Quotes:   []models.QuoteEntry{tc.entry},
			}}

			entry := ComputeComparisonResults(materials, ratePtr(40))[0].Entries[0]
			assert.False(t, entry.IsValid)
			assert.Nil(t, entry.ConvertedPrice)
			assert.Equal(t, MsgIncompleteData, entry.Error)
		})
	}
}

// Scenario from the product team: two quotes for "Pollo", one in USD
// and one in VES, that land on the same converted price. Both must be
// flagged best.
func TestComputeTieFlagsAllBestEntries(t *testing.T) {
	materials := []models.MaterialComparison{{
		Material: models.Material{ID: 5, Name: "Pollo"},
		Quotes: []models.QuoteEntry{
			{SupplierID: 1, SupplierName: "SupplierA", UnitPrice: 10, Currency: models.CurrencyUSD},
			{SupplierID: 2, SupplierName: "SupplierB", UnitPrice: 400, Currency: models.CurrencyVES, ExchangeRate: ratePtr(40)},
		},
	}}

	result := ComputeComparisonResults(materials, nil)[0]
	require.NotNil(t, result.BestPrice)
	assert.Equal(t, 10.0, *result.BestPrice)

	for _, entry := range result.Entries {
		require.True(t, entry.IsValid)
		assert.Equal(t, 10.0, *entry.ConvertedPrice)
		assert.True(t, entry.IsBest)
	}
}

func TestComputeBestPriceSkipsInvalidEntries(t *testing.T) {
	materials := []models.MaterialComparison{{
		Material: models.Material{ID: 9, Name: "Aceite"},
		Quotes: []models.QuoteEntry{
			{SupplierID: 1, UnitPrice: 8, Currency: models.CurrencyUSD},
			{SupplierID: 2, UnitPrice: 120, Currency: models.CurrencyVES}, // no rate: invalid
			{SupplierID: 3, UnitPrice: 6.5, Currency: models.CurrencyUSD},
		},
	}}

	result := ComputeComparisonResults(materials, nil)[0]
	require.NotNil(t, result.BestPrice)
	assert.Equal(t, 6.5, *result.BestPrice)
	assert.False(t, result.Entries[0].IsBest)
	assert.False(t, result.Entries[1].IsValid)
	assert.True(t, result.Entries[2].IsBest)
}

func TestComputeIsDeterministicAndPure(t *testing.T) {
	materials := []models.MaterialComparison{{
		Material: models.Material{ID: 1, Name: "Cemento"},
		Quotes: []models.QuoteEntry{
			{SupplierID: 1, UnitPrice: 100, Currency: models.CurrencyVES, ExchangeRate: ratePtr(25)},
			{SupplierID: 2, UnitPrice: 3, Currency: models.CurrencyUSD},
		},
	}}

	first := ComputeComparisonResults(materials, ratePtr(40))
	second := ComputeComparisonResults(materials, ratePtr(40))
	assert.Equal(t, first, second)

	// Inputs must not be mutated by the computation.
	assert.Equal(t, 100.0, materials[0].Quotes[0].UnitPrice)
	assert.Equal(t, 25.0, *materials[0].Quotes[0].ExchangeRate)
}

func TestAddMaterialRejectsDuplicates(t *testing.T) {
	s := NewComparisonSession(nil)
	require.NoError(t, s.AddMaterial(models.Material{ID: 1, Name: "Cemento"}))

	err := s.AddMaterial(models.Material{ID: 1, Name: "Cemento"})
	require.ErrorIs(t, err, ErrDuplicateMaterial)
	assert.Len(t, s.Materials, 1)
}

func TestRemoveMaterialIsIdempotent(t *testing.T) {
	s := NewComparisonSession(nil)
	require.NoError(t, s.AddMaterial(models.Material{ID: 1, Name: "Cemento"}))

	s.RemoveMaterial(99)
	assert.Len(t, s.Materials, 1)

	s.RemoveMaterial(1)
	s.RemoveMaterial(1)
	assert.Empty(t, s.Materials)
}

func TestAddQuoteEntryDefaults(t *testing.T) {
	s := NewComparisonSession(nil)
	require.NoError(t, s.AddMaterial(models.Material{ID: 1, Name: "Cemento"}))

	// USD input currency: no exchange rate attached.
	s.AddQuoteEntry(1)
	require.Len(t, s.Materials[0].Quotes, 1)
	assert.Equal(t, models.CurrencyUSD, s.Materials[0].Quotes[0].Currency)
	assert.Nil(t, s.Materials[0].Quotes[0].ExchangeRate)

	// VES input currency inherits the global rate.
	s.InputCurrency = models.CurrencyVES
	s.GlobalRate = ratePtr(36.5)
	s.AddQuoteEntry(1)
	entry := s.Materials[0].Quotes[1]
	assert.Equal(t, models.CurrencyVES, entry.Currency)
	require.NotNil(t, entry.ExchangeRate)
	assert.Equal(t, 36.5, *entry.ExchangeRate)

	// Unknown material id: silent no-op.
	s.AddQuoteEntry(42)
	assert.Len(t, s.Materials[0].Quotes, 2)
}

func TestUpdateQuoteEntryCurrencySwitchClearsRate(t *testing.T) {
	s := NewComparisonSession(nil)
	require.NoError(t, s.AddMaterial(models.Material{ID: 1, Name: "Cemento"}))
	s.AddQuoteEntry(1)

	require.NoError(t, s.UpdateQuoteEntry(1, 0, FieldCurrency, models.CurrencyVES))
	require.NoError(t, s.UpdateQuoteEntry(1, 0, FieldExchangeRate, 40.0))
	require.NotNil(t, s.Materials[0].Quotes[0].ExchangeRate)

	require.NoError(t, s.UpdateQuoteEntry(1, 0, FieldCurrency, models.CurrencyUSD))
	assert.Nil(t, s.Materials[0].Quotes[0].ExchangeRate)
}

func TestUpdateQuoteEntryRefreshesSupplierName(t *testing.T) {
	s := NewComparisonSession(mapLookup(map[int]string{7: "Distribuidora Central"}))
	require.NoError(t, s.AddMaterial(models.Material{ID: 1, Name: "Cemento"}))
	s.AddQuoteEntry(1)

	require.NoError(t, s.UpdateQuoteEntry(1, 0, FieldSupplierID, 7))
	assert.Equal(t, "Distribuidora Central", s.Materials[0].Quotes[0].SupplierName)

	// Unresolvable supplier leaves the cached name empty, never stale.
	require.NoError(t, s.UpdateQuoteEntry(1, 0, FieldSupplierID, 99))
	assert.Equal(t, "", s.Materials[0].Quotes[0].SupplierName)
}

func TestUpdateQuoteEntryIndexOutOfRange(t *testing.T) {
	s := NewComparisonSession(nil)
	require.NoError(t, s.AddMaterial(models.Material{ID: 1, Name: "Cemento"}))
	s.AddQuoteEntry(1)

	assert.ErrorIs(t, s.UpdateQuoteEntry(1, 3, FieldUnitPrice, 10.0), ErrEntryIndex)
	assert.ErrorIs(t, s.UpdateQuoteEntry(1, -1, FieldUnitPrice, 10.0), ErrEntryIndex)
	assert.ErrorIs(t, s.UpdateQuoteEntry(2, 0, FieldUnitPrice, 10.0), ErrEntryIndex)
}

func TestRemoveQuoteEntryByPosition(t *testing.T) {
	s := NewComparisonSession(nil)
	require.NoError(t, s.AddMaterial(models.Material{ID: 1, Name: "Cemento"}))
	s.AddQuoteEntry(1)
	s.AddQuoteEntry(1)
	require.NoError(t, s.UpdateQuoteEntry(1, 0, FieldUnitPrice, 1.0))
	require.NoError(t, s.UpdateQuoteEntry(1, 1, FieldUnitPrice, 2.0))

	require.NoError(t, s.RemoveQuoteEntry(1, 0))
	require.Len(t, s.Materials[0].Quotes, 1)
	assert.Equal(t, 2.0, s.Materials[0].Quotes[0].UnitPrice)

	assert.ErrorIs(t, s.RemoveQuoteEntry(1, 5), ErrEntryIndex)
}

func TestSnapshotRequiresMaterials(t *testing.T) {
	s := NewComparisonSession(nil)
	_, err := s.Snapshot("Octubre", 1)
	assert.ErrorIs(t, err, ErrEmptyComparison)
}

func TestSnapshotLoadRoundTrip(t *testing.T) {
	s := NewComparisonSession(mapLookup(map[int]string{1: "SupplierA", 2: "SupplierB", 3: "SupplierC"}))
	s.GlobalRate = ratePtr(36.0)

	require.NoError(t, s.AddMaterial(models.Material{ID: 1, Name: "Pollo"}))
	require.NoError(t, s.AddMaterial(models.Material{ID: 2, Name: "Harina"}))

	s.AddQuoteEntry(1)
	require.NoError(t, s.UpdateQuoteEntry(1, 0, FieldSupplierID, 1))
	require.NoError(t, s.UpdateQuoteEntry(1, 0, FieldUnitPrice, 10.0))

	s.AddQuoteEntry(1)
	require.NoError(t, s.UpdateQuoteEntry(1, 1, FieldSupplierID, 2))
	require.NoError(t, s.UpdateQuoteEntry(1, 1, FieldCurrency, models.CurrencyVES))
	require.NoError(t, s.UpdateQuoteEntry(1, 1, FieldExchangeRate, 40.0))
	require.NoError(t, s.UpdateQuoteEntry(1, 1, FieldUnitPrice, 400.0))

	s.AddQuoteEntry(2)
	require.NoError(t, s.UpdateQuoteEntry(2, 0, FieldSupplierID, 3))
	require.NoError(t, s.UpdateQuoteEntry(2, 0, FieldUnitPrice, 5.0))

	snap, err := s.Snapshot("Octubre", 42)
	require.NoError(t, err)
	assert.Equal(t, "Octubre", snap.Name)
	assert.Equal(t, models.CurrencyUSD, snap.BaseCurrency)
	assert.Equal(t, 42, snap.CreatedBy)
	require.Len(t, snap.Items, 2)

	// Simulate the persistence layer assigning an id.
	snap.ID = 17

	restored := NewComparisonSession(nil)
	restored.LoadSnapshot(snap)

	assert.Equal(t, 17, restored.SnapshotID)
	assert.Equal(t, models.CurrencyUSD, restored.BaseCurrency)
	require.NotNil(t, restored.GlobalRate)
	assert.Equal(t, 36.0, *restored.GlobalRate)

	require.Len(t, restored.Materials, 2)
	assert.Equal(t, "Pollo", restored.Materials[0].Material.Name)
	assert.Equal(t, "Harina", restored.Materials[1].Material.Name)
	assert.Equal(t, s.Materials[0].Quotes, restored.Materials[0].Quotes)
	assert.Equal(t, s.Materials[1].Quotes, restored.Materials[1].Quotes)

	// The reloaded comparison computes the same results.
	assert.Equal(t, s.Results(), restored.Results())
}

func TestResetReturnsToUnsavedMode(t *testing.T) {
	s := NewComparisonSession(nil)
	require.NoError(t, s.AddMaterial(models.Material{ID: 1, Name: "Cemento"}))
	s.SnapshotID = 9
	s.GlobalRate = ratePtr(40)

	s.Reset()
	assert.Zero(t, s.SnapshotID)
	assert.Nil(t, s.GlobalRate)
	assert.Empty(t, s.Materials)
	assert.Equal(t, models.CurrencyUSD, s.InputCurrency)
}
