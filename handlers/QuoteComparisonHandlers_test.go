package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"backend/models"
	"backend/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func computeRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/quote_comparison/compute", ComputeQuoteComparison())
	return r
}

func postCompute(t *testing.T, r *gin.Engine, req models.ComputeComparisonRequest) (*httptest.ResponseRecorder, []models.ComparisonResult) {
	t.Helper()

	body, err := json.Marshal(req)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	httpReq := httptest.NewRequest(http.MethodPost, "/api/quote_comparison/compute", bytes.NewReader(body))
	httpReq.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, httpReq)

	var results []models.ComparisonResult
	if w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
	}
	return w, results
}

func TestComputeEndpointConvertsVESAndFlagsBest(t *testing.T) {
	r := computeRouter()
	globalRate := 40.0

	w, results := postCompute(t, r, models.ComputeComparisonRequest{
		ExchangeRate: &globalRate,
		Materials: []models.MaterialComparison{
			{
				Material: models.Material{ID: 1, Name: "Cemento"},
				Quotes: []models.QuoteEntry{
					{SupplierID: 1, SupplierName: "Proveedor A", UnitPrice: 12, Currency: models.CurrencyUSD},
					{SupplierID: 2, SupplierName: "Proveedor B", UnitPrice: 400, Currency: models.CurrencyVES},
				},
			},
		},
	})

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, results, 1)
	require.Len(t, results[0].Entries, 2)

	// 400 VES / 40 = 10 USD beats the 12 USD offer.
	require.NotNil(t, results[0].BestPrice)
	require.InDelta(t, 10.0, *results[0].BestPrice, 1e-9)
	require.False(t, results[0].Entries[0].IsBest)
	require.True(t, results[0].Entries[1].IsBest)
	require.InDelta(t, 10.0, *results[0].Entries[1].ConvertedPrice, 1e-9)
}

func TestComputeEndpointReportsMissingRate(t *testing.T) {
	r := computeRouter()

	w, results := postCompute(t, r, models.ComputeComparisonRequest{
		Materials: []models.MaterialComparison{
			{
				Material: models.Material{ID: 2, Name: "Cabilla"},
				Quotes: []models.QuoteEntry{
					{SupplierID: 3, SupplierName: "Proveedor C", UnitPrice: 900, Currency: models.CurrencyVES},
				},
			},
		},
	})

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, results, 1)
	require.Nil(t, results[0].BestPrice)

	entry := results[0].Entries[0]
	require.False(t, entry.IsValid)
	require.Nil(t, entry.ConvertedPrice)
	require.Equal(t, services.MsgMissingVESRate, entry.Error)
}

func TestComputeEndpointRejectsMalformedBody(t *testing.T) {
	r := computeRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/quote_comparison/compute", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}
