package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExchangeRateRefreshPrefersPromedio(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"fuente":"oficial","promedio":36.42,"valor":36.50}`))
	}))
	defer srv.Close()

	s := NewExchangeRateService(srv.URL)
	require.NoError(t, s.Refresh(context.Background()))

	rate, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, 36.42, rate.Rate)
	assert.Equal(t, "oficial", rate.Source)
	assert.False(t, rate.FetchedAt.IsZero())
}

func TestExchangeRateRefreshFallsBackToValor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"valor":40.1}`))
	}))
	defer srv.Close()

	s := NewExchangeRateService(srv.URL)
	require.NoError(t, s.Refresh(context.Background()))

	rate, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, 40.1, rate.Rate)
}

func TestExchangeRateRefreshRejectsNonPositiveValues(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"promedio":0,"valor":-3}`))
	}))
	defer srv.Close()

	s := NewExchangeRateService(srv.URL)
	require.Error(t, s.Refresh(context.Background()))

	_, ok := s.Current()
	assert.False(t, ok)
}

func TestExchangeRateFailedRefreshKeepsLastGoodValue(t *testing.T) {
	fail := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"promedio":36.42}`))
	}))
	defer srv.Close()

	s := NewExchangeRateService(srv.URL)
	require.NoError(t, s.Refresh(context.Background()))

	fail = true
	require.Error(t, s.Refresh(context.Background()))

	rate, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, 36.42, rate.Rate)
}
