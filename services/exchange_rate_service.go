package services

import (
	"backend/models"
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultBCVRateURL is the public endpoint for the official USD/VES
// rate. Overridable through BCV_API_URL.
const DefaultBCVRateURL = "https://ve.dolarapi.com/v1/dolares/oficial"

// ExchangeRateService fetches and caches the official daily USD/VES
// rate. Fetching is best-effort: a failed refresh leaves the last good
// rate in place and never blocks anything else; when no rate was ever
// obtained the user enters one manually.
type ExchangeRateService struct {
	client *resty.Client
	apiURL string

	mu      sync.RWMutex
	current *models.DailyRate
}

func NewExchangeRateService(apiURL string) *ExchangeRateService {
	if apiURL == "" {
		apiURL = DefaultBCVRateURL
	}
	client := resty.New().
		SetTimeout(15 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(2 * time.Second)

	return &ExchangeRateService{
		client: client,
		apiURL: apiURL,
	}
}

// Refresh fetches the rate and replaces the cache on success. The
// provider exposes the value as `promedio` (preferred) or `valor`; a
// non-positive value counts as a fetch failure.
func (s *ExchangeRateService) Refresh(ctx context.Context) error {
	var body models.BCVRateResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetResult(&body).
		Get(s.apiURL)
	if err != nil {
		return fmt.Errorf("exchange rate request failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("exchange rate request failed: HTTP %d", resp.StatusCode())
	}

	rate := body.Promedio
	if rate <= 0 {
		rate = body.Valor
	}
	if rate <= 0 {
		return fmt.Errorf("exchange rate response has no usable value (promedio=%v valor=%v)", body.Promedio, body.Valor)
	}

	source := body.Fuente
	if source == "" {
		source = "oficial"
	}

	s.mu.Lock()
	s.current = &models.DailyRate{
		Rate:      rate,
		Source:    source,
		FetchedAt: time.Now(),
	}
	s.mu.Unlock()

	log.Printf("[rate] refreshed official USD/VES rate: %.4f (%s)", rate, source)
	return nil
}

// Current returns the cached daily rate, if any.
func (s *ExchangeRateService) Current() (models.DailyRate, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return models.DailyRate{}, false
	}
	return *s.current, true
}
