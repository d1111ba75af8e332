package handlers

import (
	"net/http"

	"backend/services"

	"github.com/gin-gonic/gin"
)

// GetDailyExchangeRate returns the cached official USD/VES rate,
// fetching on demand when the cache is still empty. With the provider
// unreachable and nothing cached the client falls back to manual entry.
// @Summary Get daily exchange rate
// @Tags ExchangeRate
// @Produce json
// @Success 200 {object} models.DailyRate
// @Failure 503 {object} models.ErrorResponse
// @Router /api/exchange_rate [get]
func GetDailyExchangeRate(svc *services.ExchangeRateService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rate, ok := svc.Current(); ok {
			c.JSON(http.StatusOK, rate)
			return
		}

		if err := svc.Refresh(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Tasa de cambio no disponible", "details": err.Error()})
			return
		}

		rate, _ := svc.Current()
		c.JSON(http.StatusOK, rate)
	}
}
