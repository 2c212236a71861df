package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"fintrack/internal/currency"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/validator"
)

// RateFetcher fetches the latest exchange rates for a base currency.
type RateFetcher interface {
	Latest(ctx context.Context, base string) (*currency.Rates, error)
}

// CurrencyHandler proxies exchange-rate lookups.
type CurrencyHandler struct {
	rates RateFetcher
}

// NewCurrencyHandler creates a new CurrencyHandler.
func NewCurrencyHandler(rates RateFetcher) *CurrencyHandler {
	return &CurrencyHandler{rates: rates}
}

// GetRates returns the latest rates for the base currency in the "from"
// query parameter (default USD).
func (h *CurrencyHandler) GetRates(c *gin.Context) {
	base := c.DefaultQuery("from", "USD")
	if !validator.IsCurrency(base) {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "unsupported base currency"))
		return
	}

	rates, err := h.rates.Latest(c.Request.Context(), base)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, rates)
}

// ListCurrencies returns the currencies offered by the converter.
func (h *CurrencyHandler) ListCurrencies(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"currencies": currency.PopularCurrencies})
}
