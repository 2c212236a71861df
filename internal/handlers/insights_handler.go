package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
)

// InsightGenerator produces spending advice for a transaction list.
type InsightGenerator interface {
	Generate(ctx context.Context, transactions []models.Transaction) (string, error)
}

// InsightsHandler exposes AI-generated spending advice.
type InsightsHandler struct {
	generator InsightGenerator
}

// NewInsightsHandler creates a new InsightsHandler.
func NewInsightsHandler(generator InsightGenerator) *InsightsHandler {
	return &InsightsHandler{generator: generator}
}

// InsightsRequest carries the transactions to analyze.
type InsightsRequest struct {
	Transactions []models.Transaction `json:"transactions"`
}

// Generate returns advice for the submitted transactions.
func (h *InsightsHandler) Generate(c *gin.Context) {
	var req InsightsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid transaction list"))
		return
	}

	text, err := h.generator.Generate(c.Request.Context(), req.Transactions)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"insights": text})
}
