// Package insights generates spending advice through the Gemini API.
// It is a single-call wrapper: no retry, no caching.
package insights

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com"

// Client calls the Gemini generateContent endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewClient creates a client for the given API key and model.
func NewClient(apiKey, model string) *Client {
	return &Client{
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// NewClientWithBaseURL creates a client pointed at a custom endpoint (tests).
func NewClientWithBaseURL(baseURL, apiKey, model string) *Client {
	c := NewClient(apiKey, model)
	c.baseURL = strings.TrimSuffix(baseURL, "/")
	return c
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate asks the model for advice on the given transactions. An empty
// transaction list gets a canned nudge without any network call.
func (c *Client) Generate(ctx context.Context, transactions []models.Transaction) (string, error) {
	if len(transactions) == 0 {
		return "Start adding some records to get personalized financial advice!", nil
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: buildPrompt(transactions)}}}},
	})
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrInsightsUnavailable, err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrInsightsUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrInsightsUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", apperrors.Wrap(apperrors.ErrInsightsUnavailable,
			fmt.Errorf("gemini returned status %d", resp.StatusCode))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", apperrors.Wrap(apperrors.ErrInsightsUnavailable, err)
	}

	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "I couldn't generate insights at this moment. Try again later.", nil
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}

// buildPrompt summarizes the transactions into the advice prompt.
func buildPrompt(transactions []models.Transaction) string {
	var sb strings.Builder
	for _, t := range transactions {
		fmt.Fprintf(&sb, "%s: %s of $%s in %s\n", t.Date, t.Type, t.Amount.String(), t.Category)
	}
	return fmt.Sprintf(
		"Analyze this list of recent financial transactions and provide 3 concise, "+
			"actionable pieces of advice to improve the user's financial health. "+
			"Be direct and helpful, like a personal accountant. "+
			"Format as a list with bullet points.\n\nTransactions:\n%s", sb.String())
}
