// Package fintrack is the client side of the tracker: an HTTP API client, the
// session bridge for the popup login flow, the on-device cache, and the sync
// orchestrator that keeps them in agreement.
package fintrack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"

	"fintrack/internal/currency"
	"fintrack/internal/models"
)

// DefaultTimeout is the default HTTP client timeout.
const DefaultTimeout = 30 * time.Second

// SessionIDStore is the durable client-side home of the opaque session
// identifier.
type SessionIDStore interface {
	SessionID() string
	SetSessionID(id string) error
	ClearSessionID() error
}

// Client talks to the FinTrack backend. Requests carry the stored session
// identifier in the X-Session-ID header whenever no cookie is set, so the
// backend can recover the session in contexts where cookies do not survive
// the authentication redirect.
type Client struct {
	baseURL    string
	httpClient *http.Client
	sessions   SessionIDStore
}

// ClientOptions configures the client.
type ClientOptions struct {
	// BaseURL is the backend server address.
	BaseURL string

	// Sessions holds the session identifier between runs.
	Sessions SessionIDStore

	// HTTPClient allows using a custom HTTP client.
	HTTPClient *http.Client

	// Timeout sets the HTTP client timeout.
	Timeout time.Duration
}

// NewClient creates a new backend API client. Persistence calls are never
// retried automatically: a replayed save could overwrite a newer one, so
// failures surface to the caller for a manual retry.
func NewClient(opts *ClientOptions) (*Client, error) {
	if opts == nil || opts.BaseURL == "" {
		return nil, errors.New("BaseURL is required")
	}
	if opts.Sessions == nil {
		return nil, errors.New("Sessions store is required")
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		rc := retryablehttp.NewClient()
		rc.RetryMax = 0
		rc.Logger = nil
		httpClient = rc.StandardClient()
	}
	if opts.Timeout > 0 {
		httpClient.Timeout = opts.Timeout
	} else if httpClient.Timeout == 0 {
		httpClient.Timeout = DefaultTimeout
	}
	httpClient.Transport = &sessionTransport{
		base:     httpClient.Transport,
		sessions: opts.Sessions,
	}

	return &Client{
		baseURL:    opts.BaseURL,
		httpClient: httpClient,
		sessions:   opts.Sessions,
	}, nil
}

// sessionTransport attaches the stored session identifier to outgoing
// requests, unless the caller already set a Cookie header.
type sessionTransport struct {
	base     http.RoundTripper
	sessions SessionIDStore
}

func (t *sessionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if id := t.sessions.SessionID(); id != "" && req.Header.Get("Cookie") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("X-Session-ID", id)
	}
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}

// AuthURL requests the provider authorization URL for the login popup.
func (c *Client) AuthURL(ctx context.Context) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/url", nil, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

// CurrentUser returns the profile of the authenticated identity, or nil when
// no identity resolves.
func (c *Client) CurrentUser(ctx context.Context) (*models.Profile, error) {
	var out struct {
		User *models.Profile `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/user", nil, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

// Logout destroys the server-side session.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}

// RemoteFile is the dataset document as served by the backend.
type RemoteFile struct {
	Content json.RawMessage `json:"content"`
	FileID  string          `json:"fileId"`
}

// LoadFile fetches the dataset document. (nil, nil) means the user has no
// document yet; callers adopt an empty initial dataset.
func (c *Client) LoadFile(ctx context.Context) (*RemoteFile, error) {
	var out RemoteFile
	if err := c.do(ctx, http.MethodGet, "/api/drive/file", nil, &out); err != nil {
		return nil, err
	}
	if len(out.Content) == 0 || bytes.Equal(out.Content, []byte("null")) {
		return nil, nil
	}
	return &out, nil
}

// SaveFile writes the dataset document, passing back the last known file
// identifier ("" on the first save), and returns the identifier to use for
// the next save.
func (c *Client) SaveFile(ctx context.Context, content json.RawMessage, fileID string) (string, error) {
	body := map[string]interface{}{"content": content}
	if fileID != "" {
		body["fileId"] = fileID
	}
	var out struct {
		Success bool   `json:"success"`
		FileID  string `json:"fileId"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/drive/save", body, &out); err != nil {
		return "", err
	}
	return out.FileID, nil
}

// Insights asks the backend for AI-generated advice on the transactions.
func (c *Client) Insights(ctx context.Context, transactions []models.Transaction) (string, error) {
	body := map[string]interface{}{"transactions": transactions}
	var out struct {
		Insights string `json:"insights"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/insights", body, &out); err != nil {
		return "", err
	}
	return out.Insights, nil
}

// Rates fetches the latest exchange rates for the base currency.
func (c *Client) Rates(ctx context.Context, base string) (*currency.Rates, error) {
	var out currency.Rates
	path := fmt.Sprintf("/api/currency/rates?from=%s", base)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Currencies lists the currencies the backend supports for conversion.
func (c *Client) Currencies(ctx context.Context) ([]currency.Currency, error) {
	var out struct {
		Currencies []currency.Currency `json:"currencies"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/currency/currencies", nil, &out); err != nil {
		return nil, err
	}
	return out.Currencies, nil
}

type apiError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "failed to encode request")
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return errors.Wrap(err, "failed to build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "request to %s failed", path)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error.Code != "" {
			return errors.Errorf("%s: %s (%s)", path, apiErr.Error.Message, apiErr.Error.Code)
		}
		return errors.Errorf("%s returned status %d", path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "failed to decode response from %s", path)
	}
	return nil
}
