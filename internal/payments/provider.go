// Package payments is the checkout-provider boundary: hosted checkout
// sessions and the signed payment event webhook.
package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Session statuses as reported by the provider.
const (
	SessionOpen     = "open"
	SessionComplete = "complete"
	SessionExpired  = "expired"
)

// Session is a hosted checkout session: the driver pays at URL, and the
// provider reports completion through the webhook.
type Session struct {
	ID              string
	URL             string
	Status          string
	PaymentIntentID string
}

// CreateSessionParams describes the charge to collect.
type CreateSessionParams struct {
	AmountCents int64
	Currency    string
	Description string
	Metadata    map[string]string
}

// Provider is the capability the booking finalizer consumes: create a
// payable session, and re-fetch one for the resend path.
type Provider interface {
	CreateSession(ctx context.Context, p CreateSessionParams) (*Session, error)
	GetSession(ctx context.Context, id string) (*Session, error)
}

// httpDoer abstracts the HTTP client, enabling test mocks.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the checkout provider's REST API.
type Client struct {
	baseURL    string
	apiKey     string
	successURL string
	cancelURL  string
	http       httpDoer
}

// ClientOpts holds parameters for creating a Client.
type ClientOpts struct {
	BaseURL    string
	APIKey     string
	SuccessURL string
	CancelURL  string
	HTTPClient httpDoer // optional; defaults to a 15s-timeout client
}

// NewClient creates a Client.
func NewClient(opts ClientOpts) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("payments: base url is required")
	}
	if opts.APIKey == "" {
		return nil, fmt.Errorf("payments: api key is required")
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		apiKey:     opts.APIKey,
		successURL: opts.SuccessURL,
		cancelURL:  opts.CancelURL,
		http:       hc,
	}, nil
}

// sessionPayload is the provider's session representation on the wire.
type sessionPayload struct {
	ID            string `json:"id"`
	URL           string `json:"url"`
	Status        string `json:"status"`
	PaymentIntent string `json:"payment_intent"`
}

// CreateSession creates a hosted checkout session for the given amount.
// Metadata is carried through to the completion event, which is how the
// webhook correlates back to a booking.
func (c *Client) CreateSession(ctx context.Context, p CreateSessionParams) (*Session, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("line_items[0][price_data][currency]", strings.ToLower(p.Currency))
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(p.AmountCents, 10))
	form.Set("line_items[0][price_data][product_data][name]", p.Description)
	form.Set("line_items[0][quantity]", "1")
	if c.successURL != "" {
		form.Set("success_url", c.successURL)
	}
	if c.cancelURL != "" {
		form.Set("cancel_url", c.cancelURL)
	}
	for k, v := range p.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}

	var out sessionPayload
	if err := c.do(ctx, http.MethodPost, "/v1/checkout/sessions", form, &out); err != nil {
		return nil, err
	}
	return &Session{ID: out.ID, URL: out.URL, Status: out.Status, PaymentIntentID: out.PaymentIntent}, nil
}

// GetSession retrieves an existing checkout session by id.
func (c *Client) GetSession(ctx context.Context, id string) (*Session, error) {
	var out sessionPayload
	if err := c.do(ctx, http.MethodGet, "/v1/checkout/sessions/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &Session{ID: out.ID, URL: out.URL, Status: out.Status, PaymentIntentID: out.PaymentIntent}, nil
}

func (c *Client) do(ctx context.Context, method, path string, form url.Values, out interface{}) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("payments: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("payments: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("payments: %s %s: provider returned %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(payload)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("payments: decode response: %w", err)
	}
	return nil
}
