// Package sms is the messaging-provider boundary: sending texts and
// decoding the provider's inbound webhook form.
package sms

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Sender is the one outbound capability the rest of the system consumes.
type Sender interface {
	Send(ctx context.Context, to, body string) error
}

// httpDoer abstracts the HTTP client, enabling test mocks.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client sends texts through the provider's REST API.
type Client struct {
	baseURL    string
	accountSID string
	authToken  string
	from       string
	http       httpDoer
}

// ClientOpts holds parameters for creating a Client.
type ClientOpts struct {
	BaseURL    string
	AccountSID string
	AuthToken  string
	FromNumber string
	HTTPClient httpDoer // optional; defaults to a 10s-timeout client
}

// NewClient creates a Client.
func NewClient(opts ClientOpts) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("sms: base url is required")
	}
	if opts.AccountSID == "" || opts.AuthToken == "" {
		return nil, fmt.Errorf("sms: account credentials are required")
	}
	if opts.FromNumber == "" {
		return nil, fmt.Errorf("sms: from number is required")
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		accountSID: opts.AccountSID,
		authToken:  opts.AuthToken,
		from:       opts.FromNumber,
		http:       hc,
	}, nil
}

// Send posts one text message. Failures are returned to the caller, which
// decides whether the send was best-effort or not.
func (c *Client) Send(ctx context.Context, to, body string) error {
	form := url.Values{}
	form.Set("To", to)
	form.Set("From", c.from)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", c.baseURL, c.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("sms: build request: %w", err)
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sms: send to %s: %w", to, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sms: send to %s: provider returned %d: %s", to, resp.StatusCode, strings.TrimSpace(string(payload)))
	}
	return nil
}
