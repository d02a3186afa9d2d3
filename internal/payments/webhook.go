package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Event types the webhook handler understands.
const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventCheckoutExpired   = "checkout.session.expired"
)

// SignatureHeader is the HTTP header carrying the webhook signature.
const SignatureHeader = "X-Checkout-Signature"

// signatureTolerance bounds how old a signed timestamp may be; replays
// outside the window are rejected.
const signatureTolerance = 5 * time.Minute

// Event is a decoded provider event envelope.
type Event struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Session struct {
		ID            string            `json:"id"`
		Status        string            `json:"status"`
		PaymentIntent string            `json:"payment_intent"`
		Metadata      map[string]string `json:"metadata"`
	} `json:"data"`
}

// rawEnvelope matches the provider's nesting: data.object holds the session.
type rawEnvelope struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID            string            `json:"id"`
			Status        string            `json:"status"`
			PaymentIntent string            `json:"payment_intent"`
			Metadata      map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

// ParseEvent decodes a provider event body. Call VerifySignature first;
// no field of an unverified body may be trusted.
func ParseEvent(body []byte) (*Event, error) {
	var raw rawEnvelope
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("payments: parse event: %w", err)
	}
	if raw.Type == "" {
		return nil, fmt.Errorf("payments: event missing type")
	}
	evt := &Event{ID: raw.ID, Type: raw.Type}
	evt.Session.ID = raw.Data.Object.ID
	evt.Session.Status = raw.Data.Object.Status
	evt.Session.PaymentIntent = raw.Data.Object.PaymentIntent
	evt.Session.Metadata = raw.Data.Object.Metadata
	return evt, nil
}

// VerifySignature authenticates a webhook body against the shared secret.
// The header format is "t=<unix>,v1=<hex hmac-sha256 of '<unix>.<body>'>".
// Any failure rejects the payload before a single field is read.
func VerifySignature(body []byte, header, secret string, now time.Time) error {
	if header == "" {
		return fmt.Errorf("payments: missing signature header")
	}

	var ts int64
	var sig string
	for _, part := range strings.Split(header, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			parsed, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return fmt.Errorf("payments: malformed signature timestamp")
			}
			ts = parsed
		case "v1":
			sig = v
		}
	}
	if ts == 0 || sig == "" {
		return fmt.Errorf("payments: malformed signature header")
	}

	age := now.Sub(time.Unix(ts, 0))
	if age > signatureTolerance || age < -signatureTolerance {
		return fmt.Errorf("payments: signature timestamp outside tolerance")
	}

	expected := Sign(body, secret, ts)
	given, err := hex.DecodeString(sig)
	if err != nil {
		return fmt.Errorf("payments: malformed signature")
	}
	want, _ := hex.DecodeString(expected)
	if !hmac.Equal(given, want) {
		return fmt.Errorf("payments: signature mismatch")
	}
	return nil
}

// Sign computes the hex signature for a body at a timestamp. Exported so
// tests and local tooling can forge valid headers.
func Sign(body []byte, secret string, ts int64) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", ts)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// SignatureFor renders a complete signature header for a body, used by
// tests and the local webhook replay tool.
func SignatureFor(body []byte, secret string, now time.Time) string {
	ts := now.Unix()
	return fmt.Sprintf("t=%d,v1=%s", ts, Sign(body, secret, ts))
}
