package sms

import (
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"
)

// Inbound is a decoded inbound text from the provider webhook.
type Inbound struct {
	From       string // sender phone, E.164
	Body       string
	MessageSID string
}

// ParseInbound decodes the provider's form-encoded webhook payload.
func ParseInbound(form url.Values) (Inbound, error) {
	from := strings.TrimSpace(form.Get("From"))
	if from == "" {
		return Inbound{}, fmt.Errorf("sms: inbound payload missing From")
	}
	return Inbound{
		From:       from,
		Body:       form.Get("Body"),
		MessageSID: form.Get("MessageSid"),
	}, nil
}

// twimlResponse is the provider's inline-reply envelope.
type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message,omitempty"`
}

// Reply renders text as the provider's inline-reply XML. An empty text
// renders an empty envelope (acknowledge, send nothing).
func Reply(text string) string {
	out, err := xml.Marshal(twimlResponse{Message: text})
	if err != nil {
		// Marshalling a two-field struct cannot fail at runtime; keep the
		// envelope well-formed regardless.
		return "<Response></Response>"
	}
	return xml.Header + string(out)
}
