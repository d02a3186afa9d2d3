// Package alert delivers operator notifications to a chat channel.
// Delivery is best-effort everywhere it is used: an alert failure must
// never break the driver-facing reply path.
package alert

import "context"

// Notifier is the operator alert capability.
type Notifier interface {
	Alert(ctx context.Context, subject, body string) error
}

// Noop discards alerts. Used when no platform is configured.
type Noop struct{}

// Alert implements Notifier.
func (Noop) Alert(ctx context.Context, subject, body string) error {
	return nil
}
