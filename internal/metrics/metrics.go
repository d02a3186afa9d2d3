// Package metrics holds the prometheus instrumentation for the SMS and
// payment ingress paths.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus collectors.
type Metrics struct {
	InboundMessages     prometheus.Counter
	OutboundMessages    prometheus.Counter
	SmsHandleSeconds    prometheus.Histogram
	PaymentEvents       *prometheus.CounterVec
	SignatureRejections prometheus.Counter
	BookingsConfirmed   prometheus.Counter
	NudgesSent          prometheus.Counter
}

// New registers and returns the collectors. A nil registerer uses the
// process-wide default; tests pass their own to avoid collisions.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		InboundMessages: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inbound_messages_total",
			Help:      "The total number of inbound SMS messages received",
		}),
		OutboundMessages: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbound_messages_total",
			Help:      "The total number of outbound SMS replies produced",
		}),
		SmsHandleSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sms_handle_seconds",
			Help:      "Time taken to handle one inbound SMS",
			Buckets:   prometheus.DefBuckets,
		}),
		PaymentEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_events_total",
			Help:      "The total number of payment webhook events by type",
		}, []string{"type"}),
		SignatureRejections: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_signature_rejections_total",
			Help:      "The total number of payment webhooks rejected for a bad signature",
		}),
		BookingsConfirmed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_confirmed_total",
			Help:      "The total number of bookings confirmed by payment",
		}),
		NudgesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "review_nudges_sent_total",
			Help:      "The total number of review nudges dispatched",
		}),
	}
}
