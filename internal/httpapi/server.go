// Package httpapi exposes the webhook ingress: inbound SMS, payment
// events, health, and prometheus metrics.
package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/dnaclectic/lotline/internal/booking"
	"github.com/dnaclectic/lotline/internal/metrics"
	"github.com/dnaclectic/lotline/internal/payments"
	"github.com/dnaclectic/lotline/internal/sms"
	"github.com/dnaclectic/lotline/internal/store"
)

// MessageHandler turns one inbound SMS into a reply. Satisfied by
// convo.Machine.
type MessageHandler interface {
	HandleInbound(ctx context.Context, in sms.Inbound) string
}

// PaymentApplier applies verified payment events. Satisfied by
// booking.Finalizer.
type PaymentApplier interface {
	ConfirmCheckout(ctx context.Context, evt *payments.Event) (booking.ConfirmResult, error)
	ExpireCheckout(ctx context.Context, evt *payments.Event) error
}

// StartOpts holds configuration for the webhook server.
type StartOpts struct {
	Machine       MessageHandler
	Payments      PaymentApplier
	Store         *store.Store
	Metrics       *metrics.Metrics // nil disables instrumentation
	WebhookSecret string
	Port          int
	RateLimit     rate.Limit // requests/sec per client IP; zero means 10
	RateBurst     int        // zero means 20
	Out           io.Writer
	Now           func() time.Time
}

// Start launches the webhook HTTP server. It blocks until ctx is
// cancelled, then shuts down gracefully.
func Start(ctx context.Context, opts StartOpts) error {
	router, err := NewRouter(opts)
	if err != nil {
		return err
	}
	if opts.Port <= 0 {
		opts.Port = 8080
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.Port),
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "Webhook server listening on :%d\n", opts.Port)
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("httpapi: %w", err)
	}
	return nil
}

// NewRouter builds the gin router. Split from Start so handler tests
// can drive it without binding a port.
func NewRouter(opts StartOpts) (*gin.Engine, error) {
	if opts.Machine == nil {
		return nil, fmt.Errorf("httpapi: machine is required")
	}
	if opts.Payments == nil {
		return nil, fmt.Errorf("httpapi: payment applier is required")
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("httpapi: store is required")
	}
	if opts.WebhookSecret == "" {
		return nil, fmt.Errorf("httpapi: webhook secret is required")
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 10
	}
	if opts.RateBurst <= 0 {
		opts.RateBurst = 20
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RateLimiter(opts.RateLimit, opts.RateBurst))

	registerRoutes(router, opts)
	return router, nil
}
