package httpapi

import (
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dnaclectic/lotline/internal/booking"
	"github.com/dnaclectic/lotline/internal/payments"
	"github.com/dnaclectic/lotline/internal/sms"
)

// maxWebhookBody caps payment webhook payload reads.
const maxWebhookBody = 64 * 1024

// registerRoutes sets up all webhook routes on the gin router.
func registerRoutes(router *gin.Engine, opts StartOpts) {
	router.POST("/webhooks/sms", handleInboundSMS(opts))
	router.POST("/webhooks/payments", handlePaymentEvent(opts))
	router.GET("/healthz", handleHealth(opts))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// handleInboundSMS accepts the SMS provider's form post and answers
// with a TwiML reply. The provider treats non-200 responses as
// delivery failures and retries, so once the payload parses, this
// handler always answers 200 with something the driver can read.
func handleInboundSMS(opts StartOpts) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := c.Request.ParseForm(); err != nil {
			c.String(http.StatusBadRequest, "bad form")
			return
		}
		in, err := sms.ParseInbound(c.Request.PostForm)
		if err != nil {
			c.String(http.StatusBadRequest, "missing sender")
			return
		}

		start := opts.Now()
		if opts.Metrics != nil {
			opts.Metrics.InboundMessages.Inc()
		}

		reply := safeHandle(c, opts, in)
		if opts.Metrics != nil {
			opts.Metrics.OutboundMessages.Inc()
			opts.Metrics.SmsHandleSeconds.Observe(time.Since(start).Seconds())
		}
		c.Data(http.StatusOK, "text/xml", []byte(sms.Reply(reply)))
	}
}

// safeHandle runs the conversation machine, converting a panic into an
// apology instead of a 500 the SMS provider would retry forever.
func safeHandle(c *gin.Context, opts StartOpts, in sms.Inbound) (reply string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("httpapi: sms handler panic for %s: %v", in.From, r)
			reply = "Sorry, something went wrong on our end. Please try again in a minute, or text SUPPORT to reach a human."
		}
	}()
	return opts.Machine.HandleInbound(c.Request.Context(), in)
}

// handlePaymentEvent verifies and applies one payment webhook delivery.
// Signature failures are 400s; verified events are acknowledged 200
// even when they reference unknown sessions, because redelivery cannot
// fix a correlation problem. Internal errors return 500 so the
// provider retries.
func handlePaymentEvent(opts StartOpts) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
		if err != nil {
			c.String(http.StatusBadRequest, "unreadable body")
			return
		}

		header := c.GetHeader(payments.SignatureHeader)
		if err := payments.VerifySignature(body, header, opts.WebhookSecret, opts.Now()); err != nil {
			if opts.Metrics != nil {
				opts.Metrics.SignatureRejections.Inc()
			}
			log.Printf("httpapi: payment webhook rejected: %v", err)
			c.String(http.StatusBadRequest, "bad signature")
			return
		}

		evt, err := payments.ParseEvent(body)
		if err != nil {
			c.String(http.StatusBadRequest, "bad payload")
			return
		}
		if opts.Metrics != nil {
			opts.Metrics.PaymentEvents.WithLabelValues(evt.Type).Inc()
		}

		switch evt.Type {
		case payments.EventCheckoutCompleted:
			res, err := opts.Payments.ConfirmCheckout(c.Request.Context(), evt)
			if err != nil {
				log.Printf("httpapi: confirm checkout %s: %v", evt.Session.ID, err)
				c.String(http.StatusInternalServerError, "confirm failed")
				return
			}
			if res == booking.ConfirmApplied && opts.Metrics != nil {
				opts.Metrics.BookingsConfirmed.Inc()
			}
		case payments.EventCheckoutExpired:
			if err := opts.Payments.ExpireCheckout(c.Request.Context(), evt); err != nil {
				log.Printf("httpapi: expire checkout %s: %v", evt.Session.ID, err)
				c.String(http.StatusInternalServerError, "expire failed")
				return
			}
		default:
			// Unrecognized event types are acknowledged and dropped.
		}
		c.String(http.StatusOK, "ok")
	}
}

// handleHealth reports liveness plus two queue-depth gauges useful for
// a quick operational read.
func handleHealth(opts StartOpts) gin.HandlerFunc {
	return func(c *gin.Context) {
		active, err := opts.Store.ActiveConversationCount()
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
		due, err := opts.Store.DueUnsentCount(opts.Now())
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":               "ok",
			"active_conversations": active,
			"due_nudges":           due,
		})
	}
}
