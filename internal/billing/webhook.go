package billing

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"uasfleet/hangar/internal/logging"
	"uasfleet/hangar/internal/metrics"

	stripelib "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

const webhookBodyLimit = 1024 * 1024 // 1 MiB

// CheckoutSession is the minimal slice of a Stripe checkout.session object
// the lifecycle manager needs.
type CheckoutSession struct {
	ID           string            `json:"id"`
	Customer     string            `json:"customer"`
	Subscription string            `json:"subscription"`
	Metadata     map[string]string `json:"metadata"`
}

// SubscriptionEvent is the minimal slice of a Stripe subscription object.
// Period bounds appear at the top level in older API versions and on the
// subscription items in current ones, so both are decoded.
type SubscriptionEvent struct {
	ID                 string `json:"id"`
	Customer           string `json:"customer"`
	Status             string `json:"status"`
	CancelAt           int64  `json:"cancel_at"`
	TrialEnd           int64  `json:"trial_end"`
	CurrentPeriodStart int64  `json:"current_period_start"`
	CurrentPeriodEnd   int64  `json:"current_period_end"`
	Items              struct {
		Data []struct {
			CurrentPeriodStart int64 `json:"current_period_start"`
			CurrentPeriodEnd   int64 `json:"current_period_end"`
		} `json:"data"`
	} `json:"items"`
}

// PeriodBounds returns the billing period, preferring the top-level fields
// and falling back to the first subscription item. Zero times mean the event
// carried no period information.
func (s *SubscriptionEvent) PeriodBounds() (start, end time.Time) {
	periodStart := s.CurrentPeriodStart
	periodEnd := s.CurrentPeriodEnd
	if periodStart == 0 && periodEnd == 0 && len(s.Items.Data) > 0 {
		periodStart = s.Items.Data[0].CurrentPeriodStart
		periodEnd = s.Items.Data[0].CurrentPeriodEnd
	}
	if periodStart > 0 {
		start = time.Unix(periodStart, 0).UTC()
	}
	if periodEnd > 0 {
		end = time.Unix(periodEnd, 0).UTC()
	}
	return start, end
}

// InvoiceEvent is the minimal slice of a Stripe invoice object. The
// subscription reference moved under parent.subscription_details in current
// API versions.
type InvoiceEvent struct {
	ID           string `json:"id"`
	Subscription string `json:"subscription"`
	Parent       struct {
		SubscriptionDetails struct {
			Subscription string `json:"subscription"`
		} `json:"subscription_details"`
	} `json:"parent"`
}

// SubscriptionID returns the subscription reference, or empty when the
// invoice is not tied to a subscription.
func (i *InvoiceEvent) SubscriptionID() string {
	if i.Subscription != "" {
		return i.Subscription
	}
	return i.Parent.SubscriptionDetails.Subscription
}

// WebhookHandler verifies Stripe webhook signatures and dispatches events to
// the lifecycle manager. Signature verification fails closed.
type WebhookHandler struct {
	secret  string
	manager *Manager
	metrics *metrics.MetricsRegistry
}

type webhookErrorResponse struct {
	Error string `json:"error"`
}

type webhookReceivedResponse struct {
	Received bool `json:"received"`
}

// NewWebhookHandler creates a Stripe webhook HTTP handler. The metrics
// registry may be nil.
func NewWebhookHandler(secret string, manager *Manager, reg *metrics.MetricsRegistry) *WebhookHandler {
	return &WebhookHandler{
		secret:  secret,
		manager: manager,
		metrics: reg,
	}
}

// ServeHTTP verifies the Stripe signature and dispatches the event.
func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	eventType := "unknown"
	status := http.StatusOK
	defer func() {
		if h.metrics != nil {
			h.metrics.WebhookEventsTotal.WithLabelValues(eventType, strconv.Itoa(status)).Inc()
			h.metrics.WebhookDuration.WithLabelValues(eventType).Observe(time.Since(start).Seconds())
		}
	}()

	if r.Method != http.MethodPost {
		status = http.StatusMethodNotAllowed
		writeJSON(w, status, webhookErrorResponse{Error: "method not allowed"})
		return
	}
	if strings.TrimSpace(h.secret) == "" {
		status = http.StatusServiceUnavailable
		writeJSON(w, status, webhookErrorResponse{Error: "webhook secret not configured"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, webhookBodyLimit)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		status = http.StatusBadRequest
		writeJSON(w, status, webhookErrorResponse{Error: "failed to read request body"})
		return
	}

	sigHeader := r.Header.Get("Stripe-Signature")
	if strings.TrimSpace(sigHeader) == "" {
		status = http.StatusBadRequest
		writeJSON(w, status, webhookErrorResponse{Error: "missing Stripe signature"})
		return
	}

	event, err := webhook.ConstructEventWithOptions(payload, sigHeader, h.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		status = http.StatusBadRequest
		writeJSON(w, status, webhookErrorResponse{Error: "invalid Stripe signature"})
		return
	}
	eventType = string(event.Type)

	if err := h.handleEvent(r, &event); err != nil {
		logging.Error("Billing webhook processing failed",
			"event_id", event.ID,
			"type", eventType,
			"error", err,
		)
		status = http.StatusInternalServerError
		writeJSON(w, status, webhookErrorResponse{Error: "processing failed"})
		return
	}

	status = http.StatusOK
	writeJSON(w, status, webhookReceivedResponse{Received: true})
}

func (h *WebhookHandler) handleEvent(r *http.Request, event *stripelib.Event) error {
	eventTime := time.Unix(event.Created, 0).UTC()

	switch event.Type {
	case "checkout.session.completed":
		var session CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return fmt.Errorf("decode checkout.session: %w", err)
		}
		return h.manager.HandleCheckoutCompleted(r.Context(), session, eventTime)

	case "customer.subscription.created", "customer.subscription.updated":
		var sub SubscriptionEvent
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("decode subscription: %w", err)
		}
		return h.manager.HandleSubscriptionChanged(r.Context(), sub, eventTime)

	case "customer.subscription.deleted":
		var sub SubscriptionEvent
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("decode subscription: %w", err)
		}
		return h.manager.HandleSubscriptionDeleted(r.Context(), sub, eventTime)

	case "invoice.payment_failed":
		var invoice InvoiceEvent
		if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
			return fmt.Errorf("decode invoice: %w", err)
		}
		return h.manager.HandlePaymentFailed(r.Context(), invoice, eventTime)

	default:
		logging.Debug("Ignoring unhandled billing event", "type", string(event.Type))
		return nil
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
