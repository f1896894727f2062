package billing

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"uasfleet/hangar/internal/constants"
	gormModels "uasfleet/hangar/internal/models/gorm"

	stripewebhook "github.com/stripe/stripe-go/v82/webhook"
)

const testWebhookSecret = "whsec_test_secret"

func signedWebhookRequest(t *testing.T, secret, payload string) *http.Request {
	t.Helper()

	signed := stripewebhook.GenerateTestSignedPayload(&stripewebhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    secret,
		Timestamp: time.Now(),
		Scheme:    "v1",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/billing/webhook", bytes.NewReader(signed.Payload))
	req.Header.Set("Stripe-Signature", signed.Header)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func subscriptionUpdatedEventJSON(created int64, status string) string {
	return fmt.Sprintf(`{"id":"evt_1","object":"event","type":"customer.subscription.updated","created":%d,"data":{"object":{"id":"sub_123","status":%q}}}`, created, status)
}

func TestWebhookHandler_RejectsBadSignature(t *testing.T) {
	db := setupTestDB(t)
	seed := gormModels.Subscription{
		StripeSubscriptionID: "sub_123",
		Status:               constants.SubActive,
	}
	if err := db.Create(&seed).Error; err != nil {
		t.Fatalf("Seed: %v", err)
	}

	handler := NewWebhookHandler(testWebhookSecret, NewManager(db, nil), nil)

	payload := subscriptionUpdatedEventJSON(time.Now().Unix(), "canceled")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/billing/webhook", strings.NewReader(payload))
	req.Header.Set("Stripe-Signature", "t=123,v1=deadbeef")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}

	var row gormModels.Subscription
	db.Where("stripe_subscription_id = ?", "sub_123").First(&row)
	if row.Status != constants.SubActive {
		t.Errorf("Rejected event mutated subscription to %s", row.Status)
	}
}

func TestWebhookHandler_RejectsMissingSignature(t *testing.T) {
	handler := NewWebhookHandler(testWebhookSecret, NewManager(setupTestDB(t), nil), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/billing/webhook", strings.NewReader("{}"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
}

func TestWebhookHandler_UnconfiguredSecretFailsClosed(t *testing.T) {
	handler := NewWebhookHandler("", NewManager(setupTestDB(t), nil), nil)

	req := signedWebhookRequest(t, testWebhookSecret, "{}")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("Expected 503, got %d", rec.Code)
	}
}

func TestWebhookHandler_DispatchesSubscriptionUpdate(t *testing.T) {
	db := setupTestDB(t)
	base := time.Now().UTC().Truncate(time.Second)
	seed := gormModels.Subscription{
		StripeSubscriptionID: "sub_123",
		Status:               constants.SubActive,
		LastEventAt:          base.Add(-time.Hour),
	}
	if err := db.Create(&seed).Error; err != nil {
		t.Fatalf("Seed: %v", err)
	}

	handler := NewWebhookHandler(testWebhookSecret, NewManager(db, nil), nil)

	req := signedWebhookRequest(t, testWebhookSecret, subscriptionUpdatedEventJSON(base.Unix(), "past_due"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d, body=%q", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"received":true`) {
		t.Errorf("Unexpected body %q", rec.Body.String())
	}

	var row gormModels.Subscription
	db.Where("stripe_subscription_id = ?", "sub_123").First(&row)
	if row.Status != constants.SubPastDue {
		t.Errorf("Expected past_due, got %s", row.Status)
	}
}

func TestWebhookHandler_DispatchesCheckoutCompleted(t *testing.T) {
	db := setupTestDB(t)
	manager := NewManager(db, func(ctx context.Context, id string) (*ProviderSubscription, error) {
		return &ProviderSubscription{ID: id, CustomerID: "cus_123", Status: "active"}, nil
	})
	handler := NewWebhookHandler(testWebhookSecret, manager, nil)

	payload := fmt.Sprintf(`{"id":"evt_co","object":"event","type":"checkout.session.completed","created":%d,"data":{"object":{"id":"cs_1","customer":"cus_123","subscription":"sub_123","metadata":{"user_id":"pilot-1","plan_id":"pro","billing_cycle":"yearly"}}}}`, time.Now().Unix())
	req := signedWebhookRequest(t, testWebhookSecret, payload)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d, body=%q", rec.Code, rec.Body.String())
	}

	var row gormModels.Subscription
	if err := db.Where("stripe_subscription_id = ?", "sub_123").First(&row).Error; err != nil {
		t.Fatalf("Expected subscription row: %v", err)
	}
	if row.BillingCycle != constants.CycleYearly {
		t.Errorf("Expected yearly cycle, got %s", row.BillingCycle)
	}
}

func TestWebhookHandler_UnhandledEventAcknowledged(t *testing.T) {
	handler := NewWebhookHandler(testWebhookSecret, NewManager(setupTestDB(t), nil), nil)

	payload := fmt.Sprintf(`{"id":"evt_x","object":"event","type":"customer.created","created":%d,"data":{"object":{}}}`, time.Now().Unix())
	req := signedWebhookRequest(t, testWebhookSecret, payload)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Unhandled event types must be acknowledged, got %d", rec.Code)
	}
}

func TestWebhookHandler_MethodNotAllowed(t *testing.T) {
	handler := NewWebhookHandler(testWebhookSecret, NewManager(setupTestDB(t), nil), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/billing/webhook", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("Expected 405, got %d", rec.Code)
	}
}
