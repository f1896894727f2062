package billing

import (
	"context"
	"fmt"
	"time"

	"uasfleet/hangar/internal/constants"
	"uasfleet/hangar/internal/logging"
	gormModels "uasfleet/hangar/internal/models/gorm"

	stripelib "github.com/stripe/stripe-go/v82"
	stripesub "github.com/stripe/stripe-go/v82/subscription"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProviderSubscription is the provider-agnostic view of a billing
// subscription used by the lifecycle manager. The webhook payload is never
// trusted for checkout completion; the full object is re-fetched.
type ProviderSubscription struct {
	ID                 string
	CustomerID         string
	Status             string
	CurrentPeriodStart time.Time
	CurrentPeriodEnd   time.Time
	TrialEnd           *time.Time
	CancelAt           *time.Time
}

// SubscriptionFetcher loads the authoritative subscription object from the
// billing provider.
type SubscriptionFetcher func(ctx context.Context, subscriptionID string) (*ProviderSubscription, error)

// Manager maintains Subscription rows strictly as a projection of billing
// provider truth. Every handler is idempotent under event redelivery, and
// updates carry the provider event timestamp so stale redeliveries cannot
// regress state.
type Manager struct {
	db    *gorm.DB
	fetch SubscriptionFetcher
}

// NewManager creates a lifecycle manager. A nil fetcher defaults to the
// Stripe API client.
func NewManager(db *gorm.DB, fetch SubscriptionFetcher) *Manager {
	if fetch == nil {
		fetch = fetchStripeSubscription
	}
	return &Manager{db: db, fetch: fetch}
}

// fetchStripeSubscription retrieves a subscription through stripe-go.
// Period bounds live on the subscription items in the current API version.
func fetchStripeSubscription(ctx context.Context, subscriptionID string) (*ProviderSubscription, error) {
	sub, err := stripesub.Get(subscriptionID, &stripelib.SubscriptionParams{
		Params: stripelib.Params{Context: ctx},
	})
	if err != nil {
		return nil, fmt.Errorf("fetch subscription %s: %w", subscriptionID, err)
	}

	ps := &ProviderSubscription{
		ID:     sub.ID,
		Status: string(sub.Status),
	}
	if sub.Customer != nil {
		ps.CustomerID = sub.Customer.ID
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 {
		item := sub.Items.Data[0]
		ps.CurrentPeriodStart = time.Unix(item.CurrentPeriodStart, 0).UTC()
		ps.CurrentPeriodEnd = time.Unix(item.CurrentPeriodEnd, 0).UTC()
	}
	if sub.TrialEnd > 0 {
		t := time.Unix(sub.TrialEnd, 0).UTC()
		ps.TrialEnd = &t
	}
	if sub.CancelAt > 0 {
		t := time.Unix(sub.CancelAt, 0).UTC()
		ps.CancelAt = &t
	}
	return ps, nil
}

// mapProviderStatus maps a provider lifecycle status onto the local enum.
// Unknown provider states collapse to active.
func mapProviderStatus(status string) constants.SubscriptionStatus {
	switch status {
	case "trialing":
		return constants.SubTrialing
	case "past_due":
		return constants.SubPastDue
	case "canceled":
		return constants.SubCanceled
	case "incomplete":
		return constants.SubIncomplete
	default:
		return constants.SubActive
	}
}

// checkoutStatus is the narrower mapping used at checkout completion, where
// the subscription is either in trial or has just become active.
func checkoutStatus(status string) constants.SubscriptionStatus {
	if status == "trialing" {
		return constants.SubTrialing
	}
	return constants.SubActive
}

// HandleCheckoutCompleted creates or overwrites the local Subscription row
// for a completed checkout. The session must carry user_id and plan_id
// metadata; sessions without them were not created by this system and are
// acknowledged without effect, since retrying can never supply the missing
// fields. The subscription object is re-fetched from the provider rather
// than trusted from the event payload. Upsert keyed on the provider
// subscription id makes redelivery a no-op, and the conflict update carries
// the same event-timestamp guard as the lifecycle handlers so a redelivered
// checkout cannot regress newer state.
func (m *Manager) HandleCheckoutCompleted(ctx context.Context, session CheckoutSession, eventTime time.Time) error {
	userID := session.Metadata["user_id"]
	planID := session.Metadata["plan_id"]
	if userID == "" || planID == "" {
		logging.Warn("Checkout session missing user_id/plan_id metadata, ignoring",
			"session_id", session.ID,
		)
		return nil
	}
	if session.Subscription == "" {
		logging.Warn("Checkout session has no subscription reference, ignoring",
			"session_id", session.ID,
		)
		return nil
	}

	sub, err := m.fetch(ctx, session.Subscription)
	if err != nil {
		return err
	}

	cycle := constants.BillingCycle(session.Metadata["billing_cycle"])
	if cycle == "" {
		cycle = constants.CycleMonthly
	}

	customerID := session.Customer
	if customerID == "" {
		customerID = sub.CustomerID
	}

	row := gormModels.Subscription{
		PilotID:              userID,
		PlanID:               planID,
		StripeCustomerID:     customerID,
		StripeSubscriptionID: sub.ID,
		Status:               checkoutStatus(sub.Status),
		BillingCycle:         cycle,
		CurrentPeriodStart:   sub.CurrentPeriodStart,
		CurrentPeriodEnd:     sub.CurrentPeriodEnd,
		TrialEnd:             sub.TrialEnd,
		LastEventAt:          eventTime,
	}

	err = m.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "stripe_subscription_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"pilot_id", "plan_id", "stripe_customer_id", "status", "billing_cycle",
			"current_period_start", "current_period_end", "trial_end", "last_event_at",
		}),
		Where: clause.Where{Exprs: []clause.Expression{
			gorm.Expr("subscriptions.last_event_at <= excluded.last_event_at"),
		}},
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("upsert subscription %s: %w", sub.ID, err)
	}

	logging.Info("Subscription provisioned from checkout",
		"pilot_id", userID,
		"plan_id", planID,
		"subscription_id", sub.ID,
		"status", row.Status.String(),
	)
	return nil
}

// HandleSubscriptionChanged applies a provider lifecycle event to the
// matching row. Missing rows and stale (older than last applied) events are
// silent no-ops.
func (m *Manager) HandleSubscriptionChanged(ctx context.Context, event SubscriptionEvent, eventTime time.Time) error {
	periodStart, periodEnd := event.PeriodBounds()

	updates := map[string]interface{}{
		"status":        mapProviderStatus(event.Status),
		"last_event_at": eventTime,
	}
	if !periodStart.IsZero() {
		updates["current_period_start"] = periodStart
	}
	if !periodEnd.IsZero() {
		updates["current_period_end"] = periodEnd
	}
	if event.TrialEnd > 0 {
		updates["trial_end"] = time.Unix(event.TrialEnd, 0).UTC()
	}
	if event.CancelAt > 0 {
		updates["cancel_at"] = time.Unix(event.CancelAt, 0).UTC()
	}

	res := m.db.WithContext(ctx).Model(&gormModels.Subscription{}).
		Where("stripe_subscription_id = ? AND last_event_at <= ?", event.ID, eventTime).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("update subscription %s: %w", event.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		logging.Debug("Subscription event skipped (unknown id or stale)",
			"subscription_id", event.ID,
		)
	}
	return nil
}

// HandleSubscriptionDeleted marks the matching row canceled. Rows are never
// deleted.
func (m *Manager) HandleSubscriptionDeleted(ctx context.Context, event SubscriptionEvent, eventTime time.Time) error {
	res := m.db.WithContext(ctx).Model(&gormModels.Subscription{}).
		Where("stripe_subscription_id = ? AND last_event_at <= ?", event.ID, eventTime).
		Updates(map[string]interface{}{
			"status":        constants.SubCanceled,
			"cancel_at":     time.Now().UTC(),
			"last_event_at": eventTime,
		})
	if res.Error != nil {
		return fmt.Errorf("cancel subscription %s: %w", event.ID, res.Error)
	}
	return nil
}

// HandlePaymentFailed marks the referenced subscription past_due. Invoices
// without a subscription reference are ignored.
func (m *Manager) HandlePaymentFailed(ctx context.Context, invoice InvoiceEvent, eventTime time.Time) error {
	subID := invoice.SubscriptionID()
	if subID == "" {
		return nil
	}

	res := m.db.WithContext(ctx).Model(&gormModels.Subscription{}).
		Where("stripe_subscription_id = ? AND last_event_at <= ?", subID, eventTime).
		Updates(map[string]interface{}{
			"status":        constants.SubPastDue,
			"last_event_at": eventTime,
		})
	if res.Error != nil {
		return fmt.Errorf("mark subscription %s past_due: %w", subID, res.Error)
	}
	return nil
}
