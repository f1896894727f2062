package gorm

import (
	"time"

	"uasfleet/hangar/internal/constants"
)

// Subscription is a local projection of billing-provider truth, one row per
// provider subscription. It is only ever written by webhook handlers.
type Subscription struct {
	ID                   string                       `gorm:"column:id;primaryKey;type:uuid"`
	PilotID              string                       `gorm:"column:pilot_id;type:uuid;index"`
	PlanID               string                       `gorm:"column:plan_id"`
	StripeCustomerID     string                       `gorm:"column:stripe_customer_id"`
	StripeSubscriptionID string                       `gorm:"column:stripe_subscription_id;uniqueIndex"`
	Status               constants.SubscriptionStatus `gorm:"column:status;type:subscription_status"`
	BillingCycle         constants.BillingCycle       `gorm:"column:billing_cycle"`
	CurrentPeriodStart   time.Time                    `gorm:"column:current_period_start"`
	CurrentPeriodEnd     time.Time                    `gorm:"column:current_period_end"`
	TrialEnd             *time.Time                   `gorm:"column:trial_end"`
	CancelAt             *time.Time                   `gorm:"column:cancel_at"`
	// LastEventAt is the provider timestamp of the most recently applied
	// event. Updates carrying an older timestamp are discarded.
	LastEventAt time.Time `gorm:"column:last_event_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Subscription) TableName() string {
	return "subscriptions"
}
