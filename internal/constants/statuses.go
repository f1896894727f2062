package constants

import (
	"database/sql/driver"
	"fmt"
)

// SubscriptionStatus mirrors the Postgres ENUM 'subscription_status'.
// Values track the billing provider's own lifecycle vocabulary.
type SubscriptionStatus string

const (
	SubTrialing   SubscriptionStatus = "trialing"
	SubActive     SubscriptionStatus = "active"
	SubPastDue    SubscriptionStatus = "past_due"
	SubCanceled   SubscriptionStatus = "canceled"
	SubIncomplete SubscriptionStatus = "incomplete"
)

func (s SubscriptionStatus) String() string { return string(s) }

// Scan implements the sql.Scanner interface
func (s *SubscriptionStatus) Scan(src interface{}) error {
	if src == nil {
		*s = ""
		return nil
	}
	switch v := src.(type) {
	case string:
		*s = SubscriptionStatus(v)
	case []byte:
		*s = SubscriptionStatus(v)
	default:
		return fmt.Errorf("SubscriptionStatus: cannot scan type %T", src)
	}
	return nil
}

// Value implements the driver.Valuer interface
func (s SubscriptionStatus) Value() (driver.Value, error) { return string(s), nil }

// BillingCycle is the subscription renewal interval.
type BillingCycle string

const (
	CycleMonthly BillingCycle = "monthly"
	CycleYearly  BillingCycle = "yearly"
)
