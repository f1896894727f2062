package billing

import (
	"fmt"
	"strings"

	"uasfleet/hangar/internal/constants"

	stripelib "github.com/stripe/stripe-go/v82"
	stripesession "github.com/stripe/stripe-go/v82/checkout/session"
)

// CheckoutService starts billing provider checkout sessions for
// authenticated pilots. The session creation func is injectable for tests.
type CheckoutService struct {
	successURL            string
	cancelURL             string
	createCheckoutSession func(params *stripelib.CheckoutSessionParams) (*stripelib.CheckoutSession, error)
}

// NewCheckoutService creates a checkout service pointing at the given
// post-checkout redirect URLs.
func NewCheckoutService(successURL, cancelURL string) *CheckoutService {
	return &CheckoutService{
		successURL:            successURL,
		cancelURL:             cancelURL,
		createCheckoutSession: stripesession.New,
	}
}

// StartCheckout opens a subscription checkout session for a pilot and
// returns the hosted payment page URL. The pilot and plan ids travel as
// session metadata so the completion webhook can attribute the subscription.
func (s *CheckoutService) StartCheckout(pilotID, email, priceID, planID string, cycle constants.BillingCycle) (string, error) {
	if strings.TrimSpace(priceID) == "" || strings.TrimSpace(planID) == "" {
		return "", fmt.Errorf("price_id and plan_id are required")
	}
	if cycle != constants.CycleYearly {
		cycle = constants.CycleMonthly
	}

	params := &stripelib.CheckoutSessionParams{
		Mode:          stripelib.String(string(stripelib.CheckoutSessionModeSubscription)),
		SuccessURL:    stripelib.String(s.successURL),
		CancelURL:     stripelib.String(s.cancelURL),
		CustomerEmail: stripelib.String(email),
		LineItems: []*stripelib.CheckoutSessionLineItemParams{
			{
				Price:    stripelib.String(priceID),
				Quantity: stripelib.Int64(1),
			},
		},
	}
	params.AddMetadata("user_id", pilotID)
	params.AddMetadata("plan_id", planID)
	params.AddMetadata("billing_cycle", string(cycle))

	session, err := s.createCheckoutSession(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return session.URL, nil
}
