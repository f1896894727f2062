package api

import (
	"encoding/json"
	"net/http"
	"time"

	"uasfleet/hangar/internal/auth"
	"uasfleet/hangar/internal/common"
	"uasfleet/hangar/internal/constants"
	"uasfleet/hangar/internal/models/dtos"
)

// StartCheckoutHandler handles POST /billing/checkout
//
// Opens a provider-hosted checkout session for the calling pilot and returns
// its URL.
func (h *Handlers) StartCheckoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims := auth.GetPilotClaims(r.Context())
		if claims == nil || claims.PilotID() == "" {
			common.RespondError(w, initTime, nil, "Unauthorized", http.StatusUnauthorized)
			return
		}

		var req dtos.CreateCheckoutReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondError(w, initTime, nil, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.PriceID == "" || req.PlanID == "" {
			common.RespondError(w, initTime, nil, "price_id and plan_id are required", http.StatusBadRequest)
			return
		}

		url, err := h.deps.Services.Checkout.StartCheckout(
			claims.PilotID(),
			claims.Email(),
			req.PriceID,
			req.PlanID,
			constants.BillingCycle(req.BillingCycle),
		)
		if err != nil {
			common.RespondError(w, initTime, err, "Checkout provider unavailable", http.StatusBadGateway)
			return
		}

		common.RespondSuccess(w, initTime, "Checkout session created", dtos.CheckoutResponse{URL: url})
	}
}
