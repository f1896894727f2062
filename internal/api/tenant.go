package api

import (
	"encoding/json"
	"net/http"
	"time"

	"uasfleet/hangar/internal/auth"
	"uasfleet/hangar/internal/common"
	"uasfleet/hangar/internal/models/dtos"
)

// GetActiveOperatorHandler handles GET /tenant/active
//
// Resolves the calling pilot's current working operator.
func (h *Handlers) GetActiveOperatorHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims := auth.GetPilotClaims(r.Context())
		if claims == nil || claims.PilotID() == "" {
			common.RespondError(w, initTime, nil, "Unauthorized", http.StatusUnauthorized)
			return
		}

		active, err := h.deps.Services.Tenant.ResolveActiveOperator(r.Context(), claims.PilotID())
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Active operator resolved", active)
	}
}

// SwitchActiveOperatorHandler handles POST /tenant/switch
func (h *Handlers) SwitchActiveOperatorHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims := auth.GetPilotClaims(r.Context())
		if claims == nil || claims.PilotID() == "" {
			common.RespondError(w, initTime, nil, "Unauthorized", http.StatusUnauthorized)
			return
		}

		var req dtos.SwitchOperatorReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OperatorID == "" {
			common.RespondError(w, initTime, nil, "operator_id is required", http.StatusBadRequest)
			return
		}

		active, err := h.deps.Services.Tenant.SwitchActiveOperator(r.Context(), claims.PilotID(), req.OperatorID)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		h.deps.Metrics.TenantSwitchesTotal.Inc()
		common.RespondSuccess(w, initTime, "Active operator switched", active)
	}
}
