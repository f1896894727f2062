package api

import (
	"encoding/json"
	"net/http"
	"time"

	"uasfleet/hangar/internal/auth"
	"uasfleet/hangar/internal/common"
	"uasfleet/hangar/internal/models/dtos"

	"gorm.io/gorm"
)

// UserDetailsHandler handles GET /user/details
//
// Returns the calling pilot's profile together with every membership,
// pending join requests included.
func (h *Handlers) UserDetailsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims := auth.GetPilotClaims(r.Context())
		if claims == nil || claims.PilotID() == "" {
			common.RespondError(w, initTime, nil, "Unauthorized", http.StatusUnauthorized)
			return
		}

		pilot, err := h.deps.Services.Tenant.ResolvePilotProfile(r.Context(), claims.PilotID())
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		memberships, err := h.deps.Repo.Memberships.GetAllByPilotID(r.Context(), pilot.ID)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		summaries := make([]dtos.MembershipSummary, 0, len(memberships))
		for _, m := range memberships {
			summary := dtos.MembershipSummary{
				MembershipID:    m.ID,
				OperatorID:      m.OperatorID,
				PilotID:         m.PilotID,
				Role:            m.Role.String(),
				RequestState:    string(m.RequestState),
				MembershipState: string(m.MembershipState),
				Active:          m.OperadorActivo,
			}
			if m.Operator.ID != "" {
				summary.OperatorName = m.Operator.Name
			}
			summaries = append(summaries, summary)
		}

		common.RespondSuccess(w, initTime, "User details", dtos.PilotDetailResponse{
			PilotID:          pilot.ID,
			Email:            pilot.Email,
			DisplayName:      pilot.DisplayName,
			TelegramVerified: pilot.TelegramVerified,
			Memberships:      summaries,
		})
	}
}

// UpdateProfileHandler handles PATCH /user/profile
//
// Applies partial edits to the calling pilot's own profile. Only fields
// present in the payload change.
func (h *Handlers) UpdateProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims := auth.GetPilotClaims(r.Context())
		if claims == nil || claims.PilotID() == "" {
			common.RespondError(w, initTime, nil, "Unauthorized", http.StatusUnauthorized)
			return
		}

		var req dtos.UpdateProfileReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondError(w, initTime, nil, "Invalid payload", http.StatusBadRequest)
			return
		}
		if req.DisplayName == nil && req.Phone == nil {
			common.RespondError(w, initTime, nil, "Nothing to update", http.StatusBadRequest)
			return
		}

		pilot, err := h.deps.Repo.Pilots.GetByID(r.Context(), claims.PilotID())
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				common.RespondError(w, initTime, nil, "Profile not found", http.StatusNotFound)
				return
			}
			respondServiceError(w, initTime, err)
			return
		}

		if req.DisplayName != nil && *req.DisplayName != "" {
			pilot.DisplayName = *req.DisplayName
		}
		if req.Phone != nil {
			pilot.Phone = req.Phone
		}

		if err := h.deps.Repo.Pilots.Update(r.Context(), pilot); err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Profile updated", dtos.PilotDetailResponse{
			PilotID:          pilot.ID,
			Email:            pilot.Email,
			DisplayName:      pilot.DisplayName,
			TelegramVerified: pilot.TelegramVerified,
		})
	}
}

// MyFlightsHandler handles GET /user/flights
//
// Returns the calling pilot's own flight history across every operator,
// newest first.
func (h *Handlers) MyFlightsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims := auth.GetPilotClaims(r.Context())
		if claims == nil || claims.PilotID() == "" {
			common.RespondError(w, initTime, nil, "Unauthorized", http.StatusUnauthorized)
			return
		}

		flights, err := h.deps.Repo.Flights.ListByPilot(r.Context(), claims.PilotID(), defaultFlightPageSize)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		responses := make([]dtos.FlightResponse, 0, len(flights))
		for i := range flights {
			responses = append(responses, toFlightResponse(&flights[i]))
		}

		common.RespondSuccess(w, initTime, "Flights listed", responses)
	}
}
