package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"uasfleet/hangar/internal/auth"
	"uasfleet/hangar/internal/common"
	"uasfleet/hangar/internal/models/dtos"
	"uasfleet/hangar/internal/services"

	"github.com/go-chi/chi/v5"
)

// CreateOperatorHandler handles POST /operators
//
// The caller becomes the operator's first admin member and the new operator
// becomes their active one.
func (h *Handlers) CreateOperatorHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims := auth.GetPilotClaims(r.Context())
		if claims == nil || claims.PilotID() == "" {
			common.RespondError(w, initTime, nil, "Unauthorized", http.StatusUnauthorized)
			return
		}

		var req dtos.CreateOperatorReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
			common.RespondError(w, initTime, nil, "name is required", http.StatusBadRequest)
			return
		}

		operator, err := h.deps.Services.Operator.CreateOperator(
			r.Context(),
			identityFromClaims(claims),
			req.Name,
			req.AESANumber, req.Phone, req.Address,
		)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		h.deps.Metrics.OperatorsCreatedTotal.Inc()
		common.RespondSuccess(w, initTime, "Operator created", dtos.OperatorSummary{
			ID:         operator.ID,
			Name:       operator.Name,
			Slug:       operator.Slug,
			AESANumber: operator.AESANumber,
		}, http.StatusCreated)
	}
}

// SearchOperatorsHandler handles GET /operators/search?q=...&limit=...
func (h *Handlers) SearchOperatorsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		query := r.URL.Query().Get("q")
		limit := services.SearchLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil {
				limit = parsed
			}
		}

		results, err := h.deps.Services.Operator.Search(r.Context(), query, limit)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Operators found", results)
	}
}

// JoinOperatorHandler handles POST /operators/{operatorID}/join
func (h *Handlers) JoinOperatorHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims := auth.GetPilotClaims(r.Context())
		if claims == nil || claims.PilotID() == "" {
			common.RespondError(w, initTime, nil, "Unauthorized", http.StatusUnauthorized)
			return
		}

		operatorID := chi.URLParam(r, "operatorID")
		membership, err := h.deps.Services.Operator.RequestJoin(r.Context(), identityFromClaims(claims), operatorID)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Join request submitted", dtos.MembershipSummary{
			MembershipID:    membership.ID,
			OperatorID:      membership.OperatorID,
			PilotID:         membership.PilotID,
			Role:            membership.Role.String(),
			RequestState:    string(membership.RequestState),
			MembershipState: string(membership.MembershipState),
		}, http.StatusCreated)
	}
}

// ReviewJoinRequestHandler handles POST /operators/{operatorID}/requests/{membershipID}/review
//
// Admin only. Accepts or rejects a pending join request.
func (h *Handlers) ReviewJoinRequestHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		operatorID := chi.URLParam(r, "operatorID")
		membershipID := chi.URLParam(r, "membershipID")

		var req dtos.ReviewJoinReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondError(w, initTime, nil, "Invalid request body", http.StatusBadRequest)
			return
		}

		decision := services.ReviewDecision(req.Decision)
		if decision != services.DecisionAccept && decision != services.DecisionReject {
			common.RespondError(w, initTime, nil, "decision must be accept or reject", http.StatusBadRequest)
			return
		}

		membership, err := h.deps.Services.Operator.ReviewJoinRequest(r.Context(), operatorID, membershipID, decision)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Join request reviewed", dtos.MembershipSummary{
			MembershipID:    membership.ID,
			OperatorID:      membership.OperatorID,
			PilotID:         membership.PilotID,
			Role:            membership.Role.String(),
			RequestState:    string(membership.RequestState),
			MembershipState: string(membership.MembershipState),
		})
	}
}

// ListMembersHandler handles GET /operators/{operatorID}/members
//
// Admin only. Pending join requests are included.
func (h *Handlers) ListMembersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		operatorID := chi.URLParam(r, "operatorID")
		memberships, err := h.deps.Repo.Memberships.GetAllByOperatorID(r.Context(), operatorID)
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
			summaries = append(summaries, summary)
		}

		common.RespondSuccess(w, initTime, "Members listed", summaries)
	}
}

// RemoveMemberHandler handles DELETE /operators/{operatorID}/members/{membershipID}
//
// Admin only. Flight history of the removed pilot is preserved.
func (h *Handlers) RemoveMemberHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		operatorID := chi.URLParam(r, "operatorID")
		membershipID := chi.URLParam(r, "membershipID")

		if err := h.deps.Services.Operator.RemoveMember(r.Context(), operatorID, membershipID); err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Member removed", nil)
	}
}

// GetOperatorBySlugHandler handles GET /operators/by-slug/{slug}
//
// Resolves the durable routing identifier to its operator. Carries the same
// public fields as search results, never membership data.
func (h *Handlers) GetOperatorBySlugHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		operator, err := h.deps.Repo.Operators.FindBySlug(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				common.RespondError(w, initTime, nil, "Operator not found", http.StatusNotFound)
				return
			}
			respondServiceError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Operator", dtos.OperatorSummary{
			ID:         operator.ID,
			Name:       operator.Name,
			Slug:       operator.Slug,
			AESANumber: operator.AESANumber,
		})
	}
}
