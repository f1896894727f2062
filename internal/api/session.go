package api

import (
	"net/http"
	"time"

	"uasfleet/hangar/internal/auth"
	"uasfleet/hangar/internal/common"
	"uasfleet/hangar/internal/constants"
	"uasfleet/hangar/internal/models/dtos"

	"github.com/go-chi/chi/v5"
)

// CreateSessionHandler handles POST /auth/session
//
// Snapshots the pilot's memberships and active operator into a Redis-backed
// session. Sessions are dropped wholesale when the pilot switches operator,
// so a client holding a session id always re-reads a fresh context.
func (h *Handlers) CreateSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims := auth.GetPilotClaims(r.Context())
		if claims == nil || claims.PilotID() == "" {
			common.RespondError(w, initTime, nil, "Unauthorized", http.StatusUnauthorized)
			return
		}
		if h.deps.Services.Session == nil {
			common.RespondError(w, initTime, nil, "Session store unavailable", http.StatusServiceUnavailable)
			return
		}

		memberships, err := h.deps.Repo.Memberships.GetAllByPilotID(r.Context(), claims.PilotID())
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		activeOperatorID := ""
		operators := make([]common.OperatorMembership, 0, len(memberships))
		for _, m := range memberships {
			if m.MembershipState != constants.MembershipActive {
				continue
			}
			operators = append(operators, common.OperatorMembership{
				OperatorID:   m.OperatorID,
				OperatorName: m.Operator.Name,
				Slug:         m.Operator.Slug,
				Role:         m.Role.String(),
			})
			if m.OperadorActivo {
				activeOperatorID = m.OperatorID
			}
		}

		sessionID, err := h.deps.Services.Session.CreateSession(
			r.Context(), claims.PilotID(), activeOperatorID, claims.Email(), operators)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Session created",
			dtos.SessionResponse{SessionID: sessionID}, http.StatusCreated)
	}
}

// GetSessionHandler handles GET /auth/session/{sessionID}
func (h *Handlers) GetSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims := auth.GetPilotClaims(r.Context())
		if claims == nil || claims.PilotID() == "" {
			common.RespondError(w, initTime, nil, "Unauthorized", http.StatusUnauthorized)
			return
		}
		if h.deps.Services.Session == nil {
			common.RespondError(w, initTime, nil, "Session store unavailable", http.StatusServiceUnavailable)
			return
		}

		session, err := h.deps.Services.Session.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
		if err != nil || session.PilotID != claims.PilotID() {
			common.RespondError(w, initTime, nil, "Session not found", http.StatusNotFound)
			return
		}

		// ActiveOperatorID may point at a membership removed since the
		// session was minted; resolve it against the snapshot.
		if session.GetActiveOperator() == nil {
			session.ActiveOperatorID = ""
		}

		common.RespondSuccess(w, initTime, "Session", session)
	}
}

// DeleteSessionHandler handles DELETE /auth/session/{sessionID}
func (h *Handlers) DeleteSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims := auth.GetPilotClaims(r.Context())
		if claims == nil || claims.PilotID() == "" {
			common.RespondError(w, initTime, nil, "Unauthorized", http.StatusUnauthorized)
			return
		}
		if h.deps.Services.Session == nil {
			common.RespondError(w, initTime, nil, "Session store unavailable", http.StatusServiceUnavailable)
			return
		}

		sessionID := chi.URLParam(r, "sessionID")
		session, err := h.deps.Services.Session.GetSession(r.Context(), sessionID)
		if err != nil || session.PilotID != claims.PilotID() {
			common.RespondError(w, initTime, nil, "Session not found", http.StatusNotFound)
			return
		}

		if err := h.deps.Services.Session.DeleteSession(r.Context(), sessionID); err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Session closed", nil)
	}
}
