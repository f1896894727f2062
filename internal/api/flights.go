package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"uasfleet/hangar/internal/auth"
	"uasfleet/hangar/internal/common"
	"uasfleet/hangar/internal/constants"
	"uasfleet/hangar/internal/models/dtos"
	gormModels "uasfleet/hangar/internal/models/gorm"

	"github.com/go-chi/chi/v5"
)

const defaultFlightPageSize = 50

// CreateFlightHandler handles POST /operators/{operatorID}/flights
//
// Logs a flight for the calling pilot under the operator named in the route.
func (h *Handlers) CreateFlightHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims := auth.GetPilotClaims(r.Context())
		if claims == nil || claims.PilotID() == "" {
			common.RespondError(w, initTime, nil, "Unauthorized", http.StatusUnauthorized)
			return
		}

		operatorID := chi.URLParam(r, "operatorID")

		var req dtos.CreateFlightReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Location == "" || req.DurationMin <= 0 {
			common.RespondError(w, initTime, nil, "location and a positive duration_min are required", http.StatusBadRequest)
			return
		}

		flownAt, err := time.Parse(time.RFC3339, req.FlownAt)
		if err != nil {
			common.RespondError(w, initTime, nil, "flown_at must be RFC3339", http.StatusBadRequest)
			return
		}

		// The caller must hold an active membership in the target operator.
		m, err := h.deps.Repo.Memberships.GetByPilotAndOperator(r.Context(), claims.PilotID(), operatorID)
		if err != nil || m.MembershipState != constants.MembershipActive {
			common.RespondError(w, initTime, nil, "Not an active member of this operator", http.StatusForbidden)
			return
		}

		flight := &gormModels.Flight{
			OperatorID:  operatorID,
			PilotID:     claims.PilotID(),
			DroneID:     req.DroneID,
			Location:    req.Location,
			DurationMin: req.DurationMin,
			FlownAt:     flownAt,
			Notes:       req.Notes,
		}
		if err := h.deps.Repo.Flights.Create(r.Context(), flight); err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		h.deps.Metrics.FlightsLoggedTotal.Inc()
		common.RespondSuccess(w, initTime, "Flight logged", toFlightResponse(flight), http.StatusCreated)
	}
}

// ListOperatorFlightsHandler handles GET /operators/{operatorID}/flights
//
// Admin only. Returns the operator's flight log newest first.
func (h *Handlers) ListOperatorFlightsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		operatorID := chi.URLParam(r, "operatorID")
		limit := defaultFlightPageSize
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= defaultFlightPageSize {
				limit = parsed
			}
		}

		flights, err := h.deps.Repo.Flights.ListByOperator(r.Context(), operatorID, limit)
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

func toFlightResponse(f *gormModels.Flight) dtos.FlightResponse {
	return dtos.FlightResponse{
		ID:          f.ID,
		OperatorID:  f.OperatorID,
		PilotID:     f.PilotID,
		Location:    f.Location,
		DurationMin: f.DurationMin,
		FlownAt:     f.FlownAt,
	}
}

// GetFlightHandler handles GET /operators/{operatorID}/flights/{flightID}
//
// Admin only. The flight must belong to the operator named in the route; a
// flight from another tenant reads as not found.
func (h *Handlers) GetFlightHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		operatorID := chi.URLParam(r, "operatorID")
		flightID := chi.URLParam(r, "flightID")

		flight, err := h.deps.Repo.Flights.GetByID(r.Context(), flightID)
		if err != nil || flight.OperatorID != operatorID {
			common.RespondError(w, initTime, nil, "Flight not found", http.StatusNotFound)
			return
		}

		common.RespondSuccess(w, initTime, "Flight", toFlightResponse(flight))
	}
}
