package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"uasfleet/hangar/internal/auth"
	"uasfleet/hangar/internal/common"
	"uasfleet/hangar/internal/services"
)

type Handlers struct {
	deps *Dependencies
}

// NewHandlers creates a new handlers instance with injected dependencies
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		deps: deps,
	}
}

// identityFromClaims builds the profile metadata carried into service calls.
// The display name falls back to the email local part until the pilot sets
// one.
func identityFromClaims(claims auth.PilotClaims) services.IdentityMeta {
	display := claims.Email()
	if at := strings.Index(display, "@"); at > 0 {
		display = display[:at]
	}
	return services.IdentityMeta{
		PilotID:     claims.PilotID(),
		Email:       claims.Email(),
		DisplayName: display,
	}
}

// respondServiceError maps service sentinel errors onto HTTP status codes.
func respondServiceError(w http.ResponseWriter, initTime time.Time, err error) {
	switch {
	case errors.Is(err, services.ErrNoActiveOperator),
		errors.Is(err, services.ErrNoProfile),
		errors.Is(err, services.ErrOperatorNotFound):
		common.RespondError(w, initTime, err, "", http.StatusNotFound)
	case errors.Is(err, services.ErrNotAMember):
		common.RespondError(w, initTime, err, "", http.StatusForbidden)
	case errors.Is(err, services.ErrAlreadyMember),
		errors.Is(err, services.ErrRequestNotPending):
		common.RespondError(w, initTime, err, "", http.StatusConflict)
	case errors.Is(err, services.ErrInvalidCode):
		common.RespondError(w, initTime, err, "", http.StatusBadRequest)
	default:
		common.RespondError(w, initTime, err, "Internal error", http.StatusInternalServerError)
	}
}
