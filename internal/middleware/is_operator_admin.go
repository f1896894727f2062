package middleware

import (
	"net/http"

	"uasfleet/hangar/internal/auth"
	"uasfleet/hangar/internal/constants"
	"uasfleet/hangar/internal/db/repositories"

	"github.com/go-chi/chi/v5"
)

// IsOperatorAdminMiddleware guards operator-scoped management endpoints. The
// operator id comes from the route, never from ambient state, and the caller
// must hold an active admin membership in that operator.
func IsOperatorAdminMiddleware(memberships *repositories.MembershipRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := auth.GetPilotClaims(r.Context())
			if claims == nil || claims.PilotID() == "" {
				http.Error(w, "Unauthorized. Pilot credentials required", http.StatusUnauthorized)
				return
			}

			operatorID := chi.URLParam(r, "operatorID")
			if operatorID == "" {
				http.Error(w, "Missing operator id", http.StatusBadRequest)
				return
			}

			m, err := memberships.GetByPilotAndOperator(r.Context(), claims.PilotID(), operatorID)
			if err != nil {
				http.Error(w, "Unauthorized. Not a member of this operator", http.StatusUnauthorized)
				return
			}

			if m.MembershipState != constants.MembershipActive || m.Role != constants.RoleAdmin {
				http.Error(w, "Unauthorized. Need operator admin perms", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
