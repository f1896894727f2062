package routes

import (
	"net/http"
	"os"

	"uasfleet/hangar/internal/api"
	"uasfleet/hangar/internal/billing"
	"uasfleet/hangar/internal/metrics"
	"uasfleet/hangar/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// RegisterAPIRoutes registers all API v1 routes and handlers
// This keeps API route registration separate from the main router setup
func RegisterAPIRoutes(r chi.Router, handlers *api.Handlers, deps *api.Dependencies, metricsReg *metrics.MetricsRegistry) {

	// API v1 routes
	r.Route("/api/v1", func(v1 chi.Router) {
		// Billing webhook skips the auth middleware; it authenticates with
		// the provider signature instead.
		webhookHandler := billing.NewWebhookHandler(
			os.Getenv("STRIPE_WEBHOOK_SECRET"),
			deps.Services.Billing,
			metricsReg,
		)
		v1.Method(http.MethodPost, "/billing/webhook", webhookHandler)

		// Authenticated routes
		v1.Group(func(authed chi.Router) {
			authed.Use(middleware.RateLimitMiddleware)
			authed.Use(middleware.AuthMiddleware(deps.Repo.Keys))

			// Bot-reachable: the Telegram bot backend completes link codes
			// with its API key plus a shared secret in the payload.
			authed.Post("/telegram/link", handlers.CompleteLinkHandler())

			// Pilot-only group
			authed.Group(func(pilot chi.Router) {
				pilot.Use(middleware.RequirePilot())

				pilot.Get("/user/details", handlers.UserDetailsHandler())
				pilot.Patch("/user/profile", handlers.UpdateProfileHandler())
				pilot.Get("/user/flights", handlers.MyFlightsHandler())

				pilot.Post("/auth/session", handlers.CreateSessionHandler())
				pilot.Get("/auth/session/{sessionID}", handlers.GetSessionHandler())
				pilot.Delete("/auth/session/{sessionID}", handlers.DeleteSessionHandler())

				pilot.Get("/tenant/active", handlers.GetActiveOperatorHandler())
				pilot.Post("/tenant/switch", handlers.SwitchActiveOperatorHandler())

				pilot.Post("/operators", handlers.CreateOperatorHandler())
				pilot.Get("/operators/search", handlers.SearchOperatorsHandler())
				pilot.Get("/operators/by-slug/{slug}", handlers.GetOperatorBySlugHandler())
				pilot.Post("/operators/{operatorID}/join", handlers.JoinOperatorHandler())
				pilot.Post("/operators/{operatorID}/flights", handlers.CreateFlightHandler())

				pilot.Post("/telegram/link-code", handlers.RequestLinkCodeHandler())

				pilot.Post("/billing/checkout", handlers.StartCheckoutHandler())

				// Operator-admin group: the operator id always comes from
				// the route, never from the caller's active-operator state.
				pilot.Group(func(admin chi.Router) {
					admin.Use(middleware.IsOperatorAdminMiddleware(deps.Repo.Memberships))

					admin.Get("/operators/{operatorID}/members", handlers.ListMembersHandler())
					admin.Delete("/operators/{operatorID}/members/{membershipID}", handlers.RemoveMemberHandler())
					admin.Post("/operators/{operatorID}/requests/{membershipID}/review", handlers.ReviewJoinRequestHandler())
					admin.Get("/operators/{operatorID}/flights", handlers.ListOperatorFlightsHandler())
					admin.Get("/operators/{operatorID}/flights/{flightID}", handlers.GetFlightHandler())
				})
			})
		})
	})
}
