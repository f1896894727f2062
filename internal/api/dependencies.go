package api

import (
	"os"

	"uasfleet/hangar/internal/billing"
	"uasfleet/hangar/internal/common"
	"uasfleet/hangar/internal/db"
	"uasfleet/hangar/internal/db/repositories"
	"uasfleet/hangar/internal/metrics"
	"uasfleet/hangar/internal/services"
)

type Repositories struct {
	Operators   *repositories.OperatorRepository
	Keys        *repositories.KeysRepo
	Memberships *repositories.MembershipRepository
	Pilots      *repositories.PilotRepository
	Flights     *repositories.FlightRepository
}

type Services struct {
	Cache    *common.CacheService
	Session  *common.SessionService
	Tenant   *services.TenantService
	Operator *services.OperatorService
	Telegram *services.TelegramLinkService
	Billing  *billing.Manager
	Checkout *billing.CheckoutService
}

type Dependencies struct {
	Repo     *Repositories
	Services *Services
	Metrics  *metrics.MetricsRegistry
}

// InitDependencies wires repositories and services over the already
// initialized database handles.
func InitDependencies(metricsReg *metrics.MetricsRegistry) (*Dependencies, error) {
	repos := &Repositories{
		Operators:   repositories.NewOperatorRepository(db.DB),
		Keys:        repositories.NewApiKeysRepo(db.DB),
		Memberships: repositories.NewMembershipRepository(db.PgDB),
		Pilots:      repositories.NewPilotRepository(db.PgDB),
		Flights:     repositories.NewFlightRepository(db.PgDB),
	}

	cacheSvc := common.NewCacheService(60, 600)
	sessionSvc := common.NewSessionService(common.NewRedisClient())

	tenantSvc := services.NewTenantService(db.PgDB, cacheSvc, sessionSvc)
	operatorSvc := services.NewOperatorService(db.PgDB, repos.Operators, tenantSvc)
	telegramSvc := services.NewTelegramLinkService(db.PgDB)

	billingMgr := billing.NewManager(db.PgDB, nil)
	checkoutSvc := billing.NewCheckoutService(
		os.Getenv("BILLING_SUCCESS_URL"),
		os.Getenv("BILLING_CANCEL_URL"),
	)

	svcs := &Services{
		Cache:    cacheSvc,
		Session:  sessionSvc,
		Tenant:   tenantSvc,
		Operator: operatorSvc,
		Telegram: telegramSvc,
		Billing:  billingMgr,
		Checkout: checkoutSvc,
	}

	return &Dependencies{
		Repo:     repos,
		Services: svcs,
		Metrics:  metricsReg,
	}, nil
}
