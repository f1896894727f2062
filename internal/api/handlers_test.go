package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"uasfleet/hangar/internal/auth"
	"uasfleet/hangar/internal/billing"
	"uasfleet/hangar/internal/common"
	"uasfleet/hangar/internal/constants"
	"uasfleet/hangar/internal/db/repositories"
	"uasfleet/hangar/internal/metrics"
	"uasfleet/hangar/internal/models/dtos"
	gormModels "uasfleet/hangar/internal/models/gorm"
	"uasfleet/hangar/internal/services"

	"github.com/go-chi/chi/v5"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// One registry per test binary; promauto registers globally.
var testMetrics = metrics.NewMetricsRegistry()

func setupTestDeps(t *testing.T) (*Dependencies, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(
		&gormModels.Pilot{},
		&gormModels.Operator{},
		&gormModels.Membership{},
		&gormModels.TelegramLinkCode{},
		&gormModels.Flight{},
	); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	cacheSvc := common.NewCacheService(60, 600)
	tenantSvc := services.NewTenantService(db, cacheSvc, nil)

	deps := &Dependencies{
		Repo: &Repositories{
			Memberships: repositories.NewMembershipRepository(db),
			Pilots:      repositories.NewPilotRepository(db),
			Flights:     repositories.NewFlightRepository(db),
		},
		Services: &Services{
			Cache:    cacheSvc,
			Tenant:   tenantSvc,
			Operator: services.NewOperatorService(db, nil, tenantSvc),
			Telegram: services.NewTelegramLinkService(db),
			Billing:  billing.NewManager(db, nil),
		},
		Metrics: testMetrics,
	}
	return deps, db
}

func authedRequest(method, target string, body any, pilotID string) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	ctx := auth.SetPilotClaims(req.Context(), &auth.JWTClaims{
		PilotUUID:  pilotID,
		EmailValue: pilotID + "@example.com",
	})
	return req.WithContext(ctx)
}

func decodeAPIResponse(t *testing.T, rec *httptest.ResponseRecorder) dtos.APIResponse {
	t.Helper()
	var resp dtos.APIResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Decode response: %v (body %q)", err, rec.Body.String())
	}
	return resp
}

func seedActiveMembership(t *testing.T, db *gorm.DB, pilotID, operatorName, slug string) *gormModels.Operator {
	t.Helper()
	pilot := gormModels.Pilot{ID: pilotID, Email: pilotID + "@example.com", DisplayName: pilotID}
	if err := db.Create(&pilot).Error; err != nil {
		t.Fatalf("Seed pilot: %v", err)
	}
	op := gormModels.Operator{Name: operatorName, Slug: slug, IsActive: true}
	if err := db.Create(&op).Error; err != nil {
		t.Fatalf("Seed operator: %v", err)
	}
	m := gormModels.Membership{
		PilotID:         pilotID,
		OperatorID:      op.ID,
		Role:            constants.RoleAdmin,
		RequestState:    constants.RequestActive,
		MembershipState: constants.MembershipActive,
		OperadorActivo:  true,
	}
	if err := db.Create(&m).Error; err != nil {
		t.Fatalf("Seed membership: %v", err)
	}
	return &op
}

func TestGetActiveOperatorHandler(t *testing.T) {
	deps, db := setupTestDeps(t)
	handlers := NewHandlers(deps)

	op := seedActiveMembership(t, db, "pilot-1", "Drones Sevilla", "drones-sevilla")

	req := authedRequest(http.MethodGet, "/api/v1/tenant/active", nil, "pilot-1")
	rec := httptest.NewRecorder()
	handlers.GetActiveOperatorHandler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d, body=%q", rec.Code, rec.Body.String())
	}
	resp := decodeAPIResponse(t, rec)
	if resp.Status != common.APIStatusOk {
		t.Errorf("Unexpected status %q", resp.Status)
	}
	data, _ := resp.Data.(map[string]any)
	if data["operator_id"] != op.ID {
		t.Errorf("Expected operator %s, got %v", op.ID, data["operator_id"])
	}
}

func TestGetActiveOperatorHandler_NoContext(t *testing.T) {
	deps, db := setupTestDeps(t)
	handlers := NewHandlers(deps)

	pilot := gormModels.Pilot{ID: "pilot-1", Email: "pilot-1@example.com"}
	if err := db.Create(&pilot).Error; err != nil {
		t.Fatalf("Seed pilot: %v", err)
	}

	req := authedRequest(http.MethodGet, "/api/v1/tenant/active", nil, "pilot-1")
	rec := httptest.NewRecorder()
	handlers.GetActiveOperatorHandler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected 404 for pilot without working context, got %d", rec.Code)
	}
}

func TestSwitchActiveOperatorHandler(t *testing.T) {
	deps, db := setupTestDeps(t)
	handlers := NewHandlers(deps)

	seedActiveMembership(t, db, "pilot-1", "Op A", "op-a")
	opB := gormModels.Operator{Name: "Op B", Slug: "op-b", IsActive: true}
	if err := db.Create(&opB).Error; err != nil {
		t.Fatalf("Seed operator: %v", err)
	}
	m := gormModels.Membership{
		PilotID:         "pilot-1",
		OperatorID:      opB.ID,
		Role:            constants.RoleOperator,
		RequestState:    constants.RequestActive,
		MembershipState: constants.MembershipActive,
	}
	if err := db.Create(&m).Error; err != nil {
		t.Fatalf("Seed membership: %v", err)
	}

	req := authedRequest(http.MethodPost, "/api/v1/tenant/switch", dtos.SwitchOperatorReq{OperatorID: opB.ID}, "pilot-1")
	rec := httptest.NewRecorder()
	handlers.SwitchActiveOperatorHandler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d, body=%q", rec.Code, rec.Body.String())
	}

	var active int64
	db.Model(&gormModels.Membership{}).
		Where("pilot_id = ? AND operador_activo = ?", "pilot-1", true).
		Count(&active)
	if active != 1 {
		t.Errorf("Expected one active membership, got %d", active)
	}
}

func TestSwitchActiveOperatorHandler_NotAMember(t *testing.T) {
	deps, db := setupTestDeps(t)
	handlers := NewHandlers(deps)

	seedActiveMembership(t, db, "pilot-1", "Op A", "op-a")

	req := authedRequest(http.MethodPost, "/api/v1/tenant/switch",
		dtos.SwitchOperatorReq{OperatorID: "00000000-0000-0000-0000-000000000000"}, "pilot-1")
	rec := httptest.NewRecorder()
	handlers.SwitchActiveOperatorHandler().ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("Expected 403, got %d", rec.Code)
	}
}

func TestCreateOperatorHandler(t *testing.T) {
	deps, db := setupTestDeps(t)
	handlers := NewHandlers(deps)

	req := authedRequest(http.MethodPost, "/api/v1/operators", dtos.CreateOperatorReq{Name: "Águila 7 S.L."}, "pilot-1")
	rec := httptest.NewRecorder()
	handlers.CreateOperatorHandler().ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d, body=%q", rec.Code, rec.Body.String())
	}

	var op gormModels.Operator
	if err := db.Where("slug = ?", "guila-7-s-l").First(&op).Error; err != nil {
		t.Fatalf("Expected operator with slugified name: %v", err)
	}
}

func TestCreateOperatorHandler_MissingName(t *testing.T) {
	deps, _ := setupTestDeps(t)
	handlers := NewHandlers(deps)

	req := authedRequest(http.MethodPost, "/api/v1/operators", dtos.CreateOperatorReq{}, "pilot-1")
	rec := httptest.NewRecorder()
	handlers.CreateOperatorHandler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
}

func TestCompleteLinkHandler_RequiresBotSecret(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_SECRET", "s3cret")

	deps, db := setupTestDeps(t)
	handlers := NewHandlers(deps)

	code, err := deps.Services.Telegram.GenerateCode(context.Background(), services.IdentityMeta{
		PilotID: "pilot-1", Email: "pilot-1@example.com", DisplayName: "pilot-1",
	})
	if err != nil {
		t.Fatalf("GenerateCode: %v", err)
	}

	// Wrong secret is rejected before the code is consumed.
	body := dtos.CompleteTelegramLinkReq{Code: code.Code, TelegramChatID: 42, BotSecret: "wrong"}
	req := authedRequest(http.MethodPost, "/api/v1/telegram/link", body, "pilot-1")
	rec := httptest.NewRecorder()
	handlers.CompleteLinkHandler().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401 for wrong bot secret, got %d", rec.Code)
	}

	body.BotSecret = "s3cret"
	req = authedRequest(http.MethodPost, "/api/v1/telegram/link", body, "pilot-1")
	rec = httptest.NewRecorder()
	handlers.CompleteLinkHandler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d, body=%q", rec.Code, rec.Body.String())
	}

	var pilot gormModels.Pilot
	db.Where("id = ?", "pilot-1").First(&pilot)
	if !pilot.TelegramVerified {
		t.Error("Pilot should be telegram verified after link")
	}
}

func TestCreateFlightHandler_RequiresActiveMembership(t *testing.T) {
	deps, db := setupTestDeps(t)
	handlers := NewHandlers(deps)

	op := seedActiveMembership(t, db, "pilot-1", "Op A", "op-a")

	router := chi.NewRouter()
	router.Post("/operators/{operatorID}/flights", handlers.CreateFlightHandler())

	body := dtos.CreateFlightReq{
		Location:    "Sevilla",
		DurationMin: 30,
		FlownAt:     "2026-08-20T10:00:00Z",
	}

	req := authedRequest(http.MethodPost, "/operators/"+op.ID+"/flights", body, "pilot-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d, body=%q", rec.Code, rec.Body.String())
	}

	// A pilot with no membership in the operator is refused.
	req = authedRequest(http.MethodPost, "/operators/"+op.ID+"/flights", body, "pilot-2")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("Expected 403 for non-member, got %d", rec.Code)
	}
}

func TestUpdateProfileHandler(t *testing.T) {
	deps, db := setupTestDeps(t)
	handlers := NewHandlers(deps)

	seedActiveMembership(t, db, "pilot-1", "Op A", "op-a")

	name := "Ana Morales"
	phone := "+34600111222"
	req := authedRequest(http.MethodPatch, "/user/profile", dtos.UpdateProfileReq{
		DisplayName: &name,
		Phone:       &phone,
	}, "pilot-1")
	rec := httptest.NewRecorder()
	handlers.UpdateProfileHandler()(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d, body=%q", rec.Code, rec.Body.String())
	}

	var pilot gormModels.Pilot
	if err := db.First(&pilot, "id = ?", "pilot-1").Error; err != nil {
		t.Fatalf("Fetch pilot: %v", err)
	}
	if pilot.DisplayName != name {
		t.Errorf("Expected display name %q, got %q", name, pilot.DisplayName)
	}
	if pilot.Phone == nil || *pilot.Phone != phone {
		t.Errorf("Expected phone %q, got %v", phone, pilot.Phone)
	}
}

func TestUpdateProfileHandler_EmptyPayload(t *testing.T) {
	deps, db := setupTestDeps(t)
	handlers := NewHandlers(deps)

	seedActiveMembership(t, db, "pilot-1", "Op A", "op-a")

	req := authedRequest(http.MethodPatch, "/user/profile", dtos.UpdateProfileReq{}, "pilot-1")
	rec := httptest.NewRecorder()
	handlers.UpdateProfileHandler()(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for empty payload, got %d", rec.Code)
	}
}

func TestMyFlightsHandler(t *testing.T) {
	deps, db := setupTestDeps(t)
	handlers := NewHandlers(deps)

	opA := seedActiveMembership(t, db, "pilot-1", "Op A", "op-a")
	opB := seedActiveMembership(t, db, "pilot-2", "Op B", "op-b")

	for i, operatorID := range []string{opA.ID, opB.ID, opA.ID} {
		pilotID := "pilot-1"
		if i == 1 {
			pilotID = "pilot-2"
		}
		flight := gormModels.Flight{
			OperatorID:  operatorID,
			PilotID:     pilotID,
			Location:    "Sevilla",
			DurationMin: 10 + i,
			FlownAt:     time.Date(2026, 8, 20, 10+i, 0, 0, 0, time.UTC),
		}
		if err := db.Create(&flight).Error; err != nil {
			t.Fatalf("Seed flight: %v", err)
		}
	}

	req := authedRequest(http.MethodGet, "/user/flights", nil, "pilot-1")
	rec := httptest.NewRecorder()
	handlers.MyFlightsHandler()(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d, body=%q", rec.Code, rec.Body.String())
	}

	resp := decodeAPIResponse(t, rec)
	flights, ok := resp.Data.([]any)
	if !ok {
		t.Fatalf("Expected flight list, got %T", resp.Data)
	}
	if len(flights) != 2 {
		t.Fatalf("Expected pilot-1's two flights, got %d", len(flights))
	}
}

func TestGetFlightHandler_ScopedToOperator(t *testing.T) {
	deps, db := setupTestDeps(t)
	handlers := NewHandlers(deps)

	opA := seedActiveMembership(t, db, "pilot-1", "Op A", "op-a")
	opB := seedActiveMembership(t, db, "pilot-2", "Op B", "op-b")

	flight := gormModels.Flight{
		OperatorID:  opA.ID,
		PilotID:     "pilot-1",
		Location:    "Granada",
		DurationMin: 25,
		FlownAt:     time.Date(2026, 8, 21, 9, 0, 0, 0, time.UTC),
	}
	if err := db.Create(&flight).Error; err != nil {
		t.Fatalf("Seed flight: %v", err)
	}

	router := chi.NewRouter()
	router.Get("/operators/{operatorID}/flights/{flightID}", handlers.GetFlightHandler())

	req := authedRequest(http.MethodGet, "/operators/"+opA.ID+"/flights/"+flight.ID, nil, "pilot-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d, body=%q", rec.Code, rec.Body.String())
	}

	// The same flight read through another operator's route is invisible.
	req = authedRequest(http.MethodGet, "/operators/"+opB.ID+"/flights/"+flight.ID, nil, "pilot-2")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected 404 for cross-tenant read, got %d", rec.Code)
	}
}
