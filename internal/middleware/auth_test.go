package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"uasfleet/hangar/internal/auth"

	"github.com/golang-jwt/jwt/v5"
)

func signTestToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("Sign token: %v", err)
	}
	return signed
}

func TestAuthMiddleware_ValidBearerToken(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "test-secret")

	var got auth.PilotClaims
	handler := AuthMiddleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = auth.GetPilotClaims(r.Context())
	}))

	token := signTestToken(t, "test-secret", jwt.MapClaims{
		"sub":   "pilot-1",
		"email": "ana@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/user/details", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if got == nil || got.PilotID() != "pilot-1" || got.Email() != "ana@example.com" {
		t.Errorf("Unexpected claims %+v", got)
	}
	if got.IsBot() {
		t.Error("JWT claims must not be flagged as bot")
	}
}

func TestAuthMiddleware_RejectsBadSignature(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "test-secret")

	handler := AuthMiddleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("Handler must not run for a forged token")
	}))

	token := signTestToken(t, "other-secret", jwt.MapClaims{
		"sub": "pilot-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/user/details", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_RejectsExpiredToken(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "test-secret")

	handler := AuthMiddleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("Handler must not run for an expired token")
	}))

	token := signTestToken(t, "test-secret", jwt.MapClaims{
		"sub": "pilot-1",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/user/details", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_RejectsMissingCredentials(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "test-secret")

	handler := AuthMiddleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("Handler must not run without credentials")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/user/details", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d", rec.Code)
	}
}

func TestRequirePilot_BlocksBots(t *testing.T) {
	handler := RequirePilot()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("Handler must not run for bot claims")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tenant/active", nil)
	ctx := auth.SetPilotClaims(req.Context(), &auth.BotClaims{KeyID: "key-1"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req.WithContext(ctx))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d", rec.Code)
	}
}
