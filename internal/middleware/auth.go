package middleware

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"uasfleet/hangar/internal/auth"
	"uasfleet/hangar/internal/db/repositories"

	"github.com/golang-jwt/jwt/v5"
)

// AuthMiddleware authenticates requests either as a pilot (Bearer JWT) or as
// a bot integration (X-API-Key). The resolved claims are attached to the
// request context.
func AuthMiddleware(keysRepo *repositories.KeysRepo) func(http.Handler) http.Handler {
	secret := []byte(os.Getenv("AUTH_JWT_SECRET"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			apiKey := r.Header.Get("X-API-Key")

			var claims auth.PilotClaims

			switch {
			case strings.HasPrefix(authHeader, "Bearer "):
				token := strings.TrimPrefix(authHeader, "Bearer ")
				parsed, err := parsePilotToken(token, secret)
				if err != nil {
					http.Error(w, "Unauthorized. Invalid token", http.StatusUnauthorized)
					return
				}
				claims = parsed

			case apiKey != "":
				keyRes, err := keysRepo.GetStatus(r.Context(), apiKey)
				if err != nil {
					http.Error(w, "Unauthorized. Invalid API Key", http.StatusUnauthorized)
					return
				}
				if !keyRes.Status {
					http.Error(w, "Unauthorized. Inactive API Key", http.StatusUnauthorized)
					return
				}
				claims = &auth.BotClaims{KeyID: keyRes.ID, LabelValue: keyRes.Label}

			default:
				http.Error(w, "Unauthorized. Missing credentials", http.StatusUnauthorized)
				return
			}

			ctx := auth.SetPilotClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// parsePilotToken validates an HS256 token from the identity provider and
// extracts the pilot id (sub) and email claims.
func parsePilotToken(tokenString string, secret []byte) (*auth.JWTClaims, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("jwt secret not configured")
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	sub, _ := mapClaims["sub"].(string)
	if sub == "" {
		return nil, fmt.Errorf("token missing sub claim")
	}
	email, _ := mapClaims["email"].(string)

	return &auth.JWTClaims{PilotUUID: sub, EmailValue: email}, nil
}

// RequirePilot rejects bot traffic on endpoints that act on the calling
// pilot's own identity.
func RequirePilot() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := auth.GetPilotClaims(r.Context())
			if claims == nil || claims.IsBot() {
				http.Error(w, "Unauthorized. Pilot credentials required", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
