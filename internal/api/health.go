package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"uasfleet/hangar/internal/models/entities"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

// HealthCheckHandler handles GET /healthCheck
//
// Pings postgres and redis concurrently. Either backend being down marks the
// overall status down without failing the request itself.
func HealthCheckHandler(db *sqlx.DB, redisClient *redis.Client, upSince time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		services := make(map[string]entities.ServiceStatus)
		var mu sync.Mutex

		g, gctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			status, details := "ok", "Postgres connected"
			if err := db.PingContext(gctx); err != nil {
				status, details = "down", err.Error()
			}
			mu.Lock()
			services["postgres"] = entities.ServiceStatus{Status: status, Details: details}
			mu.Unlock()
			return nil
		})

		g.Go(func() error {
			status, details := "ok", "Redis connected"
			if redisClient == nil {
				status, details = "down", "Redis not configured"
			} else if err := redisClient.Ping(gctx).Err(); err != nil {
				status, details = "down", err.Error()
			}
			mu.Lock()
			services["redis"] = entities.ServiceStatus{Status: status, Details: details}
			mu.Unlock()
			return nil
		})

		_ = g.Wait()

		overallStatus := "ok"
		for _, svc := range services {
			if svc.Status != "ok" {
				overallStatus = "down"
				break
			}
		}

		uptime := time.Since(upSince).Round(time.Second).String()

		resp := entities.HealthCheckResponse{
			Services: services,
			Status:   overallStatus,
			Uptime:   uptime,
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}
