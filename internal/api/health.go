package api

import (
	"context"
	"net/http"
	"time"

	"portal-united/directory/internal/models/entities"
)

// HealthCheckHandler handles GET /healthCheck
func HealthCheckHandler(deps *Dependencies, upSince time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		services := make(map[string]entities.ServiceStatus)

		pgStatus := entities.ServiceStatus{Status: "ok", Details: "Postgres Connected"}
		if err := deps.Repo.Stats.Ping(ctx); err != nil {
			pgStatus = entities.ServiceStatus{Status: "down", Details: err.Error()}
		}
		services["postgres"] = pgStatus

		if deps.Redis != nil {
			redisStatus := entities.ServiceStatus{Status: "ok", Details: "Redis Connected"}
			if err := deps.Redis.Ping(ctx).Err(); err != nil {
				redisStatus = entities.ServiceStatus{Status: "down", Details: err.Error()}
			}
			services["redis"] = redisStatus
		}

		if deps.SQLX != nil {
			stats := deps.SQLX.Stats()
			deps.Metrics.DBConnections.WithLabelValues("open").Set(float64(stats.OpenConnections))
			deps.Metrics.DBConnections.WithLabelValues("in_use").Set(float64(stats.InUse))
			deps.Metrics.DBConnections.WithLabelValues("idle").Set(float64(stats.Idle))
		}

		overallStatus := "ok"
		for _, svc := range services {
			if svc.Status != "ok" {
				overallStatus = "down"
				break
			}
		}

		resp := entities.HealthCheckResponse{
			Status:   overallStatus,
			Services: services,
			UpSince:  upSince,
			Uptime:   time.Since(upSince).Round(time.Second).String(),
		}

		code := http.StatusOK
		if overallStatus != "ok" {
			code = http.StatusServiceUnavailable
		}
		respondJSON(w, code, &resp)
	}
}
