package controllers

import (
	"context"
	"net/http"

	"github.com/rahul4469/runtime-calculator/internal/logging"
)

// HealthChecker is implemented by stores that can reach a backing service.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// HealthCheck returns a simple health status for monitoring. A nil checker
// always reports ok.
func HealthCheck(checker HealthChecker, logger logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			if err := checker.Health(r.Context()); err != nil {
				logger.Warn("health check failed", "error", err)
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
