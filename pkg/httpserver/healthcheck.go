package httpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/devicekey/pkg/logger"
)

// DefaultCheckTimeout bounds each readiness probe run.
const DefaultCheckTimeout = 2 * time.Second

// Check is a named readiness dependency such as a database ping.
type Check struct {
	Name  string
	Probe func(context.Context) error
}

// HealthStatus is the JSON body written by the health handlers.
type HealthStatus struct {
	Status string   `json:"status"`
	Failed []string `json:"failed,omitempty"`
}

// LivenessHandler always answers 200 {"status":"alive"}.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeHealth(w, http.StatusOK, HealthStatus{Status: "alive"})
	}
}

// ReadinessHandler runs every check against the request context, bounded by
// DefaultCheckTimeout. It answers 200 {"status":"ready"} when all pass and
// 503 with the names of failed checks otherwise.
func ReadinessHandler(log *slog.Logger, checks ...Check) http.HandlerFunc {
	if log == nil {
		log = logger.Discard()
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), DefaultCheckTimeout)
		defer cancel()

		var failed []string
		for _, c := range checks {
			if err := c.Probe(ctx); err != nil {
				log.ErrorContext(ctx, "readiness check failed",
					slog.String("check", c.Name),
					logger.Error(err),
				)
				failed = append(failed, c.Name)
			}
		}

		if len(failed) > 0 {
			writeHealth(w, http.StatusServiceUnavailable, HealthStatus{Status: "not_ready", Failed: failed})
			return
		}
		writeHealth(w, http.StatusOK, HealthStatus{Status: "ready"})
	}
}

func writeHealth(w http.ResponseWriter, status int, body HealthStatus) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
