package handlers

import (
	"context"
	"net/http"
	"time"

	"reelcast/internal/httpkit"
)

const checkTimeout = 5 * time.Second

// Health reports liveness. With ?deep=true it also checks every dependency.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := h.log.FromContext(ctx)

	health := map[string]any{
		"status":  "ok",
		"service": "reelcast-api",
		"version": "0.1.0",
	}

	if r.URL.Query().Get("deep") == "true" {
		checks := h.deepHealthCheck(ctx)
		health["checks"] = checks

		for _, check := range checks {
			if check["status"] != "ok" {
				health["status"] = "degraded"
				log.Warn("health check degraded", "checks", checks)
				break
			}
		}
	}

	httpkit.WriteJSON(w, http.StatusOK, health)
}

func (h *Handler) deepHealthCheck(ctx context.Context) map[string]map[string]any {
	checks := make(map[string]map[string]any)
	if h.repo != nil {
		checks["postgres"] = timedCheck(ctx, h.repo.Ping)
	}
	if h.queue != nil {
		checks["redis"] = timedCheck(ctx, h.queue.Ping)
	}
	if h.engine != nil {
		checks["ffmpeg"] = timedCheck(ctx, h.engine.Load)
	}
	if h.sp != nil {
		checks["storage"] = map[string]any{
			"status":   "ok",
			"provider": h.sp.Provider(),
		}
	}
	return checks
}

func timedCheck(ctx context.Context, ping func(context.Context) error) map[string]any {
	start := time.Now()
	result := map[string]any{"status": "ok"}

	checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	if err := ping(checkCtx); err != nil {
		result["status"] = "error"
		result["error"] = err.Error()
	}

	result["latency_ms"] = time.Since(start).Milliseconds()
	return result
}
