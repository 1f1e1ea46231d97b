package handlers

import (
	"context"
	"net/http"
	"time"
)

// Check represents the status of a dependency check.
type Check struct {
	Status  string `json:"status"`            // "pass" or "fail"
	Latency string `json:"latency,omitempty"` // e.g., "2ms"
	Message string `json:"message,omitempty"`
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status        string           `json:"status"` // "healthy" or "degraded"
	UsersCount    int              `json:"users_count"`
	RoomsCount    int              `json:"rooms_count"`
	TotalMessages int              `json:"total_messages"`
	Checks        map[string]Check `json:"checks,omitempty"`
	Timestamp     string           `json:"timestamp"`
}

// Health reports the core counters plus checks for the optional
// dependencies. Unconfigured dependencies are simply absent: the volatile
// core works without them.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	users, rooms, messages := h.store.Stats()

	checks := make(map[string]Check)
	allHealthy := true

	if h.redis != nil {
		start := time.Now()
		if err := h.redis.Ping(ctx).Err(); err != nil {
			checks["redis"] = Check{Status: "fail", Message: "connection failed"}
			allHealthy = false
		} else {
			checks["redis"] = Check{Status: "pass", Latency: time.Since(start).String()}
		}
	}

	if h.arc != nil {
		start := time.Now()
		if err := h.arc.Ping(ctx); err != nil {
			checks["archive"] = Check{Status: "fail", Message: "connection failed"}
			allHealthy = false
		} else {
			checks["archive"] = Check{Status: "pass", Latency: time.Since(start).String()}
		}
	}

	status := "healthy"
	statusCode := http.StatusOK
	if !allHealthy {
		status = "degraded"
		statusCode = http.StatusServiceUnavailable
	}

	h.JSON(w, statusCode, HealthResponse{
		Status:        status,
		UsersCount:    users,
		RoomsCount:    rooms,
		TotalMessages: messages,
		Checks:        checks,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	})
}
