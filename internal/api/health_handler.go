package api

import (
	"context"
	"net/http"
	"time"

	"staybook/pkg/logger"
)

// Check is one dependency probed by the health endpoints. Stats, when set,
// adds details to the healthy report.
type Check struct {
	Name  string
	Ping  func(ctx context.Context) error
	Stats func() map[string]interface{}
}

type HealthHandler struct {
	checks  []Check
	timeout time.Duration
	logger  logger.Logger
}

type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

func NewHealthHandler(logger logger.Logger, checks ...Check) *HealthHandler {
	return &HealthHandler{
		checks:  checks,
		timeout: 2 * time.Second,
		logger:  logger,
	}
}

// HealthCheck reports every dependency; 503 when any is unhealthy.
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	services := make(map[string]interface{}, len(h.checks))
	status := "healthy"

	for _, c := range h.checks {
		report := map[string]interface{}{"status": "healthy"}
		if err := c.Ping(ctx); err != nil {
			report = map[string]interface{}{"status": "unhealthy", "error": err.Error()}
			status = "degraded"
			h.logger.Warn("Health check failed", map[string]interface{}{"service": c.Name, "error": err.Error()})
		} else if c.Stats != nil {
			for k, v := range c.Stats() {
				report[k] = v
			}
		}
		services[c.Name] = report
	}

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, HealthResponse{
		Status:    status,
		Timestamp: time.Now(),
		Services:  services,
	})
}

// ReadinessCheck answers 200 only when every dependency responds.
func (h *HealthHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	issues := make([]string, 0)
	for _, c := range h.checks {
		if err := c.Ping(ctx); err != nil {
			issues = append(issues, c.Name+": "+err.Error())
		}
	}

	if len(issues) > 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status": "not_ready",
			"issues": issues,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ready"})
}

func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.HealthCheck)
	mux.HandleFunc("GET /readyz", h.ReadinessCheck)
}
