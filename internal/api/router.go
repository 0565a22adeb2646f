package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"staybook/internal/api/middleware"
	"staybook/pkg/logger"
)

type RouterConfig struct {
	Hotels   *HotelHandler
	Bookings *BookingHandler
	Auth     *AuthHandler
	Health   *HealthHandler
	Sessions *middleware.Auth
	Logger   logger.Logger
}

// NewRouter mounts every route and wraps the mux in tracing, logging and
// metrics, outermost first.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	cfg.Hotels.RegisterRoutes(mux, cfg.Sessions)
	cfg.Bookings.RegisterRoutes(mux, cfg.Sessions)
	cfg.Auth.RegisterRoutes(mux, cfg.Sessions)
	if cfg.Health != nil {
		cfg.Health.RegisterRoutes(mux)
	}
	mux.Handle("GET /metrics", promhttp.Handler())

	return middleware.Chain(mux,
		middleware.Tracing,
		middleware.Logging(cfg.Logger),
		middleware.Metrics,
	)
}
