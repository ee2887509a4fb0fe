package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ordermacro/internal/config"
	apperrors "ordermacro/internal/errors"
	"ordermacro/internal/middleware"
)

// RouterDeps are the collaborators of the HTTP service. Optional fields may be nil.
type RouterDeps struct {
	Macros  *MacroHandler
	Health  *HealthHandler
	Server  config.ServerConfig
	Errors  *apperrors.ErrorHandler
	Logger  *slog.Logger
	OTel    *middleware.OTelMiddleware
	WS      http.Handler
	Metrics http.Handler
	CORS    *middleware.CORSConfig
}

// NewRouter wires middleware and routes.
// The websocket route only gets RequestID and RealIP since the other
// middleware wrap the ResponseWriter and would break the hijack.
func NewRouter(deps RouterDeps) chi.Router {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.NotFound(deps.Errors.NotFound)
	r.MethodNotAllowed(deps.Errors.MethodNotAllowed)

	if deps.WS != nil {
		r.Handle("/ws", deps.WS)
	}
	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics)
	}

	r.Group(func(r chi.Router) {
		if deps.OTel != nil {
			r.Use(deps.OTel.Handler)
		}
		r.Use(middleware.StructuredLogger(logger))
		r.Use(middleware.Recoverer(logger))
		r.Use(middleware.SecurityHeaders)
		if deps.CORS != nil {
			r.Use(middleware.CORS(*deps.CORS))
		}

		if deps.Health != nil {
			r.Get("/healthz", deps.Health.Liveness)
			r.Get("/readyz", deps.Health.Readiness)
		}

		r.Route("/api/v1", func(r chi.Router) {
			r.Use(deps.Errors.Middleware)
			if rl := deps.Server.RateLimit; rl.Enabled {
				r.Use(middleware.NewRateLimiter(rl.RPS, rl.Burst, logger).Handler)
			}
			if deps.Server.RunTimeout > 0 {
				r.Use(middleware.Timeout(deps.Server.RunTimeout, logger))
			}
			r.Group(func(r chi.Router) {
				if deps.Server.MaxUploadBytes > 0 {
					r.Use(middleware.UploadLimit(deps.Server.MaxUploadBytes, deps.Errors, logger))
				}
				deps.Macros.Routes(r)
			})
		})
	})

	return r
}
