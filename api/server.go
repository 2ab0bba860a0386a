/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the HR frontend
  5. Bearer:     Static HR token check, only when a token is configured

ROUTE GROUPS:
  /attendance/policy/*   Default policy + per-employee overrides
  /attendance/hr/*       HR input screens (grid, bulk marking)
  /attendance/*          Validation, penalty apply, ledger readback
  /attendance/scenarios  Demo data loaders (dev only)
  /healthz               Liveness probe

SECURITY NOTE:
  The bearer check is a deployment convenience, not an authorization
  system. Real HR-role authorization lives in the surrounding platform;
  when Token is empty all endpoints are open (dev mode).

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterConfig tunes the router beyond its handler wiring.
type RouterConfig struct {
	// Token, when non-empty, is required as "Authorization: Bearer <Token>"
	// on every /attendance route.
	Token string

	// AllowedOrigins for CORS; defaults to local dev origins when empty.
	AllowedOrigins []string
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:8080"}
	}

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-HR-User"},
		AllowCredentials: true,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/attendance", func(r chi.Router) {
		if cfg.Token != "" {
			r.Use(requireBearer(cfg.Token))
		}

		// Policy routes
		r.Route("/policy", func(r chi.Router) {
			r.Get("/", h.GetDefaultPolicy)
			r.Get("/custom", h.ListCustomPolicies)
			r.Post("/custom", h.SetCustomPolicy)
			r.Delete("/custom/{employee_id}", h.DeleteCustomPolicy)
		})

		// HR input routes
		r.Route("/hr", func(r chi.Router) {
			r.Get("/employee-attendance-input/{month}", h.AttendanceInput)
			r.Post("/mark-attendance-bulk", h.BulkMark)
		})

		// Validation and penalty routes
		r.Post("/auto-validate", h.AutoValidate)
		r.Post("/apply-penalties", h.ApplyPenalties)
		r.Get("/penalties/{month}", h.ListPenalties)

		// Demo scenario routes (dev convenience)
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	return r
}

// requireBearer rejects requests without the configured static token.
func requireBearer(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			got, ok := strings.CutPrefix(auth, "Bearer ")
			if !ok || got != token {
				writeError(w, http.StatusUnauthorized, "Missing or invalid bearer token", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
