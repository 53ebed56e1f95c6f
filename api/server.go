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
  4. CORS:       Cross-origin requests for the dashboard

ROUTE GROUPS:
  /health               Liveness probe
  /api/components/*     Component master data
  /api/outlook/*        Planning board and snapshots
  /api/orders/*         Purchase order book and receiving
  /api/pace/*           Weekly pace reports
  /api/goals/*          Weekly build goals
  /api/shipments/*      Daily shipped counts
  /api/history/*        Balance reconciliation
  /api/activity         Stock event feed
  /api/adjustments/*    Manual corrections

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.
  Front the server with a gateway before exposing it.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/health", h.Health)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Component routes
		r.Route("/components", func(r chi.Router) {
			r.Get("/", h.ListComponents)
			r.Post("/", h.CreateComponent)
			r.Get("/{id}", h.GetComponent)
		})

		// Outlook routes
		r.Route("/outlook", func(r chi.Router) {
			r.Get("/", h.GetOutlook)
			r.Post("/refresh", h.RefreshOutlook)
			r.Get("/{id}", h.GetComponentOutlook)
		})

		// Order routes
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.ListOrders)
			r.Post("/", h.CreateOrder)
			r.Get("/{id}", h.GetOrder)
			r.Delete("/{id}", h.DeleteOrder)
			r.Post("/{id}/receive", h.ReceiveOrder)
			r.Post("/{id}/undo-receipt", h.UndoReceipt)
		})

		// Pace routes
		r.Route("/pace", func(r chi.Router) {
			r.Get("/", h.GetPace)
			r.Get("/{id}", h.GetComponentPace)
		})

		// Goal and shipment routes
		r.Put("/goals/{id}", h.PutGoal)
		r.Post("/shipments/{id}", h.RecordShipment)

		// History routes
		r.Route("/history", func(r chi.Router) {
			r.Get("/", h.GetHistorySummary)
			r.Get("/{id}", h.GetComponentHistory)
		})
		r.Get("/activity", h.GetActivity)

		// Adjustment routes
		r.Post("/adjustments/{id}", h.ApplyAdjustment)
	})

	// Plain index so a browser hit shows where to look.
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>MRP Engine</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>MRP Engine API</h1>
<h2>API Endpoints</h2>
<ul>
<li><a href="/api/components">/api/components</a> - Component master data</li>
<li><a href="/api/outlook">/api/outlook</a> - Planning board</li>
<li><a href="/api/orders">/api/orders</a> - Purchase order book</li>
<li><a href="/api/pace">/api/pace</a> - Weekly pace report</li>
<li><a href="/api/history">/api/history</a> - Balance reconciliation</li>
<li><a href="/api/activity">/api/activity</a> - Stock event feed</li>
</ul>
</body>
</html>`))
	})

	return r
}
