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
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/employees/*      Employee records and their payments
  /api/payroll/*        Run, revert and payslip generation
  /api/payments/*       Saved payments by month
  /api/forms/*          Statutory form computation

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public; deploy
  behind a reverse proxy that authenticates.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/payroll/main.go: Server startup
*/
package api

import (
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
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Employee routes
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Get("/{key}", h.GetEmployee)
			r.Get("/{key}/payments", h.GetEmployeePayments)
		})

		// Payroll run routes
		r.Route("/payroll", func(r chi.Router) {
			r.Post("/run", h.RunPayroll)
			r.Post("/revert", h.RevertPayroll)
			r.Post("/payslips", h.GeneratePayslips)
		})

		// Saved payments by month
		r.Get("/payments/{year}/{month}", h.GetMonthPayments)

		// Payslip download
		r.Get("/payslips/{key}/{year}/{month}", h.DownloadPayslip)

		// Statutory forms
		r.Route("/forms", func(r chi.Router) {
			r.Get("/fs3/{year}/{key}", h.ComputeFS3)
			r.Get("/fs5/{year}/{month}", h.ComputeFS5)
			r.Get("/fs7/{year}", h.ComputeFS7)
		})
	})

	return r
}
