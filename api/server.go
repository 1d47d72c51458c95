/*
server.go - Router and middleware wiring

PURPOSE:
  Assembles the chi router: request logging, panic recovery, request ids,
  CORS for the SPA origin (credentials allowed, the session rides on
  cookies), and Prometheus instrumentation, then mounts the derived-view
  routes.

SEE ALSO:
  - handlers.go: The handlers mounted here
  - metrics.go:  The /metrics endpoint and middleware
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter builds the HTTP routing table.
func NewRouter(h *Handler, m *Metrics, corsOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRFToken"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(m.Middleware)

	r.Route("/api", func(r chi.Router) {
		r.Route("/socios/{id}", func(r chi.Router) {
			r.Get("/actividades", h.GetMemberActivities)
			r.Get("/inscripciones", h.GetMemberEnrollments)
			r.Post("/inscripciones", h.Enroll)
			r.Get("/cuotas", h.GetMemberDues)
		})

		r.Post("/inscripciones/{id}/cancelar", h.CancelEnrollment)
		r.Post("/cuotas/{id}/comprobante", h.UploadProof)

		r.Get("/staff/{id}/compensaciones", h.GetStaffCompensations)
		r.Get("/session/views", h.GetSessionViews)
		r.Get("/reportes/cuotas.xlsx", h.ExportDuesReport)
	})

	r.Get("/healthz", h.Healthz)
	r.Method(http.MethodGet, "/metrics", m.Handler())

	return r
}
