package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/belmontfield/dispatch/internal/observability"
	"github.com/belmontfield/dispatch/internal/rateLimit"
)

func SetupRouter(h *Handlers, logger observability.Logger, rl *rateLimit.RateLimiter) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(LoggerMiddleware(logger))
	r.Use(TracingMiddleware)
	r.Use(MetricsMiddleware)
	if rl != nil {
		r.Use(RateLimitMiddleware(rl))
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/availability", h.GetAvailability)
		r.Post("/slots", h.ListSlots)

		r.Route("/holds", func(r chi.Router) {
			r.Post("/", h.CreateHold)
			r.Get("/", h.GetHoldByCustomer)
			r.Get("/active", h.ListActiveHolds)
			r.Get("/{id}", h.GetHold)
			r.Post("/{id}/release", h.ReleaseHold)
			r.Post("/{id}/confirm", h.ConfirmHold)
		})

		r.Post("/bookings", h.FinalizeBooking)
		r.Post("/bookings/{eventID}/notes", h.AppendNotes)

		r.Post("/service-area/check", h.CheckServiceArea)
		r.Post("/estimate", h.EstimatePrice)
		r.Post("/jobs/plan", h.PlanJob)
		r.Post("/triage", h.Triage)
		r.Post("/leads", h.CreateLead)

		r.Route("/intake", func(r chi.Router) {
			r.Post("/links", h.CreateIntakeLink)
			r.Get("/links/{token}", h.GetIntakeData)
			r.Post("/submit", h.SubmitIntakeForm)
			r.Post("/sms", h.SendIntakeSMS)
			r.Post("/finalize", h.FinalizeIntakeBooking)
		})

		r.Get("/context", h.Context)
	})

	r.Get("/healthz", h.Healthz)
	r.Get("/readyz", h.Readyz)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	return r
}
