package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.Healthz)
	r.Get("/readyz", h.Readyz)

	// Slack-originated callbacks, also served on the paths used by older app manifests.
	r.Group(func(r chi.Router) {
		if h.cfg.VerifySignatures {
			r.Use(verifySlackSignature(h.cfg.SigningSecret))
		}
		r.Post("/events", h.Events)
		r.Post("/actions", h.Actions)
		r.Post("/slack/events", h.Events)
		r.Post("/slack/actions", h.Actions)
	})

	r.Post("/send_message", h.SendMessage)
	r.Post("/display_reviews", h.DisplayReviews)
	r.Options("/display_reviews", h.DisplayReviewsPreflight)
	r.Get("/reviews/pending", h.PendingReviews)

	return r
}
