package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/heartmarshall/bazaar-backend/internal/transport/middleware"
)

// RouterDeps holds the handlers and middleware the router mounts. Media and
// Metrics are optional.
type RouterDeps struct {
	Donations *DonationHandler
	Bazaars   *BazaarHandler
	Health    *HealthHandler
	Metrics   http.Handler
	Media     http.Handler

	// Global wraps every route, Auth every API route and WriteLimit the
	// create and upload routes.
	Global     middleware.Middleware
	Auth       middleware.Middleware
	WriteLimit middleware.Middleware
}

// NewRouter builds the HTTP API.
func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Get("/live", d.Health.Live)
	r.Get("/ready", d.Health.Ready)
	r.Get("/health", d.Health.Health)
	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics)
	}
	if d.Media != nil {
		r.Handle("/media/*", http.StripPrefix("/media/", d.Media))
	}

	r.Group(func(r chi.Router) {
		use(r, d.Auth)

		r.Get("/bazaars", d.Bazaars.List)
		r.Get("/bazaars/{id}", d.Bazaars.Get)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireActor)

			r.Put("/bazaars/{id}/accepting", d.Bazaars.SetAccepting)

			r.Route("/donations", func(r chi.Router) {
				r.With(limit(d.WriteLimit)...).Post("/", d.Donations.Create)
				r.With(limit(d.WriteLimit)...).Post("/photos", d.Donations.UploadPhotos)
				r.Get("/photos", d.Donations.ListPhotos)
				r.Get("/mine", d.Donations.History)
				r.Get("/{id}", d.Donations.Get)
				r.Get("/{id}/qr", d.Donations.QRCode)
			})

			r.Route("/admin/donations", func(r chi.Router) {
				r.Get("/pending", d.Donations.PendingQueue)
				r.Post("/{id}/approve", d.Donations.Approve)
				r.Post("/{id}/reject", d.Donations.Reject)
				r.Post("/{id}/bazaar", d.Donations.AssignBazaar)
			})

			r.Route("/bazaar/donations", func(r chi.Router) {
				r.Get("/", d.Donations.BazaarQueue)
				r.Post("/{id}/deliver", d.Donations.Deliver)
			})
		})
	})

	if d.Global != nil {
		return d.Global(r)
	}
	return r
}

func use(r chi.Router, mw middleware.Middleware) {
	if mw != nil {
		r.Use(mw)
	}
}

func limit(mw middleware.Middleware) []func(http.Handler) http.Handler {
	if mw == nil {
		return nil
	}
	return []func(http.Handler) http.Handler{mw}
}
