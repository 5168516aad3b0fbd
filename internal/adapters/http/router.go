package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gitlab.com/realty/api/realty-listing-service/internal/adapters/middleware"
	"gitlab.com/realty/api/realty-listing-service/internal/domain"
)

const readinessTimeout = 2 * time.Second

// ReadinessCheck is one dependency probed by /ready. A failing critical check
// makes the service unready; a failing non-critical one only degrades it.
type ReadinessCheck struct {
	Name     string
	Ping     func(ctx context.Context) error
	Critical bool
}

// NewRouter wires the middleware chain, the API routes and the operational endpoints.
func NewRouter(h *Handler, checks []ReadinessCheck, logger domain.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestIDMiddleware)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.AccessLogMiddleware(logger))
	r.Use(middleware.MetricsMiddleware)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		domain.NewErrorResponse(domain.ErrCodeNotFound, "Route not found", "").WriteJSON(w, http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		domain.NewErrorResponse(domain.ErrCodeMethodNotAllowed, "Method not allowed", "").WriteJSON(w, http.StatusMethodNotAllowed)
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/ready", readinessHandler(checks))
	r.Handle("/metrics", promhttp.Handler())

	requireAuth := middleware.CookieAuthMiddleware(h.tokens, logger)

	r.Route("/api", func(api chi.Router) {
		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/signup", h.SignUp)
			auth.Post("/signin", h.SignIn)
			auth.Post("/google", h.GoogleSignIn)
			auth.With(requireAuth).Post("/signout/{id}", h.SignOut)
		})

		api.Route("/listing", func(listing chi.Router) {
			listing.Get("/get-listings", h.GetListings)
			listing.With(requireAuth).Post("/create", h.CreateListing)
			listing.Get("/{id}", h.GetListing)
		})

		api.Route("/user", func(user chi.Router) {
			user.Use(requireAuth)
			user.Get("/listings/{id}", h.GetUserListings)
			user.Get("/listing/detail", h.GetUserListingDetail)
			user.Patch("/listing/update/{id}", h.UpdateUserListing)
			user.Patch("/listing/delete/{id}", h.DeleteUserListing)
			user.Patch("/profile/update/{id}", h.UpdateProfile)
			user.Patch("/profile/delete/{id}", h.DeleteProfile)
			user.Get("/get-signature", h.GetUploadSignature)
			user.Get("/{id}", h.GetUser)
		})
	})
	return r
}

func readinessHandler(checks []ReadinessCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for _, c := range checks {
			if err := c.Ping(ctx); err != nil {
				results[c.Name] = err.Error()
				if c.Critical {
					status = http.StatusServiceUnavailable
				}
				continue
			}
			results[c.Name] = "ok"
		}
		writeJSON(w, status, map[string]any{"ready": status == http.StatusOK, "checks": results})
	}
}
