// Package router sets up all HTTP routes and middleware chains for the
// newsdesk curation service. It organizes routes into public and admin
// groups with appropriate middleware stacks.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"newsdesk/internal/handlers"
	"newsdesk/internal/middleware"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(admin *handlers.Admin, public *handlers.Public, adminLimiter *middleware.RateLimiter) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	// Health check.
	r.Get("/health", healthHandler)

	// Admin curation API. Authentication lives in the fronting proxy;
	// the rate limit guards against a runaway console session.
	r.Route("/admin/api", func(r chi.Router) {
		if adminLimiter != nil {
			r.Use(adminLimiter.Middleware)
		}

		// Fixed positions
		r.Route("/slots", func(r chi.Router) {
			r.Get("/", admin.SlotsGet)
			r.Post("/swap", admin.SlotSwap)
			r.Get("/{slot}", admin.SlotGet)
			r.Put("/{slot}", admin.SlotSet)
			r.Delete("/{slot}", admin.SlotClear)
		})

		// Trending promote/demote
		r.Route("/trending", func(r chi.Router) {
			r.Post("/{id}", admin.TrendingPromote)
			r.Delete("/{id}", admin.TrendingDemote)
			r.Patch("/{id}/growth", admin.TrendingGrowth)
		})

		// Generic list operations (featured, trending, editors_pick)
		r.Route("/lists/{list}", func(r chi.Router) {
			r.Get("/", admin.ListGet)
			r.Post("/reorder", admin.ListReorder)
			r.Put("/{id}", admin.ListAdd)
			r.Delete("/{id}", admin.ListRemove)
		})

		// Article pass-through and the selection picker feed
		r.Route("/articles", func(r chi.Router) {
			r.Get("/", admin.ArticleList)
			r.Get("/latest", admin.ArticlePickerLatest)
			r.Get("/{id}", admin.ArticleGet)
			r.Post("/", admin.ArticleCreate)
			r.Patch("/{id}/status", admin.ArticleSetStatus)
			r.Delete("/{id}", admin.ArticleDelete)
		})
	})

	// Public feed API — cache-backed, degrade-to-empty reads.
	r.Route("/api", func(r chi.Router) {
		r.Get("/home", public.Home)
		r.Get("/latest", public.Latest)
		r.Get("/trending", public.Trending)
		r.Get("/featured", public.Featured)
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
