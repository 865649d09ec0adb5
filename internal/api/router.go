package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/gourmet/internal/gourmet"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *gourmet.Service, authEnabled bool, token string, sseHandler http.Handler, clientCount func() int) chi.Router {
	h := NewHandler(svc, clientCount)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Dish catalog.
	r.Get("/dishes", h.ListDishes)
	r.Post("/dishes", h.SaveDish)
	r.Delete("/dishes/{id}", h.DeleteDish)

	// Weekly plans.
	r.Get("/plans", h.ListPlans)
	r.Post("/plans", h.AddPlanDish)
	r.Delete("/plans/{year}/{week}/{dishId}", h.RemovePlanDish)
	r.Post("/plans/quick-add/{dishId}", h.QuickAdd)
	r.Get("/weeks", h.ListWeeks)

	// Shopping list.
	r.Get("/plans/{year}/{week}/shopping-list", h.ShoppingList)

	// Categories.
	r.Get("/categories", h.ListCategories)
	r.Put("/categories", h.SaveCategories)

	// Recipe extraction.
	r.Post("/scrape", h.Scrape)
	r.Post("/import", h.Import)

	// Backend status.
	r.Get("/status", h.Status)
	r.Post("/status/check", h.CheckBackend)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
