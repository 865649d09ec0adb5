package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/gourmet/internal/apperr"
	"github.com/starford/gourmet/internal/gourmet"
	"github.com/starford/gourmet/internal/models"
)

// Handler holds API route handlers.
type Handler struct {
	svc     *gourmet.Service
	clients func() int
}

// NewHandler creates a new Handler. clientCount reports connected SSE
// clients for the status endpoint; nil means zero.
func NewHandler(svc *gourmet.Service, clientCount func() int) *Handler {
	if clientCount == nil {
		clientCount = func() int { return 0 }
	}
	return &Handler{svc: svc, clients: clientCount}
}

// writeError maps domain errors onto HTTP status codes.
func writeError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrSourceBlocked):
		writeJSON(w, http.StatusBadGateway, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrExtraction):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody(err.Error()))
	default:
		slog.Error(logMsg, slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

func yearWeekParams(r *http.Request) (year, week int, err error) {
	year, err = strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		return 0, 0, errors.New("year must be numeric")
	}
	week, err = strconv.Atoi(chi.URLParam(r, "week"))
	if err != nil {
		return 0, 0, errors.New("week must be numeric")
	}
	return year, week, nil
}

// ListDishes handles GET /api/dishes.
//
//	@Summary		List all dishes with ingredients and tags
//	@Tags			dishes
//	@Produce		json
//	@Success		200	{object}	DishListResponse
//	@Security		BearerAuth
//	@Router			/dishes [get]
func (h *Handler) ListDishes(w http.ResponseWriter, r *http.Request) {
	dishes, err := h.svc.Dishes(r.Context())
	if err != nil {
		writeError(w, err, "list dishes failed")
		return
	}
	writeJSON(w, http.StatusOK, DishListResponse{Dishes: dishes})
}

// SaveDish handles POST /api/dishes.
//
//	@Summary		Create or update a dish
//	@Tags			dishes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		models.Dish	true	"Dish to save; omit id to create"
//	@Success		200		{object}	models.Dish
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/dishes [post]
func (h *Handler) SaveDish(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var dish models.Dish
	if err := json.NewDecoder(r.Body).Decode(&dish); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	created := dish.ID == ""
	saved, err := h.svc.SaveDish(r.Context(), dish)
	if err != nil {
		writeError(w, err, "save dish failed")
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, saved)
}

// DeleteDish handles DELETE /api/dishes/{id}.
//
//	@Summary		Delete a dish and its plan assignments
//	@Tags			dishes
//	@Param			id	path	string	true	"Dish id"
//	@Success		204
//	@Security		BearerAuth
//	@Router			/dishes/{id} [delete]
func (h *Handler) DeleteDish(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteDish(r.Context(), id); err != nil {
		writeError(w, err, "delete dish failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListPlans handles GET /api/plans.
//
//	@Summary		List all weekly plans
//	@Tags			plans
//	@Produce		json
//	@Success		200	{object}	PlanListResponse
//	@Security		BearerAuth
//	@Router			/plans [get]
func (h *Handler) ListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.svc.Plans(r.Context())
	if err != nil {
		writeError(w, err, "list plans failed")
		return
	}
	writeJSON(w, http.StatusOK, PlanListResponse{Plans: plans})
}

// AddPlanDish handles POST /api/plans.
//
//	@Summary		Assign a dish to a calendar week
//	@Tags			plans
//	@Accept			json
//	@Produce		json
//	@Param			body	body		PlanAssignmentRequest	true	"Assignment"
//	@Success		200		{object}	models.WeeklyPlan
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/plans [post]
func (h *Handler) AddPlanDish(w http.ResponseWriter, r *http.Request) {
	var req PlanAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := h.svc.AddDishToPlan(r.Context(), req.Year, req.Week, req.DishID); err != nil {
		writeError(w, err, "add plan dish failed")
		return
	}
	plan, err := h.svc.Plan(r.Context(), req.Year, req.Week)
	if err != nil {
		writeError(w, err, "load plan failed")
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// RemovePlanDish handles DELETE /api/plans/{year}/{week}/{dishId}.
//
//	@Summary		Remove one dish assignment from a week
//	@Tags			plans
//	@Param			year	path	int		true	"ISO year"
//	@Param			week	path	int		true	"ISO week"
//	@Param			dishId	path	string	true	"Dish id"
//	@Success		204
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/plans/{year}/{week}/{dishId} [delete]
func (h *Handler) RemovePlanDish(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid year"))
		return
	}
	week, err := strconv.Atoi(chi.URLParam(r, "week"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid week"))
		return
	}
	dishID := chi.URLParam(r, "dishId")

	if err := h.svc.RemoveDishFromPlan(r.Context(), year, week, dishID); err != nil {
		writeError(w, err, "remove plan dish failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// QuickAdd handles POST /api/plans/quick-add/{dishId}.
//
//	@Summary		Assign a dish to the default target week
//	@Tags			plans
//	@Produce		json
//	@Param			dishId	path		string	true	"Dish id"
//	@Success		200		{object}	models.WeeklyPlan
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/plans/quick-add/{dishId} [post]
func (h *Handler) QuickAdd(w http.ResponseWriter, r *http.Request) {
	dishID := chi.URLParam(r, "dishId")
	year, week, err := h.svc.QuickAddDish(r.Context(), dishID)
	if err != nil {
		writeError(w, err, "quick add failed")
		return
	}
	plan, err := h.svc.Plan(r.Context(), year, week)
	if err != nil {
		writeError(w, err, "load plan failed")
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// ListWeeks handles GET /api/weeks.
//
//	@Summary		Current planning window
//	@Tags			plans
//	@Produce		json
//	@Success		200	{object}	WeekListResponse
//	@Security		BearerAuth
//	@Router			/weeks [get]
func (h *Handler) ListWeeks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, WeekListResponse{Weeks: h.svc.RelevantWeeks()})
}

// ShoppingList handles GET /api/plans/{year}/{week}/shopping-list.
//
//	@Summary		Consolidated shopping list for one week
//	@Tags			shopping
//	@Produce		json
//	@Param			year	path		int	true	"ISO year"
//	@Param			week	path		int	true	"ISO week"
//	@Success		200		{object}	gourmet.ShoppingList
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/plans/{year}/{week}/shopping-list [get]
func (h *Handler) ShoppingList(w http.ResponseWriter, r *http.Request) {
	year, week, err := yearWeekParams(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	list, err := h.svc.ShoppingListForWeek(r.Context(), year, week)
	if err != nil {
		writeError(w, err, "shopping list failed")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// ListCategories handles GET /api/categories.
//
//	@Summary		Ordered category list
//	@Tags			categories
//	@Produce		json
//	@Success		200	{object}	CategoryListResponse
//	@Security		BearerAuth
//	@Router			/categories [get]
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.svc.Categories(r.Context())
	if err != nil {
		writeError(w, err, "list categories failed")
		return
	}
	writeJSON(w, http.StatusOK, CategoryListResponse{Categories: cats})
}

// SaveCategories handles PUT /api/categories. The write is debounced, so
// the response is 202 rather than 200.
//
//	@Summary		Replace the full category list
//	@Tags			categories
//	@Accept			json
//	@Param			body	body	CategoryListRequest	true	"Full category list in display order"
//	@Success		202
//	@Failure		400	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/categories [put]
func (h *Handler) SaveCategories(w http.ResponseWriter, r *http.Request) {
	var req CategoryListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	h.svc.SaveCategories(r.Context(), req.Categories)
	w.WriteHeader(http.StatusAccepted)
}

// Scrape handles POST /api/scrape.
//
//	@Summary		Extract a recipe candidate from a URL
//	@Tags			scrape
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ScrapeRequest	true	"Recipe page URL"
//	@Success		200		{object}	ScrapeResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/scrape [post]
func (h *Handler) Scrape(w http.ResponseWriter, r *http.Request) {
	var req ScrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("url is required"))
		return
	}

	cand, err := h.svc.ScrapeRecipe(r.Context(), req.URL)
	if err != nil {
		// Extraction failures are part of the contract, not transport
		// errors: the response stays 200 with success=false.
		if errors.Is(err, apperr.ErrExtraction) || errors.Is(err, apperr.ErrSourceBlocked) {
			writeJSON(w, http.StatusOK, ScrapeResponse{Success: false, Error: err.Error()})
			return
		}
		writeError(w, err, "scrape failed")
		return
	}

	writeJSON(w, http.StatusOK, ScrapeResponse{
		Success:     true,
		Name:        cand.Name,
		Ingredients: cand.Ingredients,
		Notes:       cand.Notes,
		Image:       cand.Image,
		Tags:        cand.Tags,
		RecipeLink:  cand.RecipeLink,
	})
}

// Import handles POST /api/import.
//
//	@Summary		Extract and save dishes for a batch of URLs
//	@Tags			scrape
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ImportRequest	true	"Recipe page URLs"
//	@Success		200		{object}	ImportResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/import [post]
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.URLs) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("urls are required"))
		return
	}
	writeJSON(w, http.StatusOK, ImportResponse{Results: h.svc.ImportRecipes(r.Context(), req.URLs)})
}

// Status handles GET /api/status.
//
//	@Summary		Storage mode and connection info
//	@Tags			status
//	@Produce		json
//	@Success		200	{object}	StatusResponse
//	@Security		BearerAuth
//	@Router			/status [get]
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{Mode: h.svc.Mode(), Clients: h.clients()})
}

// CheckBackend handles POST /api/status/check.
//
//	@Summary		Probe the primary backend and leave fallback mode on success
//	@Tags			status
//	@Produce		json
//	@Success		200	{object}	StatusResponse
//	@Security		BearerAuth
//	@Router			/status/check [post]
func (h *Handler) CheckBackend(w http.ResponseWriter, r *http.Request) {
	mode := h.svc.CheckBackend()
	writeJSON(w, http.StatusOK, StatusResponse{Mode: mode, Clients: h.clients()})
}
