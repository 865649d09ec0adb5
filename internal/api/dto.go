package api

import (
	"github.com/starford/gourmet/internal/gourmet"
	"github.com/starford/gourmet/internal/models"
)

// DishListResponse is the payload of GET /api/dishes.
type DishListResponse struct {
	Dishes []models.Dish `json:"dishes"`
}

// PlanListResponse is the payload of GET /api/plans.
type PlanListResponse struct {
	Plans []models.WeeklyPlan `json:"plans"`
}

// PlanAssignmentRequest adds or removes one dish/week assignment.
type PlanAssignmentRequest struct {
	Year   int    `json:"year"`
	Week   int    `json:"week"`
	DishID string `json:"dishId"`
}

// CategoryListRequest replaces the full category list. Order in the list
// defines the persisted sort order.
type CategoryListRequest struct {
	Categories []models.Category `json:"categories"`
}

// CategoryListResponse is the payload of GET /api/categories.
type CategoryListResponse struct {
	Categories []models.Category `json:"categories"`
}

// WeekListResponse is the payload of GET /api/weeks.
type WeekListResponse struct {
	Weeks []models.CalendarWeek `json:"weeks"`
}

// ScrapeRequest asks for a recipe page extraction.
type ScrapeRequest struct {
	URL string `json:"url"`
}

// ScrapeResponse carries the candidate or the failure reason.
type ScrapeResponse struct {
	Success     bool                `json:"success"`
	Name        string              `json:"name,omitempty"`
	Ingredients []models.Ingredient `json:"ingredients,omitempty"`
	Notes       string              `json:"notes,omitempty"`
	Image       string              `json:"image,omitempty"`
	Tags        []string            `json:"tags,omitempty"`
	RecipeLink  string              `json:"recipeLink,omitempty"`
	Error       string              `json:"error,omitempty"`
}

// ImportRequest batches several recipe URLs into one import run.
type ImportRequest struct {
	URLs []string `json:"urls"`
}

// ImportResponse reports per-URL outcomes.
type ImportResponse struct {
	Results []gourmet.ImportResult `json:"results"`
}

// StatusResponse reports which storage backend serves requests.
type StatusResponse struct {
	Mode    gourmet.StorageMode `json:"mode"`
	Clients int                 `json:"sseClients"`
}
