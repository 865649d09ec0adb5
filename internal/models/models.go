// Package models defines the domain types for Gourmet.
package models

import (
	"fmt"
	"time"
)

// Ingredient is a single ingredient line of a dish. Amount and Unit are free
// text because recipe sources give ranges, fractions, or words ("etwas",
// "nach Geschmack"); they may be empty but are never absent.
type Ingredient struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Amount string `json:"amount"`
	Unit   string `json:"unit"`
}

// Dish is a stored recipe with rating, ingredients, and categorization tags.
// Tags reference category names by value only; a deleted category leaves
// dangling tag strings behind, which is tolerated.
type Dish struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Image       string       `json:"image,omitempty"`
	Rating      int          `json:"rating"` // 0 to 5
	RecipeLink  string       `json:"recipeLink,omitempty"`
	Notes       string       `json:"notes,omitempty"`
	Ingredients []Ingredient `json:"ingredients"`
	LastCooked  *time.Time   `json:"lastCooked,omitempty"`
	TimesCooked int          `json:"timesCooked"`
	Tags        []string     `json:"tags"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// Category is a user-defined dish label with a persisted display position.
// Sort orders are dense 0..N-1 after every save.
type Category struct {
	Name      string `json:"name"`
	SortOrder int    `json:"sortOrder"`
}

// WeeklyPlan is the set of up to 5 dishes assigned to an ISO year/week pair.
// Identity is (Year, Week); ID is a derived cache key. An empty DishIDs list
// is equivalent to the plan not existing.
type WeeklyPlan struct {
	ID      string   `json:"id"` // "<year>-<week>"
	Year    int      `json:"year"`
	Week    int      `json:"week"`
	DishIDs []string `json:"dishIds"`
}

// PlanID derives the cache key for a (year, week) pair.
func PlanID(year, week int) string {
	return fmt.Sprintf("%d-%d", year, week)
}

// DishRef points an aggregated shopping entry back at a contributing dish.
type DishRef struct {
	DishID   string `json:"dishId"`
	DishName string `json:"dishName"`
}

// AggregatedEntry is one consolidated shopping list line. Derived, never
// persisted; built fresh on every shopping-list request.
type AggregatedEntry struct {
	Ingredient Ingredient `json:"ingredient"`
	Sources    []DishRef  `json:"sources"`
}

// CalendarWeek is one element of the sliding planning window.
type CalendarWeek struct {
	Week      int    `json:"week"`
	Year      int    `json:"year"`
	Label     string `json:"label"`
	IsPast    bool   `json:"isPast"`
	IsCurrent bool   `json:"isCurrent"`
	IsNext    bool   `json:"isNext"`
}

// RecipeCandidate is the unvalidated result of the extraction pipeline.
// It is distinct from Dish: fields may be empty and nothing has been checked
// against the dish contract yet.
type RecipeCandidate struct {
	Name        string       `json:"name"`
	Ingredients []Ingredient `json:"ingredients"`
	Notes       string       `json:"notes"`
	Image       string       `json:"image"`
	Tags        []string     `json:"tags"`
	RecipeLink  string       `json:"recipeLink"`
}
