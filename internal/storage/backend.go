// Package storage persists dishes, categories, and weekly plans. The
// primary backend is SQLite; a JSON file cache with the same interface
// serves as the degraded-mode fallback.
package storage

import "github.com/starford/gourmet/internal/models"

// Backend defines the persistence operations the service layer depends on.
// Consumers should depend on this interface rather than a concrete type to
// facilitate testing and the primary/fallback switch.
type Backend interface {
	ListDishes() ([]models.Dish, error)
	SaveDish(d models.Dish) error
	DeleteDish(id string) error

	ListCategories() ([]models.Category, error)
	ReplaceCategories(cats []models.Category) error

	ListPlans() ([]models.WeeklyPlan, error)
	AddPlanDish(year, week int, dishID string) error
	RemovePlanDish(year, week int, dishID string) error

	Ping() error
	Close() error
}

var (
	_ Backend = (*DB)(nil)
	_ Backend = (*FileCache)(nil)
)
