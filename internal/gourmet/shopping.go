package gourmet

import (
	"context"

	"github.com/starford/gourmet/internal/models"
	"github.com/starford/gourmet/internal/shopping"
)

// ShoppingList is the consolidated view for one planned week.
type ShoppingList struct {
	Year                     int                      `json:"year"`
	Week                     int                      `json:"week"`
	ShoppingList             []models.AggregatedEntry `json:"shoppingList"`
	PantryList               []models.AggregatedEntry `json:"pantryList"`
	DishesWithoutIngredients []models.DishRef         `json:"dishesWithoutIngredients"`
}

// ShoppingListForWeek aggregates the ingredients of every dish planned in
// (year, week). Dishes whose ingredient list is empty are reported
// separately so the list does not silently look complete.
func (s *Service) ShoppingListForWeek(ctx context.Context, year, week int) (ShoppingList, error) {
	out := ShoppingList{
		Year:                     year,
		Week:                     week,
		ShoppingList:             []models.AggregatedEntry{},
		PantryList:               []models.AggregatedEntry{},
		DishesWithoutIngredients: []models.DishRef{},
	}

	plan, err := s.Plan(ctx, year, week)
	if err != nil {
		return out, err
	}
	if len(plan.DishIDs) == 0 {
		return out, nil
	}

	dishes, err := s.Dishes(ctx)
	if err != nil {
		return out, err
	}
	byID := make(map[string]models.Dish, len(dishes))
	for _, d := range dishes {
		byID[d.ID] = d
	}

	var occurrences []shopping.Occurrence
	for _, dishID := range plan.DishIDs {
		dish, ok := byID[dishID]
		if !ok {
			// Dangling plan reference, the dish was deleted.
			continue
		}
		if len(dish.Ingredients) == 0 {
			out.DishesWithoutIngredients = append(out.DishesWithoutIngredients,
				models.DishRef{DishID: dish.ID, DishName: dish.Name})
			continue
		}
		for _, ing := range dish.Ingredients {
			occurrences = append(occurrences, shopping.Occurrence{
				Ingredient: ing,
				DishID:     dish.ID,
				DishName:   dish.Name,
			})
		}
	}

	res := shopping.Aggregate(occurrences, s.staples)
	out.ShoppingList = nonNilSlice(res.ShoppingList)
	out.PantryList = nonNilSlice(res.PantryList)
	return out, nil
}
