package gourmet

import (
	"context"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	"github.com/starford/gourmet/internal/apperr"
	"github.com/starford/gourmet/internal/models"
	"github.com/starford/gourmet/internal/storage"
)

// Dishes returns the full catalog, newest first.
func (s *Service) Dishes(_ context.Context) ([]models.Dish, error) {
	var dishes []models.Dish
	err := s.run(func(b storage.Backend) error {
		var err error
		dishes, err = b.ListDishes()
		return err
	})
	if err != nil {
		return nil, err
	}
	for i := range dishes {
		dishes[i].Ingredients = nonNilSlice(dishes[i].Ingredients)
		dishes[i].Tags = nonNilSlice(dishes[i].Tags)
	}
	return nonNilSlice(dishes), nil
}

// GetDish returns one dish by id.
func (s *Service) GetDish(ctx context.Context, id string) (models.Dish, error) {
	dishes, err := s.Dishes(ctx)
	if err != nil {
		return models.Dish{}, err
	}
	for _, d := range dishes {
		if d.ID == id {
			return d, nil
		}
	}
	return models.Dish{}, apperr.ErrNotFound
}

// SaveDish validates and upserts a dish. A dish without an id is treated as
// new: id and creation time are assigned, cooking statistics start at zero.
func (s *Service) SaveDish(_ context.Context, d models.Dish) (models.Dish, error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
		d.CreatedAt = s.now().UTC()
		d.TimesCooked = 0
		d.LastCooked = nil
	}
	for i := range d.Ingredients {
		if d.Ingredients[i].ID == "" {
			d.Ingredients[i].ID = uuid.NewString()
		}
	}
	d.Ingredients = nonNilSlice(d.Ingredients)
	d.Tags = nonNilSlice(d.Tags)

	if err := validateDish(d); err != nil {
		return models.Dish{}, err
	}

	err := s.run(func(b storage.Backend) error {
		return b.SaveDish(d)
	})
	if err != nil {
		return models.Dish{}, err
	}
	s.notify("dish")
	return d, nil
}

// DeleteDish removes a dish and its plan assignments.
func (s *Service) DeleteDish(_ context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: missing dish id", apperr.ErrValidation)
	}
	err := s.run(func(b storage.Backend) error {
		return b.DeleteDish(id)
	})
	if err != nil {
		return err
	}
	s.notify("dish")
	return nil
}

func validateDish(d models.Dish) error {
	err := validation.ValidateStruct(&d,
		validation.Field(&d.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&d.Rating, validation.Min(0), validation.Max(5)),
		validation.Field(&d.RecipeLink, is.URL),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}
	for _, ing := range d.Ingredients {
		if ing.Name == "" {
			return fmt.Errorf("%w: ingredient without a name", apperr.ErrValidation)
		}
	}
	return nil
}
