package gourmet

import (
	"context"
	"fmt"
	"net/url"

	"github.com/starford/gourmet/internal/apperr"
	"github.com/starford/gourmet/internal/models"
)

// ImportResult reports the outcome of one URL in a batch import.
type ImportResult struct {
	URL    string `json:"url"`
	DishID string `json:"dishId,omitempty"`
	Name   string `json:"name,omitempty"`
	Error  string `json:"error,omitempty"`
}

// validateRecipeURL rejects malformed URLs before any fetch happens. Only
// absolute http(s) URLs reach the extractor; everything else is a validation
// error, not a blocked source.
func validateRecipeURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: invalid recipe url %q", apperr.ErrValidation, raw)
	}
	return nil
}

// ScrapeRecipe extracts a candidate dish from a recipe page without
// persisting anything. The caller reviews the candidate before saving.
func (s *Service) ScrapeRecipe(ctx context.Context, sourceURL string) (models.RecipeCandidate, error) {
	if err := validateRecipeURL(sourceURL); err != nil {
		return models.RecipeCandidate{}, err
	}

	cand, err := s.extract.Extract(ctx, sourceURL)
	if err != nil {
		return models.RecipeCandidate{}, err
	}
	cand.Ingredients = nonNilSlice(cand.Ingredients)
	cand.Tags = nonNilSlice(cand.Tags)
	return cand, nil
}

// ImportRecipes extracts and saves one dish per URL. Failures do not stop
// the batch; each URL gets its own result entry.
func (s *Service) ImportRecipes(ctx context.Context, urls []string) []ImportResult {
	results := make([]ImportResult, 0, len(urls))
	for _, url := range urls {
		res := ImportResult{URL: url}

		cand, err := s.ScrapeRecipe(ctx, url)
		if err != nil {
			s.log.Warn("recipe import failed", "url", url, "error", err)
			res.Error = err.Error()
			results = append(results, res)
			continue
		}

		tags := cand.Tags
		if len(tags) == 0 {
			tags = []string{"Hauptgerichte"}
		}

		dish, err := s.SaveDish(ctx, models.Dish{
			Name:        cand.Name,
			Image:       cand.Image,
			RecipeLink:  cand.RecipeLink,
			Notes:       cand.Notes,
			Ingredients: cand.Ingredients,
			Tags:        tags,
		})
		if err != nil {
			s.log.Warn("imported recipe rejected", "url", url, "error", err)
			res.Error = err.Error()
			results = append(results, res)
			continue
		}

		s.log.Info("recipe imported", "url", url, "dish", dish.ID, "name", dish.Name)
		res.DishID = dish.ID
		res.Name = dish.Name
		results = append(results, res)
	}
	return results
}
