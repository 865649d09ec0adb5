package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/starford/gourmet/internal/ingredient"
	"github.com/starford/gourmet/internal/models"
)

// genericIngredientSelectors is tried in order; the first selector yielding
// any rows wins, results are never merged across selectors.
var genericIngredientSelectors = []string{
	`ul[class*="ingredient"] li`,
	`div[class*="ingredient"]`,
}

// extractGeneric is the last tier: first heading as name, class-based
// ingredient selectors with a unit-token fallback, og:image for the picture.
func extractGeneric(doc *goquery.Document) models.RecipeCandidate {
	var cand models.RecipeCandidate

	if h1 := doc.Find("h1").First(); h1.Length() > 0 {
		cand.Name = strings.TrimSpace(h1.Text())
	}

	for _, selector := range genericIngredientSelectors {
		var rows []models.Ingredient
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			text := strings.TrimSpace(sel.Text())
			if len(text) > 3 {
				rows = append(rows, ingredient.ParseLine(text))
			}
		})
		if len(rows) > 0 {
			cand.Ingredients = rows
			break
		}
	}
	if len(cand.Ingredients) == 0 {
		cand.Ingredients = unitLookingItems(doc)
	}

	if content, ok := doc.Find(`meta[property="og:image"]`).Attr("content"); ok {
		cand.Image = content
	}

	return cand
}
