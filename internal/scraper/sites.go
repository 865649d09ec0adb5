package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/starford/gourmet/internal/ingredient"
	"github.com/starford/gourmet/internal/models"
)

// site holds the hand-picked selectors for one known cooking platform.
type site struct {
	domain            string
	titleSelector     string
	ingredientsSel    string
	imageSelector     string
	imageAttr         string
	filterIngredients func(string) bool
}

var knownSites = []site{
	{
		domain:         "cookidoo.de",
		titleSelector:  `h1.recipe-title, h1[class*="title"]`,
		ingredientsSel: `ul.ingredients-list li, div[class*="ingredient"]`,
		imageSelector:  `img.recipe-image, img[src*="recipe"]`,
		imageAttr:      "src",
	},
	{
		domain:         "chefkoch.de",
		titleSelector:  `h1`,
		ingredientsSel: `table.ingredients td, ul[class*="ingredient"] li`,
		imageSelector:  `meta[property="og:image"]`,
		imageAttr:      "content",
	},
	{
		domain:            "lecker.de",
		titleSelector:     `h1`,
		ingredientsSel:    `ul[class*="zutaten"] li, ul[class*="ingredient"] li`,
		imageSelector:     `meta[property="og:image"]`,
		imageAttr:         "content",
		filterIngredients: looksLikeIngredient,
	},
	{
		domain:         "essen-und-trinken.de",
		titleSelector:  `h1`,
		ingredientsSel: `ul[class*="ingredient"] li, div[class*="zutaten"] li`,
		imageSelector:  `meta[property="og:image"]`,
		imageAttr:      "content",
	},
}

func siteFor(sourceURL string) *site {
	for i := range knownSites {
		if strings.Contains(sourceURL, knownSites[i].domain) {
			return &knownSites[i]
		}
	}
	return nil
}

func (st *site) extract(doc *goquery.Document) models.RecipeCandidate {
	var cand models.RecipeCandidate

	if title := doc.Find(st.titleSelector).First(); title.Length() > 0 {
		cand.Name = strings.TrimSpace(title.Text())
	}

	doc.Find(st.ingredientsSel).Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if text == "" {
			return
		}
		if st.filterIngredients != nil && !st.filterIngredients(text) {
			return
		}
		cand.Ingredients = append(cand.Ingredients, ingredient.ParseLine(text))
	})

	// Unit-looking list items catch pages whose ingredient markup carries no
	// class at all.
	if len(cand.Ingredients) == 0 {
		cand.Ingredients = unitLookingItems(doc)
	}

	if img := doc.Find(st.imageSelector).First(); img.Length() > 0 {
		if src, ok := img.Attr(st.imageAttr); ok && strings.HasPrefix(src, "http") {
			cand.Image = src
		}
	}

	return cand
}

// unitLookingItems collects list items whose text contains a common German
// measurement token, the last-resort ingredient heuristic.
func unitLookingItems(doc *goquery.Document) []models.Ingredient {
	var out []models.Ingredient
	doc.Find("li").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if text == "" || !looksLikeIngredient(text) {
			return
		}
		out = append(out, ingredient.ParseLine(text))
	})
	return out
}

func looksLikeIngredient(text string) bool {
	for _, unit := range []string{"g ", "ml ", "EL ", "TL "} {
		if strings.Contains(text, unit) {
			return true
		}
	}
	return false
}
