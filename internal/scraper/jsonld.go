package scraper

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/starford/gourmet/internal/ingredient"
	"github.com/starford/gourmet/internal/models"
)

// ldRecipe mirrors the parts of a schema.org Recipe record we read. Image
// and instructions come in several shapes across sites, so they stay raw
// until decoded field by field.
type ldRecipe struct {
	Type         json.RawMessage `json:"@type"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Image        json.RawMessage `json:"image"`
	Ingredients  []string        `json:"recipeIngredient"`
	Instructions json.RawMessage `json:"recipeInstructions"`
	Graph        []ldRecipe      `json:"@graph"`
}

var fractionReplacer = strings.NewReplacer("½", "1/2", "¼", "1/4", "¾", "3/4")

// extractStructured scans the page's ld+json scripts for a Recipe record.
func extractStructured(doc *goquery.Document) models.RecipeCandidate {
	var cand models.RecipeCandidate

	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		rec, ok := decodeRecipe([]byte(sel.Text()))
		if !ok {
			return true
		}

		cand.Name = strings.TrimSpace(rec.Name)
		cand.Notes = strings.TrimSpace(rec.Description)
		cand.Image = decodeImage(rec.Image)
		if instr := decodeInstructions(rec.Instructions); instr != "" {
			if cand.Notes != "" {
				cand.Notes += "\n\n"
			}
			cand.Notes += instr
		}
		for _, line := range rec.Ingredients {
			line = fractionReplacer.Replace(line)
			if strings.TrimSpace(line) == "" {
				continue
			}
			cand.Ingredients = append(cand.Ingredients, ingredient.ParseLine(line))
		}
		return false
	})

	return cand
}

// decodeRecipe finds a Recipe record in a script body: a plain object, an
// array of records, or records nested under @graph.
func decodeRecipe(data []byte) (ldRecipe, bool) {
	var rec ldRecipe
	if err := json.Unmarshal(data, &rec); err == nil {
		if r, ok := pickRecipe(rec); ok {
			return r, true
		}
	}

	var list []ldRecipe
	if err := json.Unmarshal(data, &list); err == nil {
		for _, rec := range list {
			if r, ok := pickRecipe(rec); ok {
				return r, true
			}
		}
	}

	return ldRecipe{}, false
}

func pickRecipe(rec ldRecipe) (ldRecipe, bool) {
	if isRecipeType(rec.Type) {
		return rec, true
	}
	for _, g := range rec.Graph {
		if isRecipeType(g.Type) {
			return g, true
		}
	}
	return ldRecipe{}, false
}

// isRecipeType accepts both `"@type": "Recipe"` and `"@type": ["Recipe", ...]`.
func isRecipeType(raw json.RawMessage) bool {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s == "Recipe"
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		for _, s := range list {
			if s == "Recipe" {
				return true
			}
		}
	}
	return false
}

// decodeImage handles the three shapes sites use: a URL string, an array
// (first element wins), or an ImageObject with a url field.
func decodeImage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return decodeImage(list[0])
	}

	var obj struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.URL
	}

	return ""
}

// decodeInstructions joins instruction steps into one text block. Steps come
// as a string, an array of strings, or an array of HowToStep objects.
func decodeInstructions(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var steps []json.RawMessage
	if err := json.Unmarshal(raw, &steps); err != nil {
		return ""
	}

	var parts []string
	for _, step := range steps {
		var text string
		if err := json.Unmarshal(step, &text); err != nil {
			var obj struct {
				Text string `json:"text"`
			}
			if err := json.Unmarshal(step, &obj); err != nil {
				continue
			}
			text = obj.Text
		}
		if text = strings.TrimSpace(text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n")
}
