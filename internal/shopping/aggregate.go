// Package shopping consolidates the ingredients of planned dishes into a
// shopping list and a pantry list. Lists are derived on every request and
// never persisted.
package shopping

import (
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/starford/gourmet/internal/ingredient"
	"github.com/starford/gourmet/internal/models"
)

// Occurrence is one ingredient of one planned dish, fed into Aggregate in
// plan order.
type Occurrence struct {
	Ingredient models.Ingredient
	DishID     string
	DishName   string
}

// Result splits the consolidated entries into items to buy and pantry
// staples the household is assumed to stock.
type Result struct {
	ShoppingList []models.AggregatedEntry
	PantryList   []models.AggregatedEntry
}

// Aggregate consolidates ingredient occurrences. Matching is by normalized
// name plus lowercased unit, so "Zwiebel" and "Zwiebeln" merge but "200 g"
// and "2 Stück" of the same ingredient stay separate lines. Water is
// dropped entirely. Entries whose name matches the staples vocabulary land
// on the pantry list, everything else on the shopping list; both lists are
// sorted by display name with German collation.
func Aggregate(occurrences []Occurrence, staples *ingredient.Staples) Result {
	entries := make(map[string]*models.AggregatedEntry)
	var order []string

	for _, occ := range occurrences {
		ing := occ.Ingredient
		if ing.Name == "" || ingredient.IsWater(ing.Name) {
			continue
		}

		key := ingredient.Normalize(ing.Name) + "-" + strings.ToLower(strings.TrimSpace(ing.Unit))

		entry, ok := entries[key]
		if !ok {
			entries[key] = &models.AggregatedEntry{
				Ingredient: models.Ingredient{
					ID:     ing.ID,
					Name:   strings.TrimSpace(ing.Name),
					Amount: ing.Amount,
					Unit:   ing.Unit,
				},
				Sources: []models.DishRef{{DishID: occ.DishID, DishName: occ.DishName}},
			}
			order = append(order, key)
			continue
		}

		entry.Ingredient.Amount = mergeAmounts(entry.Ingredient.Amount, ing.Amount)
		if !hasSource(entry.Sources, occ.DishID) {
			entry.Sources = append(entry.Sources, models.DishRef{DishID: occ.DishID, DishName: occ.DishName})
		}
	}

	var res Result
	for _, key := range order {
		e := *entries[key]
		if staples != nil && staples.Contains(e.Ingredient.Name) {
			res.PantryList = append(res.PantryList, e)
		} else {
			res.ShoppingList = append(res.ShoppingList, e)
		}
	}

	c := collate.New(language.German)
	sortEntries(c, res.ShoppingList)
	sortEntries(c, res.PantryList)
	return res
}

// mergeAmounts sums two amounts when both are plain numbers. Otherwise the
// existing amount wins and the incoming one is dropped; "200 g" plus
// "etwas" stays "200". Intentional data loss, the sources still list every
// contributing dish.
func mergeAmounts(existing, incoming string) string {
	a, errA := strconv.ParseFloat(strings.TrimSpace(existing), 64)
	b, errB := strconv.ParseFloat(strings.TrimSpace(incoming), 64)
	if errA != nil || errB != nil {
		return existing
	}
	return strconv.FormatFloat(a+b, 'f', -1, 64)
}

func hasSource(sources []models.DishRef, dishID string) bool {
	for _, s := range sources {
		if s.DishID == dishID {
			return true
		}
	}
	return false
}

func sortEntries(c *collate.Collator, entries []models.AggregatedEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return c.CompareString(entries[i].Ingredient.Name, entries[j].Ingredient.Name) < 0
	})
}
