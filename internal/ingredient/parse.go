package ingredient

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/starford/gourmet/internal/models"
)

var (
	amountUnitNameRe = regexp.MustCompile(`^(\d+([.,]\d+)?)\s*(\w+)\s+(.+)$`)
	amountNameRe     = regexp.MustCompile(`^(\d+([.,]\d+)?)\s+(.+)$`)
)

// ParseLine splits a raw ingredient line ("200 g Mehl", "2 Zwiebeln",
// "Salz") into amount, unit, and name. First matching tier wins; a line
// without a numeric prefix becomes a pure name. Multi-word units and
// parenthesised notes are not specially handled, they fall through to
// whichever tier matches.
func ParseLine(text string) models.Ingredient {
	text = strings.TrimSpace(text)

	if m := amountUnitNameRe.FindStringSubmatch(text); m != nil {
		return models.Ingredient{
			ID:     uuid.NewString(),
			Amount: m[1],
			Unit:   m[3],
			Name:   strings.TrimSpace(m[4]),
		}
	}

	if m := amountNameRe.FindStringSubmatch(text); m != nil {
		return models.Ingredient{
			ID:     uuid.NewString(),
			Amount: m[1],
			Unit:   "",
			Name:   strings.TrimSpace(m[3]),
		}
	}

	return models.Ingredient{
		ID:     uuid.NewString(),
		Amount: "",
		Unit:   "",
		Name:   text,
	}
}
