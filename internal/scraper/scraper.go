// Package scraper extracts recipe candidates from external recipe pages.
// Extraction runs tiered: embedded structured data first, then hand-picked
// selectors for known cooking platforms, then a generic heuristic pass.
package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/starford/gourmet/internal/apperr"
	"github.com/starford/gourmet/internal/models"
)

const defaultUserAgent = "Mozilla/5.0 (compatible; GourmetBot/1.0)"

// thermomixDomain gets its candidates tagged "Thermomix" regardless of which
// tier extracted the content.
const thermomixDomain = "cookidoo.de"

// Scraper fetches and parses recipe pages.
type Scraper struct {
	client *resty.Client
	log    *slog.Logger
}

// New builds a Scraper with the given fetch timeout. An empty userAgent
// falls back to the built-in one; some recipe sites reject the Go default.
func New(timeout time.Duration, userAgent string, log *slog.Logger) *Scraper {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(5))

	return &Scraper{client: client, log: log}
}

// Extract fetches sourceURL and runs the extraction tiers over the page.
// It returns apperr.ErrSourceBlocked when the page cannot be fetched and
// apperr.ErrExtraction when no tier finds a name or any ingredients.
func (s *Scraper) Extract(ctx context.Context, sourceURL string) (models.RecipeCandidate, error) {
	var cand models.RecipeCandidate

	resp, err := s.client.R().SetContext(ctx).Get(sourceURL)
	if err != nil {
		return cand, fmt.Errorf("%w: %v", apperr.ErrSourceBlocked, err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return cand, fmt.Errorf("%w: status %d", apperr.ErrSourceBlocked, resp.StatusCode())
	}

	cand, err = s.ExtractFromHTML(string(resp.Body()), sourceURL)
	if err != nil {
		return cand, err
	}

	if cand.Image != "" {
		// Image fetch failures degrade to no image, never to a failed
		// extraction.
		data, err := s.fetchImage(ctx, cand.Image)
		if err != nil {
			s.log.Debug("image fetch failed", "url", cand.Image, "error", err)
			cand.Image = ""
		} else {
			cand.Image = data
		}
	}

	return cand, nil
}

// ExtractFromHTML runs the extraction tiers over already-fetched page HTML.
// No network access happens here; the image stays a plain URL.
func (s *Scraper) ExtractFromHTML(html, sourceURL string) (models.RecipeCandidate, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return models.RecipeCandidate{}, fmt.Errorf("%w: %v", apperr.ErrExtraction, err)
	}

	cand := s.runTiers(doc, sourceURL)
	cand.RecipeLink = sourceURL

	if cand.Name == "" && len(cand.Ingredients) == 0 {
		return models.RecipeCandidate{}, apperr.ErrExtraction
	}

	if strings.Contains(sourceURL, thermomixDomain) {
		cand.Tags = append(cand.Tags, "Thermomix")
	}
	return cand, nil
}

// runTiers fills the candidate tier by tier. An earlier tier owns the fields
// it populated; later tiers only fill what is still empty.
func (s *Scraper) runTiers(doc *goquery.Document, sourceURL string) models.RecipeCandidate {
	cand := extractStructured(doc)

	if cand.Name == "" || len(cand.Ingredients) == 0 {
		if site := siteFor(sourceURL); site != nil {
			merge(&cand, site.extract(doc))
		}
	}

	if cand.Name == "" || len(cand.Ingredients) == 0 {
		merge(&cand, extractGeneric(doc))
	}

	return cand
}

func merge(dst *models.RecipeCandidate, src models.RecipeCandidate) {
	if dst.Name == "" {
		dst.Name = src.Name
	}
	if len(dst.Ingredients) == 0 {
		dst.Ingredients = src.Ingredients
	}
	if dst.Notes == "" {
		dst.Notes = src.Notes
	}
	if dst.Image == "" {
		dst.Image = src.Image
	}
}
