package scraper

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/starford/gourmet/internal/apperr"
)

func testScraper() *Scraper {
	return New(5*time.Second, "", slog.New(slog.DiscardHandler))
}

const jsonLDPage = `<!DOCTYPE html>
<html><head>
<script type="application/ld+json">
{
  "@context": "https://schema.org",
  "@type": "Recipe",
  "name": "Spaghetti Bolognese",
  "description": "Ein Klassiker.",
  "image": ["http://127.0.0.1:1/bolo.jpg", "http://127.0.0.1:1/bolo2.jpg"],
  "recipeIngredient": ["500 g Hackfleisch", "½ Zwiebel", "2 EL Tomatenmark"],
  "recipeInstructions": [
    {"@type": "HowToStep", "text": "Zwiebel anbraten."},
    {"@type": "HowToStep", "text": "Hackfleisch dazu."}
  ]
}
</script>
</head><body><h1>Irrelevant</h1></body></html>`

const genericPage = `<!DOCTYPE html>
<html><head><meta property="og:image" content="http://127.0.0.1:1/curry.jpg"></head>
<body>
<h1>Gemüsecurry</h1>
<ul class="recipe-ingredients">
  <li>400 g Kichererbsen</li>
  <li>1 Dose Kokosmilch</li>
  <li>ab</li>
</ul>
</body></html>`

func TestExtractStructuredData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(jsonLDPage))
	}))
	defer srv.Close()

	cand, err := testScraper().Extract(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if cand.Name != "Spaghetti Bolognese" {
		t.Errorf("name: got %q", cand.Name)
	}
	if len(cand.Ingredients) != 3 {
		t.Fatalf("ingredients: got %d, want 3", len(cand.Ingredients))
	}
	// Fraction entities are normalized before line parsing.
	if got := cand.Ingredients[1].Amount; got != "" {
		// "1/2 Zwiebel" has no leading plain number, so it parses name-only.
		t.Errorf("fraction amount: got %q, want empty", got)
	}
	if got := cand.Ingredients[1].Name; got != "1/2 Zwiebel" {
		t.Errorf("fraction name: got %q", got)
	}
	if !strings.Contains(cand.Notes, "Ein Klassiker.") || !strings.Contains(cand.Notes, "Zwiebel anbraten.") {
		t.Errorf("notes missing description or steps: %q", cand.Notes)
	}
	// The image URL is unreachable, so the candidate degrades to no image.
	if cand.Image != "" {
		t.Errorf("image: got %q, want empty after failed fetch", cand.Image)
	}
	if cand.RecipeLink != srv.URL {
		t.Errorf("recipeLink: got %q", cand.RecipeLink)
	}
}

func TestExtractGenericFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(genericPage))
	}))
	defer srv.Close()

	cand, err := testScraper().Extract(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if cand.Name != "Gemüsecurry" {
		t.Errorf("name: got %q", cand.Name)
	}
	// The 2-char row falls under the minimum length and is dropped.
	if len(cand.Ingredients) != 2 {
		t.Fatalf("ingredients: got %d, want 2", len(cand.Ingredients))
	}
	if cand.Ingredients[0].Amount != "400" || cand.Ingredients[0].Unit != "g" {
		t.Errorf("first ingredient: %+v", cand.Ingredients[0])
	}
}

func TestExtractImageBecomesDataURI(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	page := strings.Replace(genericPage,
		"http://127.0.0.1:1/curry.jpg", srv.URL+"/curry.jpg", 1)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	})
	mux.HandleFunc("/curry.jpg", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte{0xff, 0xd8, 0xff, 0xd9})
	})

	cand, err := testScraper().Extract(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !strings.HasPrefix(cand.Image, "data:image/jpeg;base64,") {
		t.Errorf("image: got %q, want data URI", cand.Image)
	}
}

func TestExtractBlockedSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := testScraper().Extract(context.Background(), srv.URL)
	if !errors.Is(err, apperr.ErrSourceBlocked) {
		t.Errorf("expected ErrSourceBlocked, got %v", err)
	}
}

func TestExtractNothingFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><p>Nothing here</p></body></html>`))
	}))
	defer srv.Close()

	_, err := testScraper().Extract(context.Background(), srv.URL)
	if !errors.Is(err, apperr.ErrExtraction) {
		t.Errorf("expected ErrExtraction, got %v", err)
	}
}

func TestIsRecipeType(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{`"Recipe"`, true},
		{`["Article", "Recipe"]`, true},
		{`"Article"`, false},
		{`["Article"]`, false},
		{``, false},
	}
	for _, tc := range tests {
		if got := isRecipeType([]byte(tc.raw)); got != tc.want {
			t.Errorf("isRecipeType(%s) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestDecodeImageShapes(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`"https://x/1.jpg"`, "https://x/1.jpg"},
		{`["https://x/1.jpg", "https://x/2.jpg"]`, "https://x/1.jpg"},
		{`{"@type": "ImageObject", "url": "https://x/obj.jpg"}`, "https://x/obj.jpg"},
		{`[{"url": "https://x/nested.jpg"}]`, "https://x/nested.jpg"},
		{``, ""},
	}
	for _, tc := range tests {
		if got := decodeImage([]byte(tc.raw)); got != tc.want {
			t.Errorf("decodeImage(%s) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}
