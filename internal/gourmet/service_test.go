package gourmet

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/starford/gourmet/internal/apperr"
	"github.com/starford/gourmet/internal/ingredient"
	"github.com/starford/gourmet/internal/models"
	"github.com/starford/gourmet/internal/storage"
)

// flakyBackend delegates to an inner backend and can be switched off to
// simulate an unreachable primary.
type flakyBackend struct {
	inner storage.Backend
	down  bool
}

func (f *flakyBackend) check() error {
	if f.down {
		return errors.New("backend down")
	}
	return nil
}

func (f *flakyBackend) ListDishes() ([]models.Dish, error) {
	if err := f.check(); err != nil {
		return nil, err
	}
	return f.inner.ListDishes()
}

func (f *flakyBackend) SaveDish(d models.Dish) error {
	if err := f.check(); err != nil {
		return err
	}
	return f.inner.SaveDish(d)
}

func (f *flakyBackend) DeleteDish(id string) error {
	if err := f.check(); err != nil {
		return err
	}
	return f.inner.DeleteDish(id)
}

func (f *flakyBackend) ListCategories() ([]models.Category, error) {
	if err := f.check(); err != nil {
		return nil, err
	}
	return f.inner.ListCategories()
}

func (f *flakyBackend) ReplaceCategories(cats []models.Category) error {
	if err := f.check(); err != nil {
		return err
	}
	return f.inner.ReplaceCategories(cats)
}

func (f *flakyBackend) ListPlans() ([]models.WeeklyPlan, error) {
	if err := f.check(); err != nil {
		return nil, err
	}
	return f.inner.ListPlans()
}

func (f *flakyBackend) AddPlanDish(year, week int, dishID string) error {
	if err := f.check(); err != nil {
		return err
	}
	return f.inner.AddPlanDish(year, week, dishID)
}

func (f *flakyBackend) RemovePlanDish(year, week int, dishID string) error {
	if err := f.check(); err != nil {
		return err
	}
	return f.inner.RemovePlanDish(year, week, dishID)
}

func (f *flakyBackend) Ping() error  { return f.check() }
func (f *flakyBackend) Close() error { return f.inner.Close() }

type fakeExtractor struct {
	cand  models.RecipeCandidate
	err   error
	calls int
}

func (f *fakeExtractor) Extract(context.Context, string) (models.RecipeCandidate, error) {
	f.calls++
	return f.cand, f.err
}

type testEnv struct {
	svc     *Service
	primary *flakyBackend
	now     time.Time
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()

	primaryCache, err := storage.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	fallback, err := storage.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	env := &testEnv{
		primary: &flakyBackend{inner: primaryCache},
		now:     time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC), // a Wednesday
	}
	opts = append([]Option{WithClock(func() time.Time { return env.now })}, opts...)
	env.svc = New(env.primary, fallback, ingredient.NewStaples(), &fakeExtractor{}, slog.New(slog.DiscardHandler), opts...)
	t.Cleanup(func() { env.svc.Close() })
	return env
}

func mustSave(t *testing.T, svc *Service, d models.Dish) models.Dish {
	t.Helper()
	saved, err := svc.SaveDish(context.Background(), d)
	if err != nil {
		t.Fatalf("save dish: %v", err)
	}
	return saved
}

func TestSaveDishAssignsIdentity(t *testing.T) {
	env := newTestEnv(t)

	saved := mustSave(t, env.svc, models.Dish{Name: "Bolognese", Rating: 4})
	if saved.ID == "" {
		t.Error("expected a generated id")
	}
	if !saved.CreatedAt.Equal(env.now) {
		t.Errorf("createdAt: got %v", saved.CreatedAt)
	}
	if saved.Ingredients == nil || saved.Tags == nil {
		t.Error("slices must be non-nil")
	}
}

func TestSaveDishValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.SaveDish(ctx, models.Dish{Name: ""})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("empty name: got %v", err)
	}

	_, err = env.svc.SaveDish(ctx, models.Dish{Name: "X", Rating: 6})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("rating 6: got %v", err)
	}

	_, err = env.svc.SaveDish(ctx, models.Dish{
		Name:        "X",
		Ingredients: []models.Ingredient{{Name: ""}},
	})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("nameless ingredient: got %v", err)
	}
}

func TestPlanSideEffects(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	dish := mustSave(t, env.svc, models.Dish{Name: "Curry"})

	if err := env.svc.AddDishToPlan(ctx, 2026, 35, dish.ID); err != nil {
		t.Fatalf("add: %v", err)
	}

	got, err := env.svc.GetDish(ctx, dish.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.TimesCooked != 1 {
		t.Errorf("timesCooked: got %d, want 1", got.TimesCooked)
	}
	if got.LastCooked == nil || !got.LastCooked.Equal(env.now) {
		t.Errorf("lastCooked: got %v", got.LastCooked)
	}

	// Re-adding the same dish is a no-op, statistics stay put.
	if err := env.svc.AddDishToPlan(ctx, 2026, 35, dish.ID); err != nil {
		t.Fatal(err)
	}
	got, _ = env.svc.GetDish(ctx, dish.ID)
	if got.TimesCooked != 1 {
		t.Errorf("duplicate add changed timesCooked: %d", got.TimesCooked)
	}

	// Removing restores timesCooked but keeps lastCooked.
	if err := env.svc.RemoveDishFromPlan(ctx, 2026, 35, dish.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	got, _ = env.svc.GetDish(ctx, dish.ID)
	if got.TimesCooked != 0 {
		t.Errorf("timesCooked after remove: got %d, want 0", got.TimesCooked)
	}
	if got.LastCooked == nil {
		t.Error("lastCooked must survive the removal")
	}
}

func TestAddDishToPlanUnknownDish(t *testing.T) {
	env := newTestEnv(t)

	err := env.svc.AddDishToPlan(context.Background(), 2026, 35, "nope")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestRemoveDishFromPlanNotAssigned(t *testing.T) {
	env := newTestEnv(t)
	dish := mustSave(t, env.svc, models.Dish{Name: "Curry"})

	err := env.svc.RemoveDishFromPlan(context.Background(), 2026, 35, dish.ID)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestShoppingListForWeek(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	bolo := mustSave(t, env.svc, models.Dish{
		Name: "Bolognese",
		Ingredients: []models.Ingredient{
			{Name: "Tomaten", Amount: "400", Unit: "g"},
			{Name: "Salz"},
			{Name: "Wasser", Amount: "1", Unit: "l"},
		},
	})
	curry := mustSave(t, env.svc, models.Dish{
		Name: "Curry",
		Ingredients: []models.Ingredient{
			{Name: "Tomaten", Amount: "100", Unit: "g"},
		},
	})
	empty := mustSave(t, env.svc, models.Dish{Name: "Restetag"})

	for _, id := range []string{bolo.ID, curry.ID, empty.ID} {
		if err := env.svc.AddDishToPlan(ctx, 2026, 35, id); err != nil {
			t.Fatal(err)
		}
	}

	list, err := env.svc.ShoppingListForWeek(ctx, 2026, 35)
	if err != nil {
		t.Fatal(err)
	}

	if len(list.ShoppingList) != 1 {
		t.Fatalf("shopping list: %+v", list.ShoppingList)
	}
	tomatoes := list.ShoppingList[0]
	if tomatoes.Ingredient.Amount != "500" {
		t.Errorf("merged amount: got %q", tomatoes.Ingredient.Amount)
	}
	if len(tomatoes.Sources) != 2 {
		t.Errorf("sources: %+v", tomatoes.Sources)
	}
	if len(list.PantryList) != 1 || list.PantryList[0].Ingredient.Name != "Salz" {
		t.Errorf("pantry list: %+v", list.PantryList)
	}
	if len(list.DishesWithoutIngredients) != 1 || list.DishesWithoutIngredients[0].DishName != "Restetag" {
		t.Errorf("dishes without ingredients: %+v", list.DishesWithoutIngredients)
	}
}

func TestShoppingListEmptyWeek(t *testing.T) {
	env := newTestEnv(t)

	list, err := env.svc.ShoppingListForWeek(context.Background(), 2026, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(list.ShoppingList) != 0 || len(list.PantryList) != 0 {
		t.Errorf("expected empty lists: %+v", list)
	}
}

func TestFallbackLatch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	mustSave(t, env.svc, models.Dish{Name: "Vorher"})
	if env.svc.Mode() != ModePrimary {
		t.Fatalf("mode: %s", env.svc.Mode())
	}

	env.primary.down = true

	// The failed primary write is retried against the fallback.
	saved := mustSave(t, env.svc, models.Dish{Name: "Nachher"})
	if env.svc.Mode() != ModeFallback {
		t.Fatalf("mode after failure: %s", env.svc.Mode())
	}

	dishes, err := env.svc.Dishes(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(dishes) != 1 || dishes[0].ID != saved.ID {
		t.Errorf("fallback catalog: %+v", dishes)
	}

	// Primary recovery is not automatic.
	env.primary.down = false
	if env.svc.Mode() != ModeFallback {
		t.Error("mode flipped back without an explicit check")
	}
	if mode := env.svc.CheckBackend(); mode != ModePrimary {
		t.Errorf("CheckBackend: %s", mode)
	}

	dishes, err = env.svc.Dishes(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(dishes) != 1 || dishes[0].Name != "Vorher" {
		t.Errorf("primary catalog after recovery: %+v", dishes)
	}
}

func TestCategoriesDebounce(t *testing.T) {
	env := newTestEnv(t, WithCategoryDebounce(20*time.Millisecond))
	ctx := context.Background()

	env.svc.SaveCategories(ctx, []models.Category{
		{Name: "Auflauf", SortOrder: 9},
		{Name: "Suppen", SortOrder: 3},
	})

	// Buffered edits are readable immediately, with densified sort orders.
	cats, err := env.svc.Categories(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(cats) != 2 || cats[0].SortOrder != 0 || cats[1].SortOrder != 1 {
		t.Errorf("pending categories: %+v", cats)
	}

	// Nothing persisted before the window elapses.
	stored, err := env.primary.ListCategories()
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 0 {
		t.Errorf("persisted too early: %+v", stored)
	}

	time.Sleep(60 * time.Millisecond)
	stored, err = env.primary.ListCategories()
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 2 {
		t.Errorf("debounced write missing: %+v", stored)
	}
}

func TestFlushCategoriesImmediate(t *testing.T) {
	env := newTestEnv(t, WithCategoryDebounce(time.Hour))
	ctx := context.Background()

	env.svc.SaveCategories(ctx, []models.Category{{Name: "Suppen"}})
	if err := env.svc.FlushCategories(); err != nil {
		t.Fatal(err)
	}

	stored, err := env.primary.ListCategories()
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 1 || stored[0].Name != "Suppen" {
		t.Errorf("flush: %+v", stored)
	}

	// A second flush has nothing to do.
	if err := env.svc.FlushCategories(); err != nil {
		t.Errorf("idempotent flush: %v", err)
	}
}

func TestChangeListener(t *testing.T) {
	var kinds []string
	env := newTestEnv(t, WithChangeListener(func(kind string) {
		kinds = append(kinds, kind)
	}))
	ctx := context.Background()

	dish := mustSave(t, env.svc, models.Dish{Name: "Curry"})
	if err := env.svc.AddDishToPlan(ctx, 2026, 35, dish.ID); err != nil {
		t.Fatal(err)
	}

	// The statistics write inside AddDishToPlan is plumbing, not a separate
	// dish mutation, so only the plan event fires for it.
	want := []string{"dish", "plan"}
	if len(kinds) != len(want) {
		t.Fatalf("events: %v", kinds)
	}
	for i, k := range want {
		if kinds[i] != k {
			t.Errorf("event %d: got %q, want %q", i, kinds[i], k)
		}
	}
}

func TestImportRecipes(t *testing.T) {
	env := newTestEnv(t)
	extractor := &fakeExtractor{
		cand: models.RecipeCandidate{
			Name:        "Linsensuppe",
			Ingredients: []models.Ingredient{{ID: "i1", Name: "Linsen", Amount: "250", Unit: "g"}},
			RecipeLink:  "https://example.org/linsen",
		},
	}
	env.svc.extract = extractor

	results := env.svc.ImportRecipes(context.Background(), []string{"https://example.org/linsen"})
	if len(results) != 1 || results[0].Error != "" || results[0].DishID == "" {
		t.Fatalf("results: %+v", results)
	}

	dishes, err := env.svc.Dishes(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(dishes) != 1 || dishes[0].Name != "Linsensuppe" {
		t.Errorf("imported dish: %+v", dishes)
	}
	if len(dishes[0].Tags) != 1 || dishes[0].Tags[0] != "Hauptgerichte" {
		t.Errorf("untagged import should default to Hauptgerichte, got %v", dishes[0].Tags)
	}
}

func TestCategoriesDefaultOnEmptyStore(t *testing.T) {
	env := newTestEnv(t)

	cats, err := env.svc.Categories(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(cats) == 0 || cats[0].Name != "Hauptgerichte" || cats[0].SortOrder != 0 {
		t.Errorf("default categories: %+v", cats)
	}
}

func TestScrapeRejectsMalformedURL(t *testing.T) {
	env := newTestEnv(t)
	extractor := &fakeExtractor{}
	env.svc.extract = extractor

	for _, raw := range []string{"not a url", "ftp://example.org/recipe", "/relative/path", ""} {
		_, err := env.svc.ScrapeRecipe(context.Background(), raw)
		if !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("ScrapeRecipe(%q) error = %v, want ErrValidation", raw, err)
		}
	}
	if extractor.calls != 0 {
		t.Errorf("extractor called %d times for malformed URLs, want 0", extractor.calls)
	}
}

func TestImportRejectsMalformedURLPerItem(t *testing.T) {
	env := newTestEnv(t)
	extractor := &fakeExtractor{
		cand: models.RecipeCandidate{
			Name:       "Linsensuppe",
			RecipeLink: "https://example.org/linsen",
		},
	}
	env.svc.extract = extractor

	results := env.svc.ImportRecipes(context.Background(), []string{"not a url", "https://example.org/linsen"})
	if len(results) != 2 {
		t.Fatalf("results: %+v", results)
	}
	if results[0].Error == "" || results[0].DishID != "" {
		t.Errorf("malformed URL should fail without saving: %+v", results[0])
	}
	if results[1].Error != "" || results[1].DishID == "" {
		t.Errorf("valid URL should still import: %+v", results[1])
	}
	if extractor.calls != 1 {
		t.Errorf("extractor called %d times, want 1 (malformed URL rejected before fetch)", extractor.calls)
	}
}

func TestImportRecipesKeepsGoingOnFailure(t *testing.T) {
	env := newTestEnv(t)
	env.svc.extract = &fakeExtractor{err: apperr.ErrExtraction}

	results := env.svc.ImportRecipes(context.Background(), []string{"https://a", "https://b"})
	if len(results) != 2 {
		t.Fatalf("results: %+v", results)
	}
	for _, r := range results {
		if r.Error == "" {
			t.Errorf("expected error for %s", r.URL)
		}
	}
}
