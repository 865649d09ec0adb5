package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/starford/gourmet/internal/models"
)

const (
	dishesFile     = "dishes.json"
	categoriesFile = "categories.json"
	plansFile      = "plans.json"
)

// FileCache is the fallback backend: three JSON files holding the whole
// catalog, each rewritten atomically on every mutation. Slow for large
// catalogs, but a personal catalog stays small and the files double as a
// human-readable export.
type FileCache struct {
	mu  sync.Mutex
	dir string
}

// NewFileCache creates the cache directory if needed.
func NewFileCache(dir string) (*FileCache, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve cache dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create cache dir: %w", err)
	}
	return &FileCache{dir: abs}, nil
}

// Ping always succeeds: local files are assumed available.
func (fc *FileCache) Ping() error { return nil }

// Close is a no-op; files are closed after every operation.
func (fc *FileCache) Close() error { return nil }

func (fc *FileCache) ListDishes() ([]models.Dish, error) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	var dishes []models.Dish
	if err := fc.read(dishesFile, &dishes); err != nil {
		return nil, err
	}
	return dishes, nil
}

func (fc *FileCache) SaveDish(d models.Dish) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	var dishes []models.Dish
	if err := fc.read(dishesFile, &dishes); err != nil {
		return err
	}
	replaced := false
	for i := range dishes {
		if dishes[i].ID == d.ID {
			dishes[i] = d
			replaced = true
			break
		}
	}
	if !replaced {
		dishes = append(dishes, d)
	}
	return fc.write(dishesFile, dishes)
}

func (fc *FileCache) DeleteDish(id string) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	var dishes []models.Dish
	if err := fc.read(dishesFile, &dishes); err != nil {
		return err
	}
	kept := dishes[:0]
	for _, d := range dishes {
		if d.ID != id {
			kept = append(kept, d)
		}
	}
	if err := fc.write(dishesFile, kept); err != nil {
		return err
	}

	// Plan assignments referencing the dish go with it.
	var plans []models.WeeklyPlan
	if err := fc.read(plansFile, &plans); err != nil {
		return err
	}
	for i := range plans {
		ids := plans[i].DishIDs[:0]
		for _, dishID := range plans[i].DishIDs {
			if dishID != id {
				ids = append(ids, dishID)
			}
		}
		plans[i].DishIDs = ids
	}
	return fc.write(plansFile, plans)
}

func (fc *FileCache) ListCategories() ([]models.Category, error) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	var cats []models.Category
	if err := fc.read(categoriesFile, &cats); err != nil {
		return nil, err
	}
	return cats, nil
}

func (fc *FileCache) ReplaceCategories(cats []models.Category) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.write(categoriesFile, cats)
}

func (fc *FileCache) ListPlans() ([]models.WeeklyPlan, error) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	var plans []models.WeeklyPlan
	if err := fc.read(plansFile, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

func (fc *FileCache) AddPlanDish(year, week int, dishID string) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	var plans []models.WeeklyPlan
	if err := fc.read(plansFile, &plans); err != nil {
		return err
	}
	id := models.PlanID(year, week)
	for i := range plans {
		if plans[i].ID != id {
			continue
		}
		for _, existing := range plans[i].DishIDs {
			if existing == dishID {
				return nil
			}
		}
		plans[i].DishIDs = append(plans[i].DishIDs, dishID)
		return fc.write(plansFile, plans)
	}
	plans = append(plans, models.WeeklyPlan{
		ID: id, Year: year, Week: week, DishIDs: []string{dishID},
	})
	return fc.write(plansFile, plans)
}

func (fc *FileCache) RemovePlanDish(year, week int, dishID string) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	var plans []models.WeeklyPlan
	if err := fc.read(plansFile, &plans); err != nil {
		return err
	}
	id := models.PlanID(year, week)
	for i := range plans {
		if plans[i].ID != id {
			continue
		}
		ids := plans[i].DishIDs[:0]
		for _, existing := range plans[i].DishIDs {
			if existing != dishID {
				ids = append(ids, existing)
			}
		}
		plans[i].DishIDs = ids
		return fc.write(plansFile, plans)
	}
	return nil
}

func (fc *FileCache) read(name string, out any) error {
	data, err := os.ReadFile(filepath.Join(fc.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("storage: read cache %s: %w", name, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("storage: parse cache %s: %w", name, err)
	}
	return nil
}

// write replaces a cache file atomically: tmp file, fsync, rename.
func (fc *FileCache) write(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("storage: encode cache %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(fc.dir, ".gourmet-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, filepath.Join(fc.dir, name)); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}
