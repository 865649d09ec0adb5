package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/gourmet/internal/models"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS dishes (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	image        TEXT NOT NULL DEFAULT '',
	rating       INTEGER NOT NULL DEFAULT 0,
	recipe_link  TEXT NOT NULL DEFAULT '',
	notes        TEXT NOT NULL DEFAULT '',
	last_cooked  DATETIME,
	times_cooked INTEGER NOT NULL DEFAULT 0,
	created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS ingredients (
	id       TEXT NOT NULL,
	dish_id  TEXT NOT NULL REFERENCES dishes(id) ON DELETE CASCADE,
	name     TEXT NOT NULL,
	amount   TEXT NOT NULL DEFAULT '',
	unit     TEXT NOT NULL DEFAULT '',
	position INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS dish_tags (
	dish_id TEXT NOT NULL REFERENCES dishes(id) ON DELETE CASCADE,
	tag     TEXT NOT NULL,
	UNIQUE(dish_id, tag)
);

CREATE TABLE IF NOT EXISTS categories (
	name       TEXT PRIMARY KEY,
	sort_order INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS menu_plans (
	year    INTEGER NOT NULL,
	week    INTEGER NOT NULL,
	dish_id TEXT NOT NULL,
	UNIQUE(year, week, dish_id)
);

CREATE INDEX IF NOT EXISTS idx_ingredients_dish ON ingredients(dish_id);
CREATE INDEX IF NOT EXISTS idx_plans_week ON menu_plans(year, week);
`

// DB wraps a sql.DB with catalog-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("storage: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("storage: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("storage: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Ping reports whether the database is reachable.
func (db *DB) Ping() error {
	return db.conn.Ping()
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// ListDishes returns every dish with its ingredients and tags, newest first.
func (db *DB) ListDishes() ([]models.Dish, error) {
	rows, err := db.conn.Query(`
		SELECT id, name, image, rating, recipe_link, notes, last_cooked, times_cooked, created_at
		FROM dishes ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("storage: list dishes: %w", err)
	}
	defer rows.Close()

	var dishes []models.Dish
	for rows.Next() {
		var d models.Dish
		var lastCooked sql.NullTime
		if err := rows.Scan(&d.ID, &d.Name, &d.Image, &d.Rating, &d.RecipeLink,
			&d.Notes, &lastCooked, &d.TimesCooked, &d.CreatedAt); err != nil {
			return nil, err
		}
		if lastCooked.Valid {
			t := lastCooked.Time
			d.LastCooked = &t
		}
		d.Ingredients = []models.Ingredient{}
		d.Tags = []string{}
		dishes = append(dishes, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	byID := make(map[string]*models.Dish, len(dishes))
	for i := range dishes {
		byID[dishes[i].ID] = &dishes[i]
	}

	if err := db.attachIngredients(byID); err != nil {
		return nil, err
	}
	if err := db.attachTags(byID); err != nil {
		return nil, err
	}
	return dishes, nil
}

func (db *DB) attachIngredients(byID map[string]*models.Dish) error {
	rows, err := db.conn.Query(`
		SELECT dish_id, id, name, amount, unit FROM ingredients ORDER BY dish_id, position`)
	if err != nil {
		return fmt.Errorf("storage: list ingredients: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var dishID string
		var ing models.Ingredient
		if err := rows.Scan(&dishID, &ing.ID, &ing.Name, &ing.Amount, &ing.Unit); err != nil {
			return err
		}
		if d, ok := byID[dishID]; ok {
			d.Ingredients = append(d.Ingredients, ing)
		}
	}
	return rows.Err()
}

func (db *DB) attachTags(byID map[string]*models.Dish) error {
	rows, err := db.conn.Query(`SELECT dish_id, tag FROM dish_tags ORDER BY rowid`)
	if err != nil {
		return fmt.Errorf("storage: list tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var dishID, tag string
		if err := rows.Scan(&dishID, &tag); err != nil {
			return err
		}
		if d, ok := byID[dishID]; ok {
			d.Tags = append(d.Tags, tag)
		}
	}
	return rows.Err()
}

// SaveDish inserts or replaces a dish and its ingredients and tags within a
// transaction.
func (db *DB) SaveDish(d models.Dish) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("storage: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	var lastCooked any
	if d.LastCooked != nil {
		lastCooked = d.LastCooked.UTC()
	}
	createdAt := d.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = tx.Exec(`
		INSERT INTO dishes (id, name, image, rating, recipe_link, notes, last_cooked, times_cooked, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name         = excluded.name,
			image        = excluded.image,
			rating       = excluded.rating,
			recipe_link  = excluded.recipe_link,
			notes        = excluded.notes,
			last_cooked  = excluded.last_cooked,
			times_cooked = excluded.times_cooked
	`, d.ID, d.Name, d.Image, d.Rating, d.RecipeLink, d.Notes, lastCooked, d.TimesCooked, createdAt)
	if err != nil {
		return fmt.Errorf("storage: upsert dish: %w", err)
	}

	// Replace ingredients and tags: delete old then bulk insert.
	if _, err := tx.Exec(`DELETE FROM ingredients WHERE dish_id = ?`, d.ID); err != nil {
		return fmt.Errorf("storage: clear ingredients: %w", err)
	}
	if len(d.Ingredients) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO ingredients (id, dish_id, name, amount, unit, position) VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("storage: prepare ingredient insert: %w", err)
		}
		defer stmt.Close()
		for i, ing := range d.Ingredients {
			if _, err := stmt.Exec(ing.ID, d.ID, ing.Name, ing.Amount, ing.Unit, i); err != nil {
				return fmt.Errorf("storage: insert ingredient: %w", err)
			}
		}
	}

	if _, err := tx.Exec(`DELETE FROM dish_tags WHERE dish_id = ?`, d.ID); err != nil {
		return fmt.Errorf("storage: clear tags: %w", err)
	}
	for _, tag := range d.Tags {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO dish_tags (dish_id, tag) VALUES (?, ?)`, d.ID, tag); err != nil {
			return fmt.Errorf("storage: insert tag: %w", err)
		}
	}

	return tx.Commit()
}

// DeleteDish removes a dish, its ingredients, tags, and plan assignments.
func (db *DB) DeleteDish(id string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("storage: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, _ = tx.Exec(`DELETE FROM menu_plans WHERE dish_id = ?`, id)
	_, _ = tx.Exec(`DELETE FROM ingredients WHERE dish_id = ?`, id)
	_, _ = tx.Exec(`DELETE FROM dish_tags WHERE dish_id = ?`, id)
	_, _ = tx.Exec(`DELETE FROM dishes WHERE id = ?`, id)

	return tx.Commit()
}

// ListCategories returns categories ordered by their persisted position.
func (db *DB) ListCategories() ([]models.Category, error) {
	rows, err := db.conn.Query(`SELECT name, sort_order FROM categories ORDER BY sort_order, name`)
	if err != nil {
		return nil, fmt.Errorf("storage: list categories: %w", err)
	}
	defer rows.Close()

	var cats []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.Name, &c.SortOrder); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// ReplaceCategories swaps the full category list in one transaction.
func (db *DB) ReplaceCategories(cats []models.Category) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("storage: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(`DELETE FROM categories`); err != nil {
		return fmt.Errorf("storage: clear categories: %w", err)
	}
	for _, c := range cats {
		if _, err := tx.Exec(`INSERT INTO categories (name, sort_order) VALUES (?, ?)`, c.Name, c.SortOrder); err != nil {
			return fmt.Errorf("storage: insert category: %w", err)
		}
	}
	return tx.Commit()
}

// ListPlans groups plan rows into WeeklyPlan values. Dish order within a
// week is insertion order.
func (db *DB) ListPlans() ([]models.WeeklyPlan, error) {
	rows, err := db.conn.Query(`SELECT year, week, dish_id FROM menu_plans ORDER BY year, week, rowid`)
	if err != nil {
		return nil, fmt.Errorf("storage: list plans: %w", err)
	}
	defer rows.Close()

	var plans []models.WeeklyPlan
	byID := make(map[string]int)
	for rows.Next() {
		var year, week int
		var dishID string
		if err := rows.Scan(&year, &week, &dishID); err != nil {
			return nil, err
		}
		id := models.PlanID(year, week)
		i, ok := byID[id]
		if !ok {
			plans = append(plans, models.WeeklyPlan{ID: id, Year: year, Week: week})
			i = len(plans) - 1
			byID[id] = i
		}
		plans[i].DishIDs = append(plans[i].DishIDs, dishID)
	}
	return plans, rows.Err()
}

// AddPlanDish assigns a dish to a week. Re-adding an assigned dish is a
// no-op.
func (db *DB) AddPlanDish(year, week int, dishID string) error {
	_, err := db.conn.Exec(`INSERT OR IGNORE INTO menu_plans (year, week, dish_id) VALUES (?, ?, ?)`,
		year, week, dishID)
	if err != nil {
		return fmt.Errorf("storage: add plan dish: %w", err)
	}
	return nil
}

// RemovePlanDish removes one dish assignment from a week.
func (db *DB) RemovePlanDish(year, week int, dishID string) error {
	_, err := db.conn.Exec(`DELETE FROM menu_plans WHERE year = ? AND week = ? AND dish_id = ?`,
		year, week, dishID)
	if err != nil {
		return fmt.Errorf("storage: remove plan dish: %w", err)
	}
	return nil
}
