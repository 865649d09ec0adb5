package gourmet

import (
	"context"
	"time"

	"github.com/starford/gourmet/internal/models"
	"github.com/starford/gourmet/internal/storage"
)

// defaultCategories seeds a fresh install until the user saves their own
// list. Hauptgerichte stays first; it is also the default tag for imports.
var defaultCategories = []string{
	"Hauptgerichte", "Vorspeisen", "Suppen", "Salate", "Desserts", "Backen",
}

// Categories returns the ordered category list. A buffered, not yet flushed
// save is reflected immediately so the caller reads its own writes. An empty
// store yields the built-in defaults.
func (s *Service) Categories(_ context.Context) ([]models.Category, error) {
	s.catMu.Lock()
	pending := s.pendingCats
	s.catMu.Unlock()
	if pending != nil {
		return append([]models.Category(nil), pending...), nil
	}

	var cats []models.Category
	err := s.run(func(b storage.Backend) error {
		var err error
		cats, err = b.ListCategories()
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(cats) == 0 {
		cats = make([]models.Category, 0, len(defaultCategories))
		for i, name := range defaultCategories {
			cats = append(cats, models.Category{Name: name, SortOrder: i})
		}
	}
	return cats, nil
}

// SaveCategories buffers a full category replacement and flushes it after
// the debounce window. Rapid consecutive edits collapse into one write;
// sort orders are re-densified from list position. The write is deferred,
// so a crash inside the window loses the buffered edit.
func (s *Service) SaveCategories(_ context.Context, cats []models.Category) {
	cats = append([]models.Category(nil), cats...)
	for i := range cats {
		cats[i].SortOrder = i
	}

	s.catMu.Lock()
	defer s.catMu.Unlock()
	s.pendingCats = cats
	if s.catTimer != nil {
		s.catTimer.Stop()
	}
	s.catTimer = time.AfterFunc(s.catDebounce, func() {
		if err := s.FlushCategories(); err != nil {
			s.log.Error("debounced category save failed", "error", err)
		}
	})
}

// FlushCategories writes the buffered category list immediately. Called by
// the debounce timer and on shutdown; a no-op when nothing is buffered.
func (s *Service) FlushCategories() error {
	s.catMu.Lock()
	cats := s.pendingCats
	s.pendingCats = nil
	if s.catTimer != nil {
		s.catTimer.Stop()
		s.catTimer = nil
	}
	s.catMu.Unlock()

	if cats == nil {
		return nil
	}

	err := s.run(func(b storage.Backend) error {
		return b.ReplaceCategories(cats)
	})
	if err != nil {
		return err
	}
	s.notify("category")
	return nil
}
