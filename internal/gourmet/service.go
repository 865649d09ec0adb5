// Package gourmet coordinates storage, extraction, and planning behind one
// service facade. It owns the primary/fallback storage switch: once a
// primary operation fails, all traffic latches onto the local file cache
// until an explicit backend check succeeds again.
package gourmet

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/starford/gourmet/internal/ingredient"
	"github.com/starford/gourmet/internal/models"
	"github.com/starford/gourmet/internal/storage"
)

// StorageMode names the backend currently serving requests.
type StorageMode string

const (
	ModePrimary  StorageMode = "primary"
	ModeFallback StorageMode = "fallback"
)

// Extractor turns a recipe page URL into a candidate dish.
type Extractor interface {
	Extract(ctx context.Context, sourceURL string) (models.RecipeCandidate, error)
}

// ChangeListener is notified after every successful mutation. kind is one of
// "dish", "plan", "category".
type ChangeListener func(kind string)

// Service is the repository facade the API and MCP layers talk to.
type Service struct {
	primary  storage.Backend
	fallback storage.Backend
	staples  *ingredient.Staples
	extract  Extractor
	log      *slog.Logger

	now      func() time.Time
	onChange ChangeListener

	modeMu sync.RWMutex
	mode   StorageMode

	catMu       sync.Mutex
	catDebounce time.Duration
	catTimer    *time.Timer
	pendingCats []models.Category
}

// Option configures a Service.
type Option func(*Service)

// WithChangeListener registers the mutation callback.
func WithChangeListener(fn ChangeListener) Option {
	return func(s *Service) { s.onChange = fn }
}

// WithClock overrides the time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithCategoryDebounce overrides the category save delay.
func WithCategoryDebounce(d time.Duration) Option {
	return func(s *Service) { s.catDebounce = d }
}

// New builds the service. fallback may equal primary when no cache is
// configured; the mode latch then has no effect.
func New(primary, fallback storage.Backend, staples *ingredient.Staples, extract Extractor, log *slog.Logger, opts ...Option) *Service {
	s := &Service{
		primary:     primary,
		fallback:    fallback,
		staples:     staples,
		extract:     extract,
		log:         log,
		now:         time.Now,
		mode:        ModePrimary,
		catDebounce: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StapleNames returns the current pantry staples vocabulary.
func (s *Service) StapleNames() []string {
	return s.staples.Names()
}

// Mode reports which backend is serving requests.
func (s *Service) Mode() StorageMode {
	s.modeMu.RLock()
	defer s.modeMu.RUnlock()
	return s.mode
}

// CheckBackend pings the primary backend and, on success, latches back onto
// it. This is the only way out of fallback mode.
func (s *Service) CheckBackend() StorageMode {
	if err := s.primary.Ping(); err != nil {
		s.log.Warn("primary backend still unavailable", "error", err)
		return s.Mode()
	}
	s.modeMu.Lock()
	if s.mode != ModePrimary {
		s.log.Info("primary backend recovered, leaving fallback mode")
		s.mode = ModePrimary
	}
	s.modeMu.Unlock()
	return ModePrimary
}

// Close flushes buffered category edits and closes both backends.
func (s *Service) Close() error {
	if err := s.FlushCategories(); err != nil {
		s.log.Error("flush categories on close", "error", err)
	}
	err := s.primary.Close()
	if s.fallback != s.primary {
		if cerr := s.fallback.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func (s *Service) backend() storage.Backend {
	if s.Mode() == ModeFallback {
		return s.fallback
	}
	return s.primary
}

func (s *Service) degrade(err error) {
	s.modeMu.Lock()
	defer s.modeMu.Unlock()
	if s.mode == ModeFallback {
		return
	}
	s.log.Warn("primary backend failed, switching to fallback", "error", err)
	s.mode = ModeFallback
}

// run executes op against the active backend. A primary failure degrades
// the service and retries the same op once against the fallback.
func (s *Service) run(op func(storage.Backend) error) error {
	b := s.backend()
	err := op(b)
	if err == nil || b == s.fallback {
		return err
	}
	s.degrade(err)
	return op(s.fallback)
}

func (s *Service) notify(kind string) {
	if s.onChange != nil {
		s.onChange(kind)
	}
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
