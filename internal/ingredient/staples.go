package ingredient

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// defaultStaples is the compiled-in pantry vocabulary, keyed by normalized
// name. Used until (and unless) a vocabulary file is loaded.
var defaultStaples = []string{
	"salz",
	"pfeffer",
	"öl",
	"olivenöl",
	"zucker",
	"mehl",
	"essig",
	"brühe",
	"senf",
	"honig",
	"butter",
	"zwiebel",
	"knoblauch",
	"agavendicksaft",
	"paprikapulver",
}

// Staples classifies ingredients as pantry staples. The vocabulary can be
// replaced at runtime from a YAML file, so lookups are guarded.
type Staples struct {
	mu  sync.RWMutex
	set map[string]struct{}
}

// NewStaples returns a classifier with the built-in vocabulary.
func NewStaples() *Staples {
	s := &Staples{}
	s.replace(defaultStaples)
	return s
}

func (s *Staples) replace(names []string) {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[Normalize(n)] = struct{}{}
	}
	s.mu.Lock()
	s.set = set
	s.mu.Unlock()
}

// Contains reports whether the ingredient name matches the staples
// vocabulary after normalization.
func (s *Staples) Contains(name string) bool {
	key := Normalize(name)
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.set[key]
	return ok
}

// Names returns the current vocabulary in normalized form, unordered.
func (s *Staples) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.set))
	for n := range s.set {
		names = append(names, n)
	}
	return names
}

type staplesFile struct {
	Staples []string `yaml:"staples"`
}

// LoadFile replaces the vocabulary with the contents of a YAML file of the
// form "staples: [salz, pfeffer, ...]". On any error the current vocabulary
// stays in effect.
func (s *Staples) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read staples file: %w", err)
	}

	var f staplesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse staples file: %w", err)
	}
	if len(f.Staples) == 0 {
		return fmt.Errorf("staples file %q lists no entries", path)
	}

	s.replace(f.Staples)
	return nil
}
