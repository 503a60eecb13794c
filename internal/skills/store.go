package skills

import (
	"errors"
	"sort"
	"strings"
	"sync"
)

// ErrNotFound is returned when a requested skill has no definition.
var ErrNotFound = errors.New("skill not found")

// Store holds skill definitions keyed by canonical name. Lookup is exact and
// case-sensitive; free-text phrases go through a Resolver first. The store is
// safe for concurrent use; matching runs should operate on a Snapshot so
// concurrent feedback application cannot interleave with classification.
type Store struct {
	mu     sync.RWMutex
	skills map[string]*Skill
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{skills: make(map[string]*Skill)}
}

// Get returns the skill with the given canonical name or ErrNotFound.
func (s *Store) Get(name string) (*Skill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	skill, ok := s.skills[name]
	if !ok {
		return nil, ErrNotFound
	}
	return skill.Clone(), nil
}

// Upsert inserts or replaces the skill definition. Names must be non-empty.
func (s *Store) Upsert(skill *Skill) error {
	if skill == nil || strings.TrimSpace(skill.Name) == "" {
		return errors.New("skill name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.skills[skill.Name] = skill.Clone()
	return nil
}

// All returns every skill sorted by name.
func (s *Store) All() []*Skill {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Skill, 0, len(s.skills))
	for _, skill := range s.skills {
		out = append(out, skill.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len returns the number of stored skills.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.skills)
}

// Snapshot returns an immutable copy of the store for a single run. Readers
// of a snapshot never observe concurrent writes to the live store.
func (s *Store) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	copied := make(map[string]*Skill, len(s.skills))
	for name, skill := range s.skills {
		copied[name] = skill.Clone()
	}
	return &Snapshot{skills: copied}
}

// Snapshot is a read-only view of a store taken at a point in time.
type Snapshot struct {
	skills map[string]*Skill
}

// Get returns the snapshotted skill or ErrNotFound.
func (s *Snapshot) Get(name string) (*Skill, error) {
	skill, ok := s.skills[name]
	if !ok {
		return nil, ErrNotFound
	}
	return skill, nil
}

// GetOrEmpty returns the snapshotted skill, or an unenriched placeholder when
// the name is unknown. Unknown skills are common with freshly scraped text
// and must not abort a matching run.
func (s *Snapshot) GetOrEmpty(name string) *Skill {
	if skill, ok := s.skills[name]; ok {
		return skill
	}
	return &Skill{Name: name}
}

// All returns every snapshotted skill sorted by name.
func (s *Snapshot) All() []*Skill {
	out := make([]*Skill, 0, len(s.skills))
	for _, skill := range s.skills {
		out = append(out, skill)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len returns the number of snapshotted skills.
func (s *Snapshot) Len() int {
	return len(s.skills)
}
