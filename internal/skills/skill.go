package skills

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Skill is an enriched labeled phrase. Job requirements and candidate skills
// share this representation; only the name is required, every enrichment
// field may be empty.
type Skill struct {
	Name                string    `yaml:"name" json:"name"`
	Category            string    `yaml:"category" json:"category"`
	KnowledgeComponents []string  `yaml:"knowledge_components" json:"knowledge_components"`
	Contexts            []string  `yaml:"contexts" json:"contexts"`
	Functions           []string  `yaml:"functions" json:"functions"`
	ProficiencyLevel    int       `yaml:"proficiency_level" json:"proficiency_level"`
	QualityScore        float64   `yaml:"quality_score,omitempty" json:"quality_score"`
	Notes               string    `yaml:"notes,omitempty" json:"notes,omitempty"`
	FeedbackAppliedAt   time.Time `yaml:"feedback_applied_at,omitempty" json:"feedback_applied_at,omitempty"`
}

// TotalComponents returns the combined size of the three enrichment sets.
func (s *Skill) TotalComponents() int {
	return len(s.KnowledgeComponents) + len(s.Contexts) + len(s.Functions)
}

// Enriched reports whether the skill carries any enrichment at all.
func (s *Skill) Enriched() bool {
	return s.Category != "" || s.TotalComponents() > 0
}

// Clone returns a deep copy of the skill.
func (s *Skill) Clone() *Skill {
	if s == nil {
		return nil
	}
	copied := *s
	copied.KnowledgeComponents = append([]string(nil), s.KnowledgeComponents...)
	copied.Contexts = append([]string(nil), s.Contexts...)
	copied.Functions = append([]string(nil), s.Functions...)
	return &copied
}

// EnrichmentHash returns a stable hash over the category and the sorted
// enrichment sets. Cached relationship rows store this hash so they can be
// discarded once either skill's enrichment changes.
func (s *Skill) EnrichmentHash() string {
	var b strings.Builder
	b.WriteString(s.Category)
	for _, set := range [][]string{s.KnowledgeComponents, s.Contexts, s.Functions} {
		sorted := append([]string(nil), set...)
		sort.Strings(sorted)
		b.WriteString("|")
		b.WriteString(strings.Join(sorted, ","))
	}
	sum := sha256.Sum256([]byte(b.String()))
	return fmt.Sprintf("%x", sum[:8])
}
