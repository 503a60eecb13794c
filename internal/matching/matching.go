// Package matching scores a job's requirements against a candidate's skills
// using the domain relationship classifier and the requirement weighting
// evaluators.
package matching

import (
	"github.com/dmaslov/skillfit/internal/relationship"
	"github.com/dmaslov/skillfit/internal/weighting"
)

// Config is the engine tuning surface, enumerated once with documented
// defaults. Never a raw key/value blob.
type Config struct {
	// QualityThreshold is the minimum skill quality score (0-100) below
	// which a definition is flagged for expert attention in reports.
	QualityThreshold float64 `mapstructure:"quality-threshold"`
	// ConservativeBias treats matches within biasMargin below an
	// acquisition gate as unmatched instead of matched.
	ConservativeBias bool `mapstructure:"conservative-bias"`
	// MinDomainOverlap is the minimum similarity a cross-domain (HYBRID)
	// pair needs to earn its tier credit.
	MinDomainOverlap float64 `mapstructure:"min-domain-overlap"`
	// CacheEnabled persists classified pairs between runs.
	CacheEnabled bool `mapstructure:"cache-enabled"`
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		QualityThreshold: 60,
		ConservativeBias: false,
		MinDomainOverlap: 0.5,
		CacheEnabled:     true,
	}
}

// Job is the matching input supplied by the surrounding pipeline.
type Job struct {
	Title           string        `yaml:"title" json:"title"`
	Description     string        `yaml:"description" json:"description"`
	Requirements    []Requirement `yaml:"requirements" json:"requirements"`
	CandidateSkills []string      `yaml:"candidate_skills" json:"candidate_skills,omitempty"`
}

// Requirement is a single labeled requirement phrase. Blacklisted
// requirements (soft-skill boilerplate flagged by the caller) are excluded
// from scoring but still reported.
type Requirement struct {
	Text        string `yaml:"text" json:"text"`
	Blacklisted bool   `yaml:"blacklisted,omitempty" json:"blacklisted,omitempty"`
}

// MatchRecord is the per-requirement outcome. MatchedSkill is empty when no
// candidate cleared similarity zero.
type MatchRecord struct {
	Requirement       string                `json:"requirement"`
	MatchedSkill      string                `json:"matched_skill,omitempty"`
	Matched           bool                  `json:"matched"`
	MatchStrength     float64               `json:"match_strength"`
	EffectiveStrength float64               `json:"effective_strength"`
	Relationship      relationship.Type     `json:"relationship_type"`
	Similarity        float64               `json:"similarity"`
	Confidence        float64               `json:"confidence_score"`
	ConfidenceLabel   string                `json:"confidence_label"`
	Criticality       weighting.Criticality `json:"criticality"`
	Acquisition       weighting.Acquisition `json:"acquisition"`
	Blacklisted       bool                  `json:"blacklisted,omitempty"`
}

// Result is a whole-job scoring outcome.
type Result struct {
	OverallScore    float64       `json:"overall_score"`
	Matches         []MatchRecord `json:"matches"`
	CriticalMissing bool          `json:"critical_missing"`
	Degradations    int           `json:"degradations,omitempty"`
}
