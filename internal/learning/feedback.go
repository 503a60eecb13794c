// Package learning is the offline improvement loop: it ingests expert
// corrections to skill definitions, recomputes quality scores, and flags
// internal inconsistencies for human review.
package learning

import (
	"fmt"
	"sort"
	"time"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/dmaslov/skillfit/internal/skills"
)

// FeedbackEntry is an expert-authored correction to one skill's enrichment.
type FeedbackEntry struct {
	ID          string         `yaml:"id,omitempty"`
	SkillName   string         `yaml:"skill_name"`
	Corrections map[string]any `yaml:"corrections"`
	Rating      int            `yaml:"rating,omitempty"` // 1-5, 0 means absent
	Notes       string         `yaml:"notes,omitempty"`
	Timestamp   time.Time      `yaml:"timestamp"`
}

// corrections is the typed shape of the untyped corrections map. A
// replace_<field> flag switches that field from union-merge to replacement.
type corrections struct {
	Category            string   `mapstructure:"category"`
	KnowledgeComponents []string `mapstructure:"knowledge_components"`
	Contexts            []string `mapstructure:"contexts"`
	Functions           []string `mapstructure:"functions"`
	ProficiencyLevel    int      `mapstructure:"proficiency_level"`

	ReplaceKnowledgeComponents bool `mapstructure:"replace_knowledge_components"`
	ReplaceContexts            bool `mapstructure:"replace_contexts"`
	ReplaceFunctions           bool `mapstructure:"replace_functions"`
}

// ApplyResult summarizes a feedback application pass.
type ApplyResult struct {
	Updated []string
	Skipped int
}

// ApplyFeedback applies expert corrections to the store. Entries for unknown
// skills or with undecodable corrections are skipped and counted, never
// fatal. Multiple entries for one skill are reconciled by most-recent
// timestamp. Application is idempotent: fields merge with de-duplication, so
// applying the same entry twice leaves the skill unchanged.
func ApplyFeedback(store *skills.Store, entries []FeedbackEntry, logger *zap.Logger) (*ApplyResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	result := &ApplyResult{}

	for _, entry := range Reconcile(entries) {
		skill, err := store.Get(entry.SkillName)
		if err != nil {
			logger.Warn("skipping feedback for unknown skill",
				zap.String("skill", entry.SkillName),
			)
			result.Skipped++
			continue
		}

		if err := applyEntry(skill, entry); err != nil {
			logger.Warn("skipping malformed feedback",
				zap.String("skill", entry.SkillName),
				zap.Error(err),
			)
			result.Skipped++
			continue
		}

		skill.QualityScore = QualityScore(skill, &entry)

		if err := store.Upsert(skill); err != nil {
			return nil, fmt.Errorf("storing corrected skill %q: %w", skill.Name, err)
		}
		result.Updated = append(result.Updated, skill.Name)

		logger.Info("feedback applied",
			zap.String("skill", skill.Name),
			zap.Float64("quality_score", skill.QualityScore),
		)
	}

	return result, nil
}

// Reconcile keeps the most recent entry per skill name.
func Reconcile(entries []FeedbackEntry) []FeedbackEntry {
	latest := make(map[string]FeedbackEntry, len(entries))
	for _, entry := range entries {
		current, ok := latest[entry.SkillName]
		if !ok || entry.Timestamp.After(current.Timestamp) {
			latest[entry.SkillName] = entry
		}
	}

	out := make([]FeedbackEntry, 0, len(latest))
	for _, entry := range latest {
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SkillName < out[j].SkillName })
	return out
}

func applyEntry(skill *skills.Skill, entry FeedbackEntry) error {
	var c corrections
	if err := mapstructure.Decode(entry.Corrections, &c); err != nil {
		return fmt.Errorf("decoding corrections: %w", err)
	}

	if c.Category != "" {
		skill.Category = c.Category
	}
	if c.ProficiencyLevel != 0 {
		if c.ProficiencyLevel < 1 || c.ProficiencyLevel > 10 {
			return fmt.Errorf("proficiency level %d out of range", c.ProficiencyLevel)
		}
		skill.ProficiencyLevel = c.ProficiencyLevel
	}

	skill.KnowledgeComponents = applyField(skill.KnowledgeComponents, c.KnowledgeComponents, c.ReplaceKnowledgeComponents)
	skill.Contexts = applyField(skill.Contexts, c.Contexts, c.ReplaceContexts)
	skill.Functions = applyField(skill.Functions, c.Functions, c.ReplaceFunctions)

	if entry.Notes != "" {
		skill.Notes = entry.Notes
	}
	skill.FeedbackAppliedAt = entry.Timestamp

	return nil
}

// applyField replaces the set outright or unions the correction into it with
// de-duplication, preserving first-seen order.
func applyField(existing, correction []string, replace bool) []string {
	if replace {
		return dedupe(correction)
	}
	if len(correction) == 0 {
		return existing
	}
	return dedupe(append(append([]string(nil), existing...), correction...))
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
