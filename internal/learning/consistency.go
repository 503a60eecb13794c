package learning

import (
	"fmt"
	"sort"

	"github.com/dmaslov/skillfit/internal/skills"
)

// Consistency issue kinds. These are advisory signals for human review and
// are never auto-corrected.
const (
	IssueUniqueComponents = "unique_components"
	IssueSparseDefinition = "sparse_definition"
)

// ConsistencyIssue flags one skill definition for expert attention.
type ConsistencyIssue struct {
	Kind      string   `json:"kind"`
	SkillName string   `json:"skill_name"`
	Category  string   `json:"category"`
	Detail    string   `json:"detail"`
	Values    []string `json:"values,omitempty"`
}

// CheckConsistency inspects each domain category for two smells: skills
// whose component values are used by no other skill in the category, and
// skills whose total component count is less than half the category average.
// Categories with fewer than two members are skipped: with a single skill
// every component would be unique and the category average is just that
// skill's own count, so neither check can say anything useful.
func CheckConsistency(snapshot *skills.Snapshot) []ConsistencyIssue {
	byCategory := make(map[string][]*skills.Skill)
	for _, skill := range snapshot.All() {
		if skill.Category == "" {
			continue
		}
		byCategory[skill.Category] = append(byCategory[skill.Category], skill)
	}

	categories := make([]string, 0, len(byCategory))
	for category := range byCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	var issues []ConsistencyIssue
	for _, category := range categories {
		members := byCategory[category]
		if len(members) < 2 {
			continue
		}
		issues = append(issues, checkCategory(category, members)...)
	}
	return issues
}

func checkCategory(category string, members []*skills.Skill) []ConsistencyIssue {
	// usage counts how many skills in the category use each component value.
	usage := make(map[string]int)
	totalComponents := 0
	for _, skill := range members {
		for _, v := range componentSet(skill) {
			usage[v]++
		}
		totalComponents += skill.TotalComponents()
	}
	average := float64(totalComponents) / float64(len(members))

	var issues []ConsistencyIssue
	for _, skill := range members {
		var unique []string
		for _, v := range componentSet(skill) {
			if usage[v] == 1 {
				unique = append(unique, v)
			}
		}
		if len(unique) > 0 {
			sort.Strings(unique)
			issues = append(issues, ConsistencyIssue{
				Kind:      IssueUniqueComponents,
				SkillName: skill.Name,
				Category:  category,
				Detail:    fmt.Sprintf("%d component value(s) used by no other skill in %q", len(unique), category),
				Values:    unique,
			})
		}

		if float64(skill.TotalComponents()) < average/2 {
			issues = append(issues, ConsistencyIssue{
				Kind:      IssueSparseDefinition,
				SkillName: skill.Name,
				Category:  category,
				Detail: fmt.Sprintf("%d components against a category average of %.1f",
					skill.TotalComponents(), average),
			})
		}
	}
	return issues
}

// componentSet returns the deduplicated union of a skill's three enrichment
// sets, so a value reused across sets still counts once per skill.
func componentSet(skill *skills.Skill) []string {
	return dedupe(append(append(append(
		[]string(nil),
		skill.KnowledgeComponents...),
		skill.Contexts...),
		skill.Functions...))
}
