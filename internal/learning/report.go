package learning

import "github.com/dmaslov/skillfit/internal/skills"

// Quality distribution bucket labels, in display order.
var qualityBuckets = []string{"0-25", "26-50", "51-75", "76-100"}

// Report aggregates store-wide quality so experts can prioritize which
// skills need attention next.
type Report struct {
	SkillCount     int                `json:"skill_count"`
	AverageQuality float64            `json:"average_quality"`
	Distribution   map[string]int     `json:"distribution"`
	IssueCounts    map[string]int     `json:"issue_counts"`
	NeedAttention  []string           `json:"need_attention,omitempty"`
	Issues         []ConsistencyIssue `json:"issues,omitempty"`
}

// QualityReport scores every skill, buckets the distribution, and folds in
// consistency issues. qualityThreshold marks the skills listed for expert
// attention.
func QualityReport(snapshot *skills.Snapshot, qualityThreshold float64) *Report {
	report := &Report{
		Distribution: make(map[string]int, len(qualityBuckets)),
		IssueCounts:  make(map[string]int),
	}
	for _, bucket := range qualityBuckets {
		report.Distribution[bucket] = 0
	}

	total := 0.0
	for _, skill := range snapshot.All() {
		score := skill.QualityScore
		if score == 0 {
			score = QualityScore(skill, nil)
		}

		report.SkillCount++
		total += score
		report.Distribution[bucketFor(score)]++

		if score < qualityThreshold {
			report.NeedAttention = append(report.NeedAttention, skill.Name)
		}
	}

	if report.SkillCount > 0 {
		report.AverageQuality = total / float64(report.SkillCount)
	}

	report.Issues = CheckConsistency(snapshot)
	for _, issue := range report.Issues {
		report.IssueCounts[issue.Kind]++
	}

	return report
}

func bucketFor(score float64) string {
	switch {
	case score <= 25:
		return qualityBuckets[0]
	case score <= 50:
		return qualityBuckets[1]
	case score <= 75:
		return qualityBuckets[2]
	default:
		return qualityBuckets[3]
	}
}
