package learning

import "github.com/dmaslov/skillfit/internal/skills"

// Quality score model: start from a base, reward complete and rich
// enrichment, factor in the expert rating, and subtract a little when the
// expert had to correct anything.
const (
	qualityBase         = 60.0
	completenessBonus   = 10.0
	correctionPenalty   = 5.0
	ratingNeutral       = 3
	ratingStep          = 5.0
	richnessSmallBonus  = 5.0
	richnessMediumBonus = 10.0
	richnessLargeBonus  = 15.0
	richnessSmallCount  = 5
	richnessMediumCount = 10
	richnessLargeCount  = 15
)

// QualityScore derives the 0-100 quality score of a skill definition.
// feedback may be nil when no expert feedback exists for the skill.
func QualityScore(skill *skills.Skill, feedback *FeedbackEntry) float64 {
	score := qualityBase

	if skill.Category != "" &&
		len(skill.KnowledgeComponents) > 0 &&
		len(skill.Contexts) > 0 &&
		len(skill.Functions) > 0 {
		score += completenessBonus
	}

	switch total := skill.TotalComponents(); {
	case total >= richnessLargeCount:
		score += richnessLargeBonus
	case total >= richnessMediumCount:
		score += richnessMediumBonus
	case total >= richnessSmallCount:
		score += richnessSmallBonus
	}

	if feedback != nil {
		if feedback.Rating >= 1 && feedback.Rating <= 5 {
			score += float64(feedback.Rating-ratingNeutral) * ratingStep
		}
		if len(feedback.Corrections) > 0 {
			score -= correctionPenalty
		}
	}

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
