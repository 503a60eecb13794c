package matching

import "github.com/dmaslov/skillfit/internal/relationship"

// Confidence signal weights. Missing optional signals are dropped from both
// the numerator and the denominator, never defaulted to zero.
const (
	weightMatchPercentage = 0.4
	weightEmbedding       = 0.2
	weightBucketRelevance = 0.1
	weightModelConfidence = 0.2
	weightContextual      = 0.05
	weightTextPattern     = 0.05
)

// Signals carries the evidence available for a single match. MatchPercentage
// is the only mandatory signal; the rest are optional and independently
// supplied.
type Signals struct {
	MatchPercentage float64
	Embedding       *float64
	BucketRelevance *float64
	ModelConfidence *float64
	Contextual      *float64
	TextPattern     *float64
}

// Confidence combines the supplied signals into a single 0-1 score,
// renormalized over the weights actually present. A lone match percentage of
// 0.8 therefore yields exactly 0.8.
func Confidence(s Signals) float64 {
	sum := weightMatchPercentage * s.MatchPercentage
	weights := weightMatchPercentage

	for _, opt := range []struct {
		value  *float64
		weight float64
	}{
		{s.Embedding, weightEmbedding},
		{s.BucketRelevance, weightBucketRelevance},
		{s.ModelConfidence, weightModelConfidence},
		{s.Contextual, weightContextual},
		{s.TextPattern, weightTextPattern},
	} {
		if opt.value == nil {
			continue
		}
		sum += opt.weight * clamp01(*opt.value)
		weights += opt.weight
	}

	return clamp01(sum / weights)
}

// Label maps a confidence score to its 5-level display label. Scoring always
// uses the float; the label is presentation only.
func Label(score float64) string {
	switch {
	case score < 0.25:
		return "Very Low"
	case score < 0.5:
		return "Low"
	case score < 0.75:
		return "Medium"
	case score < 0.9:
		return "High"
	default:
		return "Very High"
	}
}

// bucketRelevance scores how much the relationship type itself supports the
// match, used as the optional bucket-relevance confidence signal.
func bucketRelevance(t relationship.Type) *float64 {
	var v float64
	switch t {
	case relationship.ExactMatch:
		v = 1.0
	case relationship.Subset, relationship.Superset:
		v = 0.8
	case relationship.Neighboring:
		v = 0.6
	case relationship.Hybrid:
		v = 0.4
	default:
		v = 0.1
	}
	return &v
}
