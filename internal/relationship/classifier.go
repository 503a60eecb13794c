package relationship

import "github.com/dmaslov/skillfit/internal/skills"

// Similarity weights for the three enrichment sets.
const (
	knowledgeWeight = 0.4
	contextWeight   = 0.3
	functionWeight  = 0.3
)

// Classification thresholds over the weighted similarity.
const (
	exactThreshold       = 0.9
	containmentThreshold = 0.7
	neighborThreshold    = 0.5
)

// Strategy computes a relationship entry for an ordered skill pair. The
// second return value reports whether the strategy could produce a
// meaningful answer; a Chain tries its strategies in order until one can.
type Strategy interface {
	Name() string
	Classify(a, b *skills.Skill) (*Entry, bool)
}

// EnrichmentClassifier is the primary strategy: weighted Jaccard similarity
// over the knowledge/context/function sets plus a same-domain check.
type EnrichmentClassifier struct{}

// NewEnrichmentClassifier creates the enrichment-based strategy.
func NewEnrichmentClassifier() *EnrichmentClassifier {
	return &EnrichmentClassifier{}
}

func (c *EnrichmentClassifier) Name() string { return "enrichment" }

// Classify computes the weighted similarity and relationship type. It
// declines (returns false) when neither skill carries enrichment, leaving
// room for a fallback strategy.
func (c *EnrichmentClassifier) Classify(a, b *skills.Skill) (*Entry, bool) {
	if a == nil || b == nil {
		return nil, false
	}
	if !a.Enriched() && !b.Enriched() {
		return nil, false
	}

	similarity := knowledgeWeight*jaccard(a.KnowledgeComponents, b.KnowledgeComponents) +
		contextWeight*jaccard(a.Contexts, b.Contexts) +
		functionWeight*jaccard(a.Functions, b.Functions)

	return &Entry{
		SkillA:     a.Name,
		SkillB:     b.Name,
		Type:       classifyPair(a, b, similarity),
		Similarity: similarity,
	}, true
}

// classifyPair assigns the relationship type from the similarity score and
// the same-domain flag. The flag is plain category equality, so two skills
// that both lack a category count as same-domain: their component overlap is
// the only evidence available and it should not be discounted to HYBRID.
//
// The SUBSET/SUPERSET tie-break compares total enrichment-component counts:
// whichever skill has more components is taken as the SUPERSET. This is a
// known approximation rather than a semantic guarantee: a narrowly but
// deeply enriched skill can be labeled a subset of a broadly but shallowly
// enriched one.
func classifyPair(a, b *skills.Skill, similarity float64) Type {
	sameDomain := a.Category == b.Category

	switch {
	case similarity >= exactThreshold:
		return ExactMatch
	case sameDomain && similarity >= containmentThreshold:
		if a.TotalComponents() > b.TotalComponents() {
			return Superset
		}
		return Subset
	case sameDomain && similarity >= neighborThreshold:
		return Neighboring
	case !sameDomain && similarity >= neighborThreshold:
		return Hybrid
	default:
		return Unrelated
	}
}

// jaccard computes |A ∩ B| / |A ∪ B| over two string sets. An empty side
// yields 0.0, never a division error.
func jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	setA := make(map[string]struct{}, len(a))
	for _, v := range a {
		setA[v] = struct{}{}
	}

	union := make(map[string]struct{}, len(a)+len(b))
	for v := range setA {
		union[v] = struct{}{}
	}

	intersection := 0
	for _, v := range b {
		if _, seen := union[v]; !seen {
			union[v] = struct{}{}
			continue
		}
		if _, inA := setA[v]; inA {
			// Count each shared value once even if b repeats it.
			delete(setA, v)
			intersection++
		}
	}

	return float64(intersection) / float64(len(union))
}

// Classifier answers relationship queries for skill pairs. Chain is the
// plain implementation; CachedClassifier adds a cache in front of one.
type Classifier interface {
	Classify(a, b *skills.Skill) *Entry
}

// Chain tries strategies in priority order at call time. The order is
// configured explicitly by the caller; nothing is detected at import time.
type Chain struct {
	strategies []Strategy
}

// NewChain builds a strategy chain. The default engine chain is the
// enrichment classifier followed by the lexical fallback.
func NewChain(strategies ...Strategy) *Chain {
	return &Chain{strategies: strategies}
}

// Classify runs the chain. When a skill is missing or no strategy can
// answer, the pair is reported UNRELATED with similarity 0.0 rather than
// failing: unknown skills are routine and must not abort a matching run.
func (c *Chain) Classify(a, b *skills.Skill) *Entry {
	if a != nil && b != nil {
		for _, s := range c.strategies {
			if entry, ok := s.Classify(a, b); ok {
				return entry
			}
		}
	}

	entry := &Entry{Type: Unrelated, Similarity: 0.0}
	if a != nil {
		entry.SkillA = a.Name
	}
	if b != nil {
		entry.SkillB = b.Name
	}
	return entry
}

// IsValidMatch reports whether the pair's similarity clears the threshold.
// This is the guard that keeps generic terms ("automation") from bridging
// unrelated domains.
func (c *Chain) IsValidMatch(a, b *skills.Skill, threshold float64) bool {
	return c.Classify(a, b).Similarity >= threshold
}
