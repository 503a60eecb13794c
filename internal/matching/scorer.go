package matching

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/dmaslov/skillfit/internal/relationship"
	"github.com/dmaslov/skillfit/internal/skills"
	"github.com/dmaslov/skillfit/internal/weighting"
)

// Base match-strength tiers per relationship type. UNRELATED keeps a small
// residual credit for raw semantic overlap, capped low so it can never
// paper over a real gap.
const (
	tierExact       = 1.0
	tierSubset      = 0.8
	tierSuperset    = 0.7
	tierNeighboring = 0.5
	tierHybrid      = 0.4
	tierResidual    = 0.1

	// criticalMissCap is the ceiling applied to the overall score when any
	// CRITICAL requirement has zero effective strength: a single missing
	// must-have cannot be outweighed by many nice-to-haves.
	criticalMissCap = 0.5

	// biasMargin is how far below an acquisition gate the conservative
	// bias reaches.
	biasMargin = 0.05
)

// ScorerDeps aggregates the collaborators a Scorer needs. Similarity is
// optional; when absent the model-confidence signal is omitted and the
// confidence score renormalizes without it.
type ScorerDeps struct {
	Snapshot    *skills.Snapshot
	Resolver    *skills.Resolver
	Classifier  relationship.Classifier
	Criticality *weighting.CriticalityEvaluator
	Acquisition *weighting.AcquisitionEvaluator
	Similarity  *weighting.SimilarityEvaluator
	Logger      *zap.Logger
}

// Scorer turns a job plus candidate skills into an overall fit score with a
// per-requirement breakdown.
type Scorer struct {
	cfg  Config
	deps *ScorerDeps
}

// NewScorer creates a scorer over a store snapshot.
func NewScorer(cfg Config, deps *ScorerDeps) *Scorer {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Scorer{cfg: cfg, deps: deps}
}

// Score evaluates every requirement against the candidate skills. Empty
// inputs yield a zero score and no matches; no per-requirement failure is
// fatal, since the pipeline needs a score for every job.
func (s *Scorer) Score(ctx context.Context, job *Job, candidateSkills []string) (*Result, error) {
	if job == nil || len(job.Requirements) == 0 || len(candidateSkills) == 0 {
		return &Result{OverallScore: 0.0, Matches: []MatchRecord{}}, nil
	}

	candidates := s.resolveCandidates(candidateSkills)

	var weightedSum, weightSum float64
	criticalMissing := false
	records := make([]MatchRecord, 0, len(job.Requirements))

	for _, requirement := range job.Requirements {
		record := s.scoreRequirement(ctx, job, requirement, candidates)
		records = append(records, record)

		s.deps.Logger.Debug("requirement scored",
			zap.String("requirement", record.Requirement),
			zap.String("matched_skill", record.MatchedSkill),
			zap.String("relationship", string(record.Relationship)),
			zap.Float64("match_strength", record.MatchStrength),
			zap.Float64("effective_strength", record.EffectiveStrength),
			zap.String("criticality", string(record.Criticality.Classification)),
			zap.Bool("blacklisted", record.Blacklisted),
		)

		if record.Blacklisted {
			continue
		}

		weight := record.Criticality.Score
		weightedSum += weight * record.EffectiveStrength
		weightSum += weight

		if record.Criticality.Classification == weighting.Critical && record.EffectiveStrength == 0 {
			criticalMissing = true
		}
	}

	overall := 0.0
	if weightSum > 0 {
		overall = weightedSum / weightSum
	}
	if criticalMissing && overall > criticalMissCap {
		overall = criticalMissCap
	}

	result := &Result{
		OverallScore:    clamp01(overall),
		Matches:         records,
		CriticalMissing: criticalMissing,
		Degradations:    s.deps.Criticality.Degradations() + s.deps.Acquisition.Degradations(),
	}

	s.deps.Logger.Info("job scored",
		zap.String("job_title", job.Title),
		zap.Float64("overall_score", result.OverallScore),
		zap.Int("requirements", len(records)),
		zap.Bool("critical_missing", criticalMissing),
	)

	return result, nil
}

// scoreRequirement finds the best candidate for one requirement and applies
// the weighting gates.
func (s *Scorer) scoreRequirement(ctx context.Context, job *Job, requirement Requirement, candidates []*skills.Skill) MatchRecord {
	reqName := s.deps.Resolver.Resolve(requirement.Text)
	reqSkill := s.deps.Snapshot.GetOrEmpty(reqName)

	best, bestEntry := s.bestCandidate(reqSkill, candidates)

	record := MatchRecord{
		Requirement: requirement.Text,
		Blacklisted: requirement.Blacklisted,
		Criticality: s.deps.Criticality.Evaluate(ctx, job.Title, job.Description, requirement.Text),
		Acquisition: s.deps.Acquisition.Evaluate(ctx, job.Title, requirement.Text),
	}

	if best == nil || bestEntry.Similarity <= 0 {
		// No candidate clears similarity zero: record the requirement as
		// unmatched rather than dropping it.
		record.Relationship = relationship.Unrelated
		record.Confidence = 0
		record.ConfidenceLabel = Label(0)
		return record
	}

	record.MatchedSkill = best.Name
	record.Matched = true
	record.Relationship = bestEntry.Type
	record.Similarity = bestEntry.Similarity
	record.MatchStrength = s.tierStrength(bestEntry)

	record.EffectiveStrength = record.MatchStrength
	gate := record.Acquisition.MatchThreshold
	if s.cfg.ConservativeBias {
		gate += biasMargin
	}
	if record.MatchStrength < gate {
		// The gap is real: keep the raw strength for transparency but give
		// it no scoring credit.
		record.EffectiveStrength = 0
	}

	embedding := bestEntry.Similarity
	signals := Signals{
		MatchPercentage: record.MatchStrength,
		Embedding:       &embedding,
		BucketRelevance: bucketRelevance(bestEntry.Type),
	}
	if s.deps.Similarity != nil {
		if score, ok := s.deps.Similarity.Evaluate(ctx, requirement.Text, best.Name); ok {
			signals.ModelConfidence = &score
		}
	}
	record.Confidence = Confidence(signals)
	record.ConfidenceLabel = Label(record.Confidence)

	return record
}

// bestCandidate returns the strongest candidate skill, breaking ties by
// lexical order of the skill name for reproducibility.
func (s *Scorer) bestCandidate(reqSkill *skills.Skill, candidates []*skills.Skill) (*skills.Skill, *relationship.Entry) {
	var best *skills.Skill
	var bestEntry *relationship.Entry
	bestStrength := -1.0

	for _, candidate := range candidates {
		entry := s.deps.Classifier.Classify(reqSkill, candidate)
		strength := s.tierStrength(entry)

		switch {
		case strength > bestStrength:
		case strength == bestStrength && best != nil && candidate.Name < best.Name:
		default:
			continue
		}

		best = candidate
		bestEntry = entry
		bestStrength = strength
	}

	return best, bestEntry
}

// tierStrength maps a relationship entry to its base match strength.
func (s *Scorer) tierStrength(entry *relationship.Entry) float64 {
	switch entry.Type {
	case relationship.ExactMatch:
		return tierExact
	case relationship.Subset:
		return tierSubset
	case relationship.Superset:
		return tierSuperset
	case relationship.Neighboring:
		return tierNeighboring
	case relationship.Hybrid:
		if entry.Similarity < s.cfg.MinDomainOverlap {
			// Not enough cross-domain overlap to trust the tier: only the
			// residual floor remains.
			return tierResidual
		}
		return tierHybrid
	default:
		if entry.Similarity <= 0 {
			return 0
		}
		return residual(entry.Similarity)
	}
}

func residual(similarity float64) float64 {
	if similarity > tierResidual {
		return similarity
	}
	return tierResidual
}

// resolveCandidates maps candidate phrases through the synonym layer and
// the snapshot, deduplicates, and sorts for deterministic iteration.
func (s *Scorer) resolveCandidates(candidateSkills []string) []*skills.Skill {
	seen := make(map[string]struct{}, len(candidateSkills))
	out := make([]*skills.Skill, 0, len(candidateSkills))

	for _, phrase := range candidateSkills {
		name := s.deps.Resolver.Resolve(phrase)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, s.deps.Snapshot.GetOrEmpty(name))
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
