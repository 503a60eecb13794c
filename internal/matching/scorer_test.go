package matching

import (
	"context"
	"errors"
	"math"
	"testing"

	"go.uber.org/zap"

	"github.com/dmaslov/skillfit/internal/ai"
	"github.com/dmaslov/skillfit/internal/relationship"
	"github.com/dmaslov/skillfit/internal/skills"
	"github.com/dmaslov/skillfit/internal/weighting"
)

// stubJudge answers criticality and acquisition per requirement text.
// Similarity judgments are unavailable unless a value is set.
type stubJudge struct {
	criticality map[string]float64
	buckets     map[string]string
	similarity  *float64
}

func (s *stubJudge) JudgeCriticality(ctx context.Context, jobTitle, jobDescription, requirement string) (*ai.CriticalityVerdict, error) {
	score, ok := s.criticality[requirement]
	if !ok {
		score = 0.5
	}
	return &ai.CriticalityVerdict{Score: score}, nil
}

func (s *stubJudge) JudgeAcquisitionTime(ctx context.Context, jobTitle, requirement string) (*ai.AcquisitionVerdict, error) {
	bucket, ok := s.buckets[requirement]
	if !ok {
		bucket = "SHORT"
	}
	return &ai.AcquisitionVerdict{Bucket: bucket}, nil
}

func (s *stubJudge) JudgeSimilarity(ctx context.Context, phraseA, phraseB string) (float64, error) {
	if s.similarity == nil {
		return 0, errors.New("similarity unavailable")
	}
	return *s.similarity, nil
}

func testStore(t *testing.T) *skills.Store {
	t.Helper()

	store := skills.NewStore()
	for _, skill := range []*skills.Skill{
		{
			Name:                "Go",
			Category:            "Software Engineering",
			KnowledgeComponents: []string{"goroutines", "interfaces", "testing"},
			Contexts:            []string{"backend services"},
			Functions:           []string{"build services"},
		},
		{
			Name:                "Kubernetes",
			Category:            "Software Engineering",
			KnowledgeComponents: []string{"pods", "controllers", "helm"},
			Contexts:            []string{"cloud infrastructure"},
			Functions:           []string{"operate clusters"},
		},
		{
			Name:                "Terraform",
			Category:            "Software Engineering",
			KnowledgeComponents: []string{"hcl", "state", "providers"},
			Contexts:            []string{"cloud infrastructure"},
			Functions:           []string{"provision infrastructure"},
		},
		{
			Name:                "Service Mesh",
			Category:            "Software Engineering",
			KnowledgeComponents: []string{"sidecars", "mtls", "routing", "retries", "telemetry"},
			Contexts:            []string{"microservices", "traffic management", "security"},
			Functions:           []string{"route traffic", "secure traffic"},
		},
		{
			Name:                "Istio",
			Category:            "Software Engineering",
			KnowledgeComponents: []string{"sidecars", "mtls", "routing", "retries"},
			Contexts:            []string{"microservices"},
			Functions:           []string{"route traffic"},
		},
	} {
		if err := store.Upsert(skill); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	return store
}

func newTestScorer(t *testing.T, cfg Config, judge ai.Judge) *Scorer {
	t.Helper()

	store := testStore(t)
	snapshot := store.Snapshot()

	names := make([]string, 0, snapshot.Len())
	for _, skill := range snapshot.All() {
		names = append(names, skill.Name)
	}

	return NewScorer(cfg, &ScorerDeps{
		Snapshot:    snapshot,
		Resolver:    skills.NewResolver(names, nil),
		Classifier:  relationship.NewChain(relationship.NewEnrichmentClassifier(), relationship.NewLexicalClassifier()),
		Criticality: weighting.NewCriticalityEvaluator(judge, 0, zap.NewNop()),
		Acquisition: weighting.NewAcquisitionEvaluator(judge, 0, zap.NewNop()),
		Similarity:  weighting.NewSimilarityEvaluator(judge, 0, zap.NewNop()),
		Logger:      zap.NewNop(),
	})
}

func TestScoreExactMatch(t *testing.T) {
	judge := &stubJudge{criticality: map[string]float64{"Go": 0.8}}
	scorer := newTestScorer(t, DefaultConfig(), judge)

	job := &Job{Title: "Backend Engineer", Requirements: []Requirement{{Text: "Go"}}}
	result, err := scorer.Score(context.Background(), job, []string{"go"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.OverallScore != 1.0 {
		t.Fatalf("overall = %v, want 1.0", result.OverallScore)
	}
	if len(result.Matches) != 1 {
		t.Fatalf("expected 1 record, got %d", len(result.Matches))
	}

	record := result.Matches[0]
	if !record.Matched || record.MatchedSkill != "Go" {
		t.Fatalf("unexpected record: %+v", record)
	}
	if record.Relationship != relationship.ExactMatch || record.MatchStrength != 1.0 {
		t.Fatalf("unexpected record: %+v", record)
	}
	if record.Criticality.Classification != weighting.Critical {
		t.Fatalf("criticality = %s, want CRITICAL", record.Criticality.Classification)
	}
	if record.ConfidenceLabel != "Very High" {
		t.Fatalf("confidence label = %q (score %v)", record.ConfidenceLabel, record.Confidence)
	}
}

func TestScoreEmptyInputs(t *testing.T) {
	scorer := newTestScorer(t, DefaultConfig(), &stubJudge{})

	for _, tc := range []struct {
		name       string
		job        *Job
		candidates []string
	}{
		{"nil job", nil, []string{"Go"}},
		{"no requirements", &Job{Title: "x"}, []string{"Go"}},
		{"no candidates", &Job{Title: "x", Requirements: []Requirement{{Text: "Go"}}}, nil},
	} {
		result, err := scorer.Score(context.Background(), tc.job, tc.candidates)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if result.OverallScore != 0.0 {
			t.Fatalf("%s: overall = %v, want 0.0", tc.name, result.OverallScore)
		}
		if result.Matches == nil || len(result.Matches) != 0 {
			t.Fatalf("%s: matches = %v, want empty", tc.name, result.Matches)
		}
	}
}

func TestScoreCriticalMissingCapsScore(t *testing.T) {
	judge := &stubJudge{criticality: map[string]float64{
		"Tax Law":    0.8,
		"Go":         0.3,
		"Kubernetes": 0.3,
		"Terraform":  0.3,
	}}
	scorer := newTestScorer(t, DefaultConfig(), judge)

	job := &Job{
		Title: "Platform Engineer",
		Requirements: []Requirement{
			{Text: "Tax Law"},
			{Text: "Go"},
			{Text: "Kubernetes"},
			{Text: "Terraform"},
		},
	}
	result, err := scorer.Score(context.Background(), job, []string{"Go", "Kubernetes", "Terraform"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.CriticalMissing {
		t.Fatalf("expected critical-missing flag")
	}
	// Uncapped: (0.3*3)/(0.8+0.9) ≈ 0.529, over the cap.
	if result.OverallScore != 0.5 {
		t.Fatalf("overall = %v, want the 0.5 cap", result.OverallScore)
	}

	missing := result.Matches[0]
	if missing.Matched || missing.MatchedSkill != "" || missing.EffectiveStrength != 0 {
		t.Fatalf("unexpected unmatched record: %+v", missing)
	}
	if missing.Relationship != relationship.Unrelated {
		t.Fatalf("unmatched relationship = %s, want %s", missing.Relationship, relationship.Unrelated)
	}
}

func TestScoreBlacklistedExcluded(t *testing.T) {
	judge := &stubJudge{criticality: map[string]float64{
		"strong communicator": 0.9,
		"Go":                  0.8,
	}}
	scorer := newTestScorer(t, DefaultConfig(), judge)

	job := &Job{
		Title: "Backend Engineer",
		Requirements: []Requirement{
			{Text: "strong communicator", Blacklisted: true},
			{Text: "Go"},
		},
	}
	result, err := scorer.Score(context.Background(), job, []string{"Go"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The blacklisted requirement would be a missing CRITICAL; excluded, the
	// remaining exact match scores 1.0 and no critical flag is raised.
	if result.OverallScore != 1.0 {
		t.Fatalf("overall = %v, want 1.0", result.OverallScore)
	}
	if result.CriticalMissing {
		t.Fatalf("blacklisted requirement raised the critical flag")
	}
	if len(result.Matches) != 2 {
		t.Fatalf("blacklisted requirement missing from the breakdown")
	}
	if !result.Matches[0].Blacklisted {
		t.Fatalf("expected blacklist marker on record: %+v", result.Matches[0])
	}
}

func TestScoreAcquisitionGate(t *testing.T) {
	judge := &stubJudge{
		criticality: map[string]float64{"Service Mesh": 0.5},
		buckets:     map[string]string{"Service Mesh": "LONG"},
	}
	scorer := newTestScorer(t, DefaultConfig(), judge)

	job := &Job{Title: "Platform Engineer", Requirements: []Requirement{{Text: "Service Mesh"}}}
	result, err := scorer.Score(context.Background(), job, []string{"Istio"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	record := result.Matches[0]
	if record.Relationship != relationship.Neighboring {
		t.Fatalf("relationship = %s (similarity %v), want %s", record.Relationship, record.Similarity, relationship.Neighboring)
	}
	// NEIGHBORING strength 0.5 does not clear the LONG gate of 0.7. The raw
	// strength stays visible, the scoring credit does not.
	if record.MatchStrength != 0.5 || record.EffectiveStrength != 0 {
		t.Fatalf("unexpected strengths: %+v", record)
	}
	if result.OverallScore != 0.0 {
		t.Fatalf("overall = %v, want 0.0", result.OverallScore)
	}
}

func TestScoreConservativeBias(t *testing.T) {
	judge := &stubJudge{
		criticality: map[string]float64{"Service Mesh": 0.5},
		buckets:     map[string]string{"Service Mesh": "MEDIUM"},
	}
	job := &Job{Title: "Platform Engineer", Requirements: []Requirement{{Text: "Service Mesh"}}}

	// NEIGHBORING strength 0.5 exactly meets the MEDIUM gate of 0.5.
	scorer := newTestScorer(t, DefaultConfig(), judge)
	result, err := scorer.Score(context.Background(), job, []string{"Istio"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Matches[0].EffectiveStrength != 0.5 {
		t.Fatalf("effective = %v, want 0.5", result.Matches[0].EffectiveStrength)
	}

	// The bias pushes the gate to 0.55 and the same match loses its credit.
	cfg := DefaultConfig()
	cfg.ConservativeBias = true
	scorer = newTestScorer(t, cfg, judge)
	result, err = scorer.Score(context.Background(), job, []string{"Istio"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Matches[0].EffectiveStrength != 0 {
		t.Fatalf("effective = %v, want 0 under conservative bias", result.Matches[0].EffectiveStrength)
	}
}

func TestScoreTieBreakIsLexical(t *testing.T) {
	store := skills.NewStore()
	shared := &skills.Skill{
		Category:            "Software Engineering",
		KnowledgeComponents: []string{"goroutines", "interfaces"},
		Contexts:            []string{"backend services"},
		Functions:           []string{"build services"},
	}
	for _, name := range []string{"Go", "Beta Go", "Alpha Go"} {
		skill := shared.Clone()
		skill.Name = name
		if err := store.Upsert(skill); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	snapshot := store.Snapshot()
	judge := &stubJudge{}
	scorer := NewScorer(DefaultConfig(), &ScorerDeps{
		Snapshot:    snapshot,
		Resolver:    skills.NewResolver([]string{"Go", "Beta Go", "Alpha Go"}, nil),
		Classifier:  relationship.NewChain(relationship.NewEnrichmentClassifier()),
		Criticality: weighting.NewCriticalityEvaluator(judge, 0, zap.NewNop()),
		Acquisition: weighting.NewAcquisitionEvaluator(judge, 0, zap.NewNop()),
	})

	job := &Job{Title: "Backend Engineer", Requirements: []Requirement{{Text: "Go"}}}
	result, err := scorer.Score(context.Background(), job, []string{"Beta Go", "Alpha Go"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Both candidates are exact matches; the lexically first name wins so
	// repeated runs produce the same breakdown.
	if got := result.Matches[0].MatchedSkill; got != "Alpha Go" {
		t.Fatalf("matched skill = %q, want %q", got, "Alpha Go")
	}
}

func TestScoreMinDomainOverlapStripsHybrid(t *testing.T) {
	store := skills.NewStore()
	a := &skills.Skill{
		Name:                "Data Pipelines",
		Category:            "Data Engineering",
		KnowledgeComponents: []string{"batching", "scheduling", "orchestration", "lineage", "backfills"},
		Contexts:            []string{"analytics", "warehousing", "etl"},
		Functions:           []string{"move data", "transform data"},
	}
	b := &skills.Skill{
		Name:                "CI Pipelines",
		Category:            "Software Engineering",
		KnowledgeComponents: []string{"batching", "scheduling", "orchestration", "lineage"},
		Contexts:            []string{"analytics"},
		Functions:           []string{"move data"},
	}
	for _, skill := range []*skills.Skill{a, b} {
		if err := store.Upsert(skill); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	judge := &stubJudge{criticality: map[string]float64{"Data Pipelines": 0.5}}
	newScorer := func(cfg Config) *Scorer {
		return NewScorer(cfg, &ScorerDeps{
			Snapshot:    store.Snapshot(),
			Resolver:    skills.NewResolver([]string{"Data Pipelines", "CI Pipelines"}, nil),
			Classifier:  relationship.NewChain(relationship.NewEnrichmentClassifier()),
			Criticality: weighting.NewCriticalityEvaluator(judge, 0, zap.NewNop()),
			Acquisition: weighting.NewAcquisitionEvaluator(judge, 0, zap.NewNop()),
		})
	}
	job := &Job{Title: "Data Engineer", Requirements: []Requirement{{Text: "Data Pipelines"}}}

	// Similarity ≈ 0.57: HYBRID keeps its 0.4 tier under the default overlap
	// floor of 0.5.
	result, err := newScorer(DefaultConfig()).Score(context.Background(), job, []string{"CI Pipelines"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	record := result.Matches[0]
	if record.Relationship != relationship.Hybrid {
		t.Fatalf("relationship = %s (similarity %v), want %s", record.Relationship, record.Similarity, relationship.Hybrid)
	}
	if math.Abs(record.MatchStrength-0.4) > 1e-9 {
		t.Fatalf("strength = %v, want 0.4", record.MatchStrength)
	}

	// Raising the floor above the similarity strips the tier credit down to
	// the residual.
	cfg := DefaultConfig()
	cfg.MinDomainOverlap = 0.8
	result, err = newScorer(cfg).Score(context.Background(), job, []string{"CI Pipelines"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := result.Matches[0].MatchStrength; math.Abs(got-0.1) > 1e-9 {
		t.Fatalf("strength = %v, want the 0.1 residual", got)
	}
}

func TestScoreModelConfidenceSignal(t *testing.T) {
	similarity := 0.5
	judge := &stubJudge{
		criticality: map[string]float64{"Go": 0.8},
		similarity:  &similarity,
	}
	scorer := newTestScorer(t, DefaultConfig(), judge)

	job := &Job{Title: "Backend Engineer", Requirements: []Requirement{{Text: "Go"}}}
	result, err := scorer.Score(context.Background(), job, []string{"Go"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// match 1.0, embedding 1.0, bucket 1.0, model 0.5 over the present
	// weights 0.9.
	record := result.Matches[0]
	want := (0.4 + 0.2 + 0.1 + 0.2*similarity) / 0.9
	if math.Abs(record.Confidence-want) > 1e-9 {
		t.Fatalf("confidence = %v, want %v", record.Confidence, want)
	}
	if record.ConfidenceLabel != "High" {
		t.Fatalf("confidence label = %q", record.ConfidenceLabel)
	}
}

func TestScoreClassifiesThroughCache(t *testing.T) {
	store := testStore(t)
	snapshot := store.Snapshot()

	names := make([]string, 0, snapshot.Len())
	for _, skill := range snapshot.All() {
		names = append(names, skill.Name)
	}

	// Seed the cache with a row contradicting the enrichment. The scorer
	// must answer from the cache, not recompute.
	cache := relationship.NewMemoryCache()
	cache.Put("Go", "Kubernetes",
		snapshot.GetOrEmpty("Go").EnrichmentHash(),
		snapshot.GetOrEmpty("Kubernetes").EnrichmentHash(),
		&relationship.Entry{SkillA: "Go", SkillB: "Kubernetes", Type: relationship.ExactMatch, Similarity: 1.0},
	)

	chain := relationship.NewChain(relationship.NewEnrichmentClassifier())
	judge := &stubJudge{}
	scorer := NewScorer(DefaultConfig(), &ScorerDeps{
		Snapshot:    snapshot,
		Resolver:    skills.NewResolver(names, nil),
		Classifier:  relationship.NewCachedClassifier(chain, cache),
		Criticality: weighting.NewCriticalityEvaluator(judge, 0, zap.NewNop()),
		Acquisition: weighting.NewAcquisitionEvaluator(judge, 0, zap.NewNop()),
	})

	job := &Job{Title: "Backend Engineer", Requirements: []Requirement{{Text: "Go"}}}
	result, err := scorer.Score(context.Background(), job, []string{"Kubernetes"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	record := result.Matches[0]
	if record.Relationship != relationship.ExactMatch || record.MatchedSkill != "Kubernetes" {
		t.Fatalf("cached row ignored: %+v", record)
	}

	// Uncached pairs get computed and stored for the next run.
	job = &Job{Title: "Backend Engineer", Requirements: []Requirement{{Text: "Terraform"}}}
	if _, err := scorer.Score(context.Background(), job, []string{"Terraform"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cache.Len() != 2 {
		t.Fatalf("expected 2 cached rows, got %d", cache.Len())
	}
}

func TestResolveCandidatesDedupes(t *testing.T) {
	scorer := newTestScorer(t, DefaultConfig(), &stubJudge{})

	candidates := scorer.resolveCandidates([]string{"Go", "go", " GO ", "Kubernetes", ""})
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
	if candidates[0].Name != "Go" || candidates[1].Name != "Kubernetes" {
		t.Fatalf("unexpected candidates: %q, %q", candidates[0].Name, candidates[1].Name)
	}
}
