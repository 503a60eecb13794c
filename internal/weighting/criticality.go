package weighting

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dmaslov/skillfit/internal/ai"
)

const defaultJudgeTimeout = 30 * time.Second

// fallbackCriticality is the documented default when the judge is
// unavailable: neither a must-have nor a throwaway.
var fallbackCriticality = Criticality{
	Score:          0.5,
	Classification: Important,
	Degraded:       true,
}

type criticalityKey struct {
	jobTitle    string
	requirement string
}

// CriticalityEvaluator judges how indispensable each requirement is.
// Verdicts are cached per (job title, requirement) pair so a run never asks
// the judge the same question twice.
type CriticalityEvaluator struct {
	judge   ai.Judge
	timeout time.Duration
	logger  *zap.Logger

	mu           sync.Mutex
	cache        map[criticalityKey]Criticality
	degradations int
}

// NewCriticalityEvaluator creates the evaluator. judge may be nil, in which
// case every requirement gets the fallback weight.
func NewCriticalityEvaluator(judge ai.Judge, timeout time.Duration, logger *zap.Logger) *CriticalityEvaluator {
	if timeout <= 0 {
		timeout = defaultJudgeTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CriticalityEvaluator{
		judge:   judge,
		timeout: timeout,
		logger:  logger,
		cache:   make(map[criticalityKey]Criticality),
	}
}

// Evaluate returns the requirement's criticality weight. It never fails:
// judge errors and timeouts degrade to the 0.5/IMPORTANT default, logged and
// counted so quality reports can surface the degradation.
func (e *CriticalityEvaluator) Evaluate(ctx context.Context, jobTitle, jobDescription, requirement string) Criticality {
	key := criticalityKey{jobTitle: jobTitle, requirement: requirement}

	e.mu.Lock()
	if cached, ok := e.cache[key]; ok {
		e.mu.Unlock()
		return cached
	}
	e.mu.Unlock()

	result := e.judgeOnce(ctx, jobTitle, jobDescription, requirement)

	e.mu.Lock()
	e.cache[key] = result
	if result.Degraded {
		e.degradations++
	}
	e.mu.Unlock()

	return result
}

func (e *CriticalityEvaluator) judgeOnce(ctx context.Context, jobTitle, jobDescription, requirement string) Criticality {
	if e.judge == nil {
		return fallbackCriticality
	}

	judgeCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	verdict, err := e.judge.JudgeCriticality(judgeCtx, jobTitle, jobDescription, requirement)
	if err != nil {
		e.logger.Warn("criticality judgment degraded to default",
			zap.String("requirement", requirement),
			zap.Error(err),
		)
		return fallbackCriticality
	}

	score := verdict.Score
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}

	return Criticality{
		Score:          score,
		Classification: Classify(score),
		Reason:         verdict.Reason,
	}
}

// Degradations returns how many requirements fell back to the default.
func (e *CriticalityEvaluator) Degradations() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.degradations
}
