package weighting

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dmaslov/skillfit/internal/ai"
)

type acquisitionKey struct {
	jobTitle    string
	requirement string
}

// AcquisitionEvaluator estimates how long closing a gap in each requirement
// would take. Same caching and degradation contract as the criticality
// evaluator; the documented fallback bucket is MEDIUM.
type AcquisitionEvaluator struct {
	judge   ai.Judge
	timeout time.Duration
	logger  *zap.Logger

	mu           sync.Mutex
	cache        map[acquisitionKey]Acquisition
	degradations int
}

// NewAcquisitionEvaluator creates the evaluator. judge may be nil.
func NewAcquisitionEvaluator(judge ai.Judge, timeout time.Duration, logger *zap.Logger) *AcquisitionEvaluator {
	if timeout <= 0 {
		timeout = defaultJudgeTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AcquisitionEvaluator{
		judge:   judge,
		timeout: timeout,
		logger:  logger,
		cache:   make(map[acquisitionKey]Acquisition),
	}
}

// Evaluate returns the acquisition-time estimate for the requirement. Judge
// failures degrade to the MEDIUM default.
func (e *AcquisitionEvaluator) Evaluate(ctx context.Context, jobTitle, requirement string) Acquisition {
	key := acquisitionKey{jobTitle: jobTitle, requirement: requirement}

	e.mu.Lock()
	if cached, ok := e.cache[key]; ok {
		e.mu.Unlock()
		return cached
	}
	e.mu.Unlock()

	result := e.judgeOnce(ctx, jobTitle, requirement)

	e.mu.Lock()
	e.cache[key] = result
	if result.Degraded {
		e.degradations++
	}
	e.mu.Unlock()

	return result
}

func (e *AcquisitionEvaluator) judgeOnce(ctx context.Context, jobTitle, requirement string) Acquisition {
	fallback := AcquisitionFor(Medium)
	fallback.Degraded = true

	if e.judge == nil {
		return fallback
	}

	judgeCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	verdict, err := e.judge.JudgeAcquisitionTime(judgeCtx, jobTitle, requirement)
	if err != nil {
		e.logger.Warn("acquisition-time judgment degraded to default",
			zap.String("requirement", requirement),
			zap.Error(err),
		)
		return fallback
	}

	estimate := AcquisitionFor(Bucket(verdict.Bucket))
	if verdict.Months > 0 {
		estimate.MonthsEstimate = verdict.Months
	}
	estimate.Reason = verdict.Reason

	return estimate
}

// Degradations returns how many requirements fell back to the default.
func (e *AcquisitionEvaluator) Degradations() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.degradations
}
