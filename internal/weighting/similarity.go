package weighting

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dmaslov/skillfit/internal/ai"
)

type similarityKey struct {
	phraseA string
	phraseB string
}

// SimilarityEvaluator rates the semantic similarity of a requirement phrase
// and a matched skill name through the judge. Unlike the other evaluators it
// has no default: when the judge is unavailable the signal is simply absent,
// and the confidence scorer renormalizes without it.
type SimilarityEvaluator struct {
	judge   ai.Judge
	timeout time.Duration
	logger  *zap.Logger

	mu    sync.Mutex
	cache map[similarityKey]float64
}

// NewSimilarityEvaluator creates the evaluator. judge may be nil.
func NewSimilarityEvaluator(judge ai.Judge, timeout time.Duration, logger *zap.Logger) *SimilarityEvaluator {
	if timeout <= 0 {
		timeout = defaultJudgeTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SimilarityEvaluator{
		judge:   judge,
		timeout: timeout,
		logger:  logger,
		cache:   make(map[similarityKey]float64),
	}
}

// Evaluate returns the judged similarity for the ordered phrase pair. The
// second return value reports whether a judgment was available; judge errors
// yield (0, false) and the pair is retried on the next run rather than
// cached as a failure.
func (e *SimilarityEvaluator) Evaluate(ctx context.Context, phraseA, phraseB string) (float64, bool) {
	if e.judge == nil {
		return 0, false
	}

	key := similarityKey{phraseA: phraseA, phraseB: phraseB}

	e.mu.Lock()
	if cached, ok := e.cache[key]; ok {
		e.mu.Unlock()
		return cached, true
	}
	e.mu.Unlock()

	judgeCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	score, err := e.judge.JudgeSimilarity(judgeCtx, phraseA, phraseB)
	if err != nil {
		e.logger.Warn("similarity judgment unavailable",
			zap.String("phrase_a", phraseA),
			zap.String("phrase_b", phraseB),
			zap.Error(err),
		)
		return 0, false
	}

	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}

	e.mu.Lock()
	e.cache[key] = score
	e.mu.Unlock()

	return score, true
}
