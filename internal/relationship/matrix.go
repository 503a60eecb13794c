package relationship

import (
	"context"
	"runtime"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dmaslov/skillfit/internal/skills"
)

const (
	maxMatrixWorkers = 8
	progressEvery    = 1000
)

// PairKey identifies an ordered skill pair in a matrix.
type PairKey struct {
	A, B string
}

// Progress reports incremental matrix-build progress.
type Progress struct {
	Done  int
	Total int
}

// MatrixBuilder computes relationship entries for all ordered pairs of a
// skill set. Pairs are independent, so the build fans out over a bounded
// worker pool; the cache is the only synchronized write target.
type MatrixBuilder struct {
	classifier Classifier
	logger     *zap.Logger

	onProgress func(Progress)
}

// NewMatrixBuilder creates a builder. cache may be nil to disable caching.
func NewMatrixBuilder(chain *Chain, cache Cache, logger *zap.Logger) *MatrixBuilder {
	if logger == nil {
		logger = zap.NewNop()
	}

	var classifier Classifier = chain
	if cache != nil {
		classifier = NewCachedClassifier(chain, cache)
	}
	return &MatrixBuilder{classifier: classifier, logger: logger}
}

// OnProgress registers a callback invoked roughly every progressEvery pairs.
func (m *MatrixBuilder) OnProgress(fn func(Progress)) {
	m.onProgress = fn
}

// Build classifies every ordered pair of distinct skills in the snapshot.
// Hundreds of skills produce tens of thousands of pairs, so progress is
// logged as the build advances.
func (m *MatrixBuilder) Build(ctx context.Context, snapshot *skills.Snapshot) (map[PairKey]*Entry, error) {
	all := snapshot.All()
	total := len(all) * (len(all) - 1)

	result := make(map[PairKey]*Entry, total)
	var resultMu sync.Mutex

	workers := runtime.NumCPU()
	if workers > maxMatrixWorkers {
		workers = maxMatrixWorkers
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	done := 0
	for _, a := range all {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			row := make(map[PairKey]*Entry, len(all)-1)
			for _, b := range all {
				if a.Name == b.Name {
					continue
				}
				row[PairKey{A: a.Name, B: b.Name}] = m.classifier.Classify(a, b)
			}

			resultMu.Lock()
			for k, v := range row {
				result[k] = v
			}
			done += len(row)
			progress := Progress{Done: done, Total: total}
			resultMu.Unlock()

			if m.onProgress != nil && (progress.Done%progressEvery < len(row) || progress.Done == total) {
				m.onProgress(progress)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	m.logger.Info("relationship matrix built",
		zap.Int("skills", len(all)),
		zap.Int("pairs", len(result)),
	)

	return result, nil
}
