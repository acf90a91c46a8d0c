package calculation

import (
	"context"
	"fmt"
	"runtime"

	"github.com/rgehrsitz/payrate/internal/domain"
	"golang.org/x/sync/errgroup"
)

// LineError ties a failed batch line back to its position and caller
// reference.
type LineError struct {
	Line      int
	Reference string
	Err       error
}

func (e *LineError) Error() string {
	if e.Reference != "" {
		return fmt.Sprintf("line %d (%s): %v", e.Line, e.Reference, e.Err)
	}
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// BatchEvaluator evaluates many compensation bases, e.g. one payroll run,
// against a single snapshot.
type BatchEvaluator struct {
	engine *Engine
	limit  int
}

// NewBatchEvaluator creates a batch evaluator running at most limit
// evaluations at once. A limit below one uses GOMAXPROCS.
func NewBatchEvaluator(engine *Engine, limit int) *BatchEvaluator {
	if limit < 1 {
		limit = runtime.GOMAXPROCS(0)
	}
	return &BatchEvaluator{engine: engine, limit: limit}
}

// EvaluateAll evaluates every basis and returns the evaluations in input
// order. The first mandatory failure cancels the remaining lines and is
// returned as a *LineError.
func (b *BatchEvaluator) EvaluateAll(ctx context.Context, bases []domain.CompensationBasis, codes []domain.ComponentCode) ([]domain.Evaluation, error) {
	t, err := b.engine.snapshot()
	if err != nil {
		return nil, err
	}

	results := make([]domain.Evaluation, len(bases))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(b.limit)
	for i, basis := range bases {
		i, basis := i, basis
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			ev, err := b.engine.evaluate(t, basis, codes)
			if err != nil {
				return &LineError{Line: i + 1, Reference: basis.Reference, Err: err}
			}
			results[i] = *ev
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	b.engine.logger.Infof("evaluated %d lines against rate table v%d", len(bases), t.Version())
	return results, nil
}
