package eval

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"modeleval/ml"
)

// EvaluateConcurrent scores up to workers models at a time. Results keep
// registration order and the first failure cancels the remaining models.
func EvaluateConcurrent(ctx context.Context, features mat.Matrix, targets []float64, models *ml.Registry, workers int) (*Results, error) {
	return evaluateConcurrent(ctx, zap.NewNop(), features, targets, models, workers)
}

func evaluateConcurrent(ctx context.Context, logger *zap.Logger, features mat.Matrix, targets []float64, models *ml.Registry, workers int) (*Results, error) {
	if err := checkInputs(features, targets, models); err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = 1
	}

	names := models.Names()
	slots := make([]Result, len(names))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, name := range names {
		model, _ := models.Get(name)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result, err := score(name, model, features, targets)
			if err != nil {
				logger.Error("model evaluation failed", zap.String("model", name), zap.Error(err))
				return err
			}
			logResult(logger, result)
			slots[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := newResults(len(slots))
	for _, result := range slots {
		results.add(result)
	}
	return results, nil
}
