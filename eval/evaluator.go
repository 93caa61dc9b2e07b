package eval

import (
	"context"
	"errors"
	"io"
	"math"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"modeleval/ml"
)

var ErrNoModels = errors.New("no models to evaluate")

// Evaluate applies every model in the registry to features, in registration
// order, and scores the predictions against targets. The first error from a
// model or from the metric computation is returned unchanged.
func Evaluate(features mat.Matrix, targets []float64, models *ml.Registry) (*Results, error) {
	return evaluate(zap.NewNop(), features, targets, models)
}

func evaluate(logger *zap.Logger, features mat.Matrix, targets []float64, models *ml.Registry) (*Results, error) {
	if err := checkInputs(features, targets, models); err != nil {
		return nil, err
	}
	results := newResults(models.Len())
	err := models.Each(func(name string, model ml.Regressor) error {
		result, err := score(name, model, features, targets)
		if err != nil {
			logger.Error("model evaluation failed", zap.String("model", name), zap.Error(err))
			return err
		}
		logResult(logger, result)
		results.add(result)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

func checkInputs(features mat.Matrix, targets []float64, models *ml.Registry) error {
	if models.Len() == 0 {
		return ErrNoModels
	}
	if features == nil {
		return errors.New("features are nil")
	}
	rows, _ := features.Dims()
	if rows != len(targets) {
		return ErrDimensionMismatch
	}
	return nil
}

func score(name string, model ml.Regressor, features mat.Matrix, targets []float64) (Result, error) {
	predictions, err := model.Predict(features)
	if err != nil {
		return Result{}, err
	}
	mse, err := MeanSquaredError(targets, predictions)
	if err != nil {
		return Result{}, err
	}
	r2, err := R2Score(targets, predictions)
	if err != nil {
		return Result{}, err
	}
	return Result{Name: name, MeanSquaredError: mse, R2Score: r2}, nil
}

func logResult(logger *zap.Logger, result Result) {
	if math.IsNaN(result.R2Score) {
		logger.Warn("r2 score undefined: targets are constant and predictions differ",
			zap.String("model", result.Name))
	}
	logger.Debug("model evaluated",
		zap.String("model", result.Name),
		zap.Float64("mse", result.MeanSquaredError),
		zap.Float64("r2", result.R2Score))
}

// Evaluator evaluates a model registry and prints the comparison table.
type Evaluator struct {
	logger      *zap.Logger
	out         io.Writer
	concurrency int
}

type Option func(*Evaluator)

func WithLogger(logger *zap.Logger) Option {
	return func(e *Evaluator) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func WithOutput(w io.Writer) Option {
	return func(e *Evaluator) {
		if w != nil {
			e.out = w
		}
	}
}

// WithConcurrency evaluates up to n models at once when n > 1.
func WithConcurrency(n int) Option {
	return func(e *Evaluator) {
		e.concurrency = n
	}
}

func New(opts ...Option) *Evaluator {
	e := &Evaluator{
		logger:      zap.NewNop(),
		out:         os.Stdout,
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run evaluates the models, writes the table to the configured output and
// returns the results.
func (e *Evaluator) Run(ctx context.Context, features mat.Matrix, targets []float64, models *ml.Registry) (*Results, error) {
	if err := checkInputs(features, targets, models); err != nil {
		return nil, err
	}
	logger := e.logger.With(zap.String("run_id", uuid.NewString()))
	rows, cols := features.Dims()
	logger.Info("evaluation started",
		zap.Int("rows", rows),
		zap.Int("features", cols),
		zap.Int("models", models.Len()),
		zap.Int("concurrency", e.concurrency))

	var results *Results
	var err error
	if e.concurrency > 1 {
		results, err = evaluateConcurrent(ctx, logger, features, targets, models, e.concurrency)
	} else {
		results, err = evaluate(logger, features, targets, models)
	}
	if err != nil {
		return nil, err
	}

	if err := Render(e.out, results); err != nil {
		return nil, err
	}
	logger.Info("evaluation finished")
	return results, nil
}
