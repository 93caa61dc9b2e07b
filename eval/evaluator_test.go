package eval

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"

	"modeleval/ml"
)

type fakeModel struct {
	predictions []float64
	err         error
	calls       int
}

func (f *fakeModel) Predict(x mat.Matrix) ([]float64, error) {
	f.calls++
	return f.predictions, f.err
}

func scenario() (*mat.Dense, []float64, *ml.Registry) {
	features := mat.NewDense(4, 1, []float64{10, 20, 30, 40})
	targets := []float64{1, 2, 3, 4}
	registry := ml.NewRegistry().
		MustRegister("perfect", &fakeModel{predictions: []float64{1, 2, 3, 4}}).
		MustRegister("mean", &fakeModel{predictions: []float64{2.5, 2.5, 2.5, 2.5}}).
		MustRegister("reversed", &fakeModel{predictions: []float64{4, 3, 2, 1}})
	return features, targets, registry
}

func TestEvaluateScenario(t *testing.T) {
	features, targets, registry := scenario()

	results, err := Evaluate(features, targets, registry)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := []Result{
		{Name: "perfect", MeanSquaredError: 0, R2Score: 1},
		{Name: "mean", MeanSquaredError: 1.25, R2Score: 0},
		{Name: "reversed", MeanSquaredError: 5, R2Score: -3},
	}
	if !reflect.DeepEqual(results.All(), expected) {
		t.Fatalf("unexpected results: %+v", results.All())
	}

	reversed, ok := results.Get("reversed")
	if !ok {
		t.Fatal("expected result for reversed")
	}
	if reversed.R2Score >= 0 {
		t.Fatalf("expected negative r2, got %v", reversed.R2Score)
	}
}

func TestEvaluateKeepsRegistrationOrder(t *testing.T) {
	features := mat.NewDense(2, 1, []float64{0, 1})
	targets := []float64{0, 1}
	registry := ml.NewRegistry()
	names := []string{"zeta", "alpha", "mu", "beta"}
	for _, name := range names {
		registry.MustRegister(name, &fakeModel{predictions: []float64{0, 1}})
	}

	results, err := Evaluate(features, targets, registry)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(results.Names(), names) {
		t.Fatalf("expected order %v, got %v", names, results.Names())
	}
}

func TestEvaluatePredictionFailureAborts(t *testing.T) {
	errBoom := errors.New("incompatible feature schema")
	last := &fakeModel{predictions: []float64{1, 2}}
	registry := ml.NewRegistry().
		MustRegister("ok", &fakeModel{predictions: []float64{1, 2}}).
		MustRegister("broken", &fakeModel{err: errBoom}).
		MustRegister("last", last)

	results, err := Evaluate(mat.NewDense(2, 1, []float64{1, 2}), []float64{1, 2}, registry)
	if err != errBoom {
		t.Fatalf("expected prediction error unchanged, got %v", err)
	}
	if results != nil {
		t.Fatalf("expected no partial results, got %+v", results.All())
	}
	if last.calls != 0 {
		t.Fatal("expected evaluation to stop at the failing model")
	}
}

func TestEvaluateTargetLengthMismatch(t *testing.T) {
	model := &fakeModel{predictions: []float64{1, 2, 3}}
	registry := ml.NewRegistry().MustRegister("m", model)

	_, err := Evaluate(mat.NewDense(3, 1, []float64{1, 2, 3}), []float64{1, 2}, registry)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
	if model.calls != 0 {
		t.Fatal("expected model not to be called")
	}
}

func TestEvaluatePredictionLengthMismatch(t *testing.T) {
	registry := ml.NewRegistry().MustRegister("short", &fakeModel{predictions: []float64{1, 2}})

	_, err := Evaluate(mat.NewDense(3, 1, []float64{1, 2, 3}), []float64{1, 2, 3}, registry)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestEvaluateNoModels(t *testing.T) {
	if _, err := Evaluate(mat.NewDense(1, 1, nil), []float64{1}, ml.NewRegistry()); !errors.Is(err, ErrNoModels) {
		t.Fatalf("expected ErrNoModels, got %v", err)
	}
}

func TestEvaluateRealModels(t *testing.T) {
	train := mat.NewDense(5, 1, []float64{1, 2, 3, 4, 5})
	trainY := []float64{3, 5, 7, 9, 11}

	linear := ml.NewLinearRegression()
	if err := linear.Fit(train, trainY); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	baseline := ml.NewMeanRegressor()
	if err := baseline.Fit(train, trainY); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	test := mat.NewDense(2, 1, []float64{6, 7})
	testY := []float64{13, 15}
	registry := ml.NewRegistry().MustRegister("linear", linear).MustRegister("baseline", baseline)

	results, err := Evaluate(test, testY, registry)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lin, _ := results.Get("linear")
	if lin.MeanSquaredError > 1e-12 || lin.R2Score < 1-1e-9 {
		t.Fatalf("expected near perfect fit, got %+v", lin)
	}
	base, _ := results.Get("baseline")
	if base.R2Score >= 0 {
		t.Fatalf("expected training-mean baseline to score below 0 on shifted data, got %v", base.R2Score)
	}
}

func TestEvaluatorRunRendersTable(t *testing.T) {
	features, targets, registry := scenario()
	var out bytes.Buffer

	results, err := New(WithOutput(&out)).Run(context.Background(), features, targets, registry)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results.Len() != 3 {
		t.Fatalf("expected 3 results, got %d", results.Len())
	}
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header and 3 rows, got %q", out.String())
	}
	for i, name := range []string{"perfect", "mean", "reversed"} {
		if !strings.HasPrefix(lines[i+1], name) {
			t.Fatalf("expected row %d to start with %s, got %q", i+1, name, lines[i+1])
		}
	}
}

func TestEvaluatorRunFailureWritesNothing(t *testing.T) {
	registry := ml.NewRegistry().MustRegister("broken", &fakeModel{err: errors.New("boom")})
	var out bytes.Buffer

	if _, err := New(WithOutput(&out)).Run(context.Background(), mat.NewDense(1, 1, nil), []float64{1}, registry); err == nil {
		t.Fatal("expected error")
	}
	if out.Len() != 0 {
		t.Fatalf("expected no output, got %q", out.String())
	}
}

func TestEvaluatorRunNilFeatures(t *testing.T) {
	registry := ml.NewRegistry().MustRegister("m", &fakeModel{predictions: []float64{1}})
	var out bytes.Buffer

	if _, err := New(WithOutput(&out)).Run(context.Background(), nil, []float64{1}, registry); err == nil {
		t.Fatal("expected error for nil features")
	}
	if _, err := Evaluate(nil, []float64{1}, registry); err == nil {
		t.Fatal("expected error for nil features")
	}
}
