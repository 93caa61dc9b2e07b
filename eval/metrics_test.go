package eval

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func TestMeanSquaredErrorAndR2(t *testing.T) {
	targets := []float64{1, 2, 3, 4}
	cases := []struct {
		name        string
		predictions []float64
		mse         float64
		r2          float64
	}{
		{"exact", []float64{1, 2, 3, 4}, 0, 1},
		{"mean", []float64{2.5, 2.5, 2.5, 2.5}, 1.25, 0},
		{"reversed", []float64{4, 3, 2, 1}, 5, -3},
	}
	for _, tc := range cases {
		mse, err := MeanSquaredError(targets, tc.predictions)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if mse != tc.mse {
			t.Fatalf("%s: expected mse %v, got %v", tc.name, tc.mse, mse)
		}
		r2, err := R2Score(targets, tc.predictions)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if r2 != tc.r2 {
			t.Fatalf("%s: expected r2 %v, got %v", tc.name, tc.r2, r2)
		}
	}
}

func TestMeanSquaredErrorNonNegative(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for n := 1; n < 50; n++ {
		targets := make([]float64, n)
		predictions := make([]float64, n)
		for i := range targets {
			targets[i] = rng.NormFloat64() * 10
			predictions[i] = rng.NormFloat64() * 10
		}
		mse, err := MeanSquaredError(targets, predictions)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if mse < 0 {
			t.Fatalf("expected mse >= 0, got %v", mse)
		}
	}
}

func TestMetricsLengthMismatch(t *testing.T) {
	targets := []float64{1, 2, 3}
	predictions := []float64{1, 2}
	if _, err := MeanSquaredError(targets, predictions); !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
	if _, err := R2Score(targets, predictions); !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestMetricsEmptyInput(t *testing.T) {
	if _, err := MeanSquaredError(nil, nil); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
	if _, err := R2Score([]float64{}, []float64{}); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}

func TestR2ScoreConstantTarget(t *testing.T) {
	targets := []float64{2, 2, 2}

	r2, err := R2Score(targets, []float64{2, 2, 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r2 != 1 {
		t.Fatalf("expected 1 for exact match, got %v", r2)
	}

	r2, err = R2Score(targets, []float64{2, 2, 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !math.IsNaN(r2) {
		t.Fatalf("expected NaN for constant target, got %v", r2)
	}
}
