package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// LinearRegression is an ordinary least squares model with an intercept.
type LinearRegression struct {
	Intercept float64   `json:"intercept"`
	Coef      []float64 `json:"coef"`
}

func NewLinearRegression() *LinearRegression {
	return &LinearRegression{}
}

func (lr *LinearRegression) Fit(x mat.Matrix, y []float64) error {
	rows, cols := x.Dims()
	if rows == 0 || len(y) == 0 {
		return errors.New("features or targets empty")
	}
	if rows != len(y) {
		return errors.New("features and targets size mismatch")
	}
	if rows < cols+1 {
		return fmt.Errorf("need at least %d rows to fit %d features, got %d", cols+1, cols, rows)
	}

	design := mat.NewDense(rows, cols+1, nil)
	for i := 0; i < rows; i++ {
		design.Set(i, 0, 1)
		for j := 0; j < cols; j++ {
			design.Set(i, j+1, x.At(i, j))
		}
	}

	var weights mat.VecDense
	if err := weights.SolveVec(design, mat.NewVecDense(rows, append([]float64(nil), y...))); err != nil {
		return fmt.Errorf("solve least squares: %w", err)
	}

	lr.Intercept = weights.AtVec(0)
	lr.Coef = make([]float64, cols)
	for j := range lr.Coef {
		lr.Coef[j] = weights.AtVec(j + 1)
	}
	return nil
}

func (lr *LinearRegression) Predict(x mat.Matrix) ([]float64, error) {
	if lr.Coef == nil {
		return nil, ErrNotFitted
	}
	rows, cols := x.Dims()
	if cols != len(lr.Coef) {
		return nil, fmt.Errorf("%w: model has %d, got %d", ErrFeatureMismatch, len(lr.Coef), cols)
	}
	predictions := make([]float64, rows)
	for i := range predictions {
		predictions[i] = lr.Intercept + floats.Dot(rowOf(x, i), lr.Coef)
	}
	return predictions, nil
}

func (lr *LinearRegression) Save(path string) error {
	if lr.Coef == nil {
		return ErrNotFitted
	}
	payload, err := json.Marshal(lr)
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

func (lr *LinearRegression) Load(path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var loaded LinearRegression
	if err := json.Unmarshal(payload, &loaded); err != nil {
		return err
	}
	if loaded.Coef == nil {
		return fmt.Errorf("%s: missing coefficients", path)
	}
	*lr = loaded
	return nil
}
