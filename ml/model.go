package ml

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrNotFitted       = errors.New("model not fitted")
	ErrFeatureMismatch = errors.New("feature count does not match fitted model")
)

// Regressor is a fitted model that produces one prediction per row of x.
type Regressor interface {
	Predict(x mat.Matrix) ([]float64, error)
}

// PersistentRegressor is a Regressor that can be written to and read from disk.
type PersistentRegressor interface {
	Regressor
	Save(path string) error
	Load(path string) error
}

func rowOf(x mat.Matrix, i int) []float64 {
	_, c := x.Dims()
	if rv, ok := x.(mat.RawRowViewer); ok {
		return rv.RawRowView(i)
	}
	row := make([]float64, c)
	for j := range row {
		row[j] = x.At(i, j)
	}
	return row
}
