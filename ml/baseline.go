package ml

import (
	"encoding/json"
	"errors"
	"os"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// MeanRegressor always predicts the mean of its training targets.
type MeanRegressor struct {
	Mean   float64 `json:"mean"`
	Fitted bool    `json:"fitted"`
}

func NewMeanRegressor() *MeanRegressor {
	return &MeanRegressor{}
}

func (m *MeanRegressor) Fit(_ mat.Matrix, y []float64) error {
	if len(y) == 0 {
		return errors.New("targets empty")
	}
	m.Mean = stat.Mean(y, nil)
	m.Fitted = true
	return nil
}

func (m *MeanRegressor) Predict(x mat.Matrix) ([]float64, error) {
	if !m.Fitted {
		return nil, ErrNotFitted
	}
	rows, _ := x.Dims()
	predictions := make([]float64, rows)
	for i := range predictions {
		predictions[i] = m.Mean
	}
	return predictions, nil
}

func (m *MeanRegressor) Save(path string) error {
	if !m.Fitted {
		return ErrNotFitted
	}
	payload, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

func (m *MeanRegressor) Load(path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var loaded MeanRegressor
	if err := json.Unmarshal(payload, &loaded); err != nil {
		return err
	}
	if !loaded.Fitted {
		return ErrNotFitted
	}
	*m = loaded
	return nil
}
