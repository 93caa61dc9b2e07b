package eval

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"
)

var (
	ErrDimensionMismatch = errors.New("targets and predictions length mismatch")
	ErrEmptyInput        = errors.New("targets and predictions are empty")
)

func checkLengths(targets, predictions []float64) error {
	if len(targets) != len(predictions) {
		return ErrDimensionMismatch
	}
	if len(targets) == 0 {
		return ErrEmptyInput
	}
	return nil
}

func residualSumOfSquares(targets, predictions []float64) float64 {
	var sum float64
	for i := range targets {
		diff := targets[i] - predictions[i]
		sum += diff * diff
	}
	return sum
}

// MeanSquaredError returns the average squared difference between targets
// and predictions.
func MeanSquaredError(targets, predictions []float64) (float64, error) {
	if err := checkLengths(targets, predictions); err != nil {
		return 0, err
	}
	return residualSumOfSquares(targets, predictions) / float64(len(targets)), nil
}

// R2Score returns the coefficient of determination 1 - SS_res/SS_tot.
//
// When every target is identical SS_tot is zero: the score is 1 if the
// predictions match exactly and NaN otherwise.
func R2Score(targets, predictions []float64) (float64, error) {
	if err := checkLengths(targets, predictions); err != nil {
		return 0, err
	}
	mean := stat.Mean(targets, nil)
	var total float64
	for _, y := range targets {
		total += (y - mean) * (y - mean)
	}
	residual := residualSumOfSquares(targets, predictions)
	if total == 0 {
		if residual == 0 {
			return 1, nil
		}
		return math.NaN(), nil
	}
	return 1 - residual/total, nil
}
