package ml

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// TestSet is a held-out feature matrix with its positionally aligned targets.
type TestSet struct {
	Features *mat.Dense
	Targets  []float64
	Columns  []string
}

// ReadTestSet reads a CSV with a header row. The target column becomes the
// target vector and every other column, in header order, a feature.
func ReadTestSet(r io.Reader, target string) (*TestSet, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("test set is empty")
		}
		return nil, err
	}
	targetIdx := -1
	columns := make([]string, 0, len(header))
	seen := make(map[string]bool, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if seen[name] {
			return nil, fmt.Errorf("duplicate column %q", name)
		}
		seen[name] = true
		if name == target {
			targetIdx = i
			continue
		}
		columns = append(columns, name)
	}
	if targetIdx < 0 {
		return nil, fmt.Errorf("target column %q not found", target)
	}
	if len(columns) == 0 {
		return nil, errors.New("test set has no feature columns")
	}

	var data []float64
	var targets []float64
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		for i, cell := range record {
			value, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d column %q: %w", line, header[i], err)
			}
			if i == targetIdx {
				targets = append(targets, value)
			} else {
				data = append(data, value)
			}
		}
	}
	if len(targets) == 0 {
		return nil, errors.New("test set has no rows")
	}

	return &TestSet{
		Features: mat.NewDense(len(targets), len(columns), data),
		Targets:  targets,
		Columns:  columns,
	}, nil
}

func ReadTestSetFile(path, target string) (*TestSet, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	ts, err := ReadTestSet(file, target)
	if err != nil {
		return nil, fmt.Errorf("read test set %s: %w", path, err)
	}
	return ts, nil
}
