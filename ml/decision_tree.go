package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// DecisionTreeRegressor is a CART regression tree stored as a flat node list.
type DecisionTreeRegressor struct {
	MaxDepth       int        `json:"max_depth"`
	MinSamplesLeaf int        `json:"min_samples_leaf"`
	NumFeatures    int        `json:"num_features"`
	Nodes          []TreeNode `json:"nodes"`
}

type TreeNode struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	LeftChild  int     `json:"left_child"`
	RightChild int     `json:"right_child"`
	Value      float64 `json:"value"`
	IsLeaf     bool    `json:"is_leaf"`
}

func NewDecisionTreeRegressor(maxDepth, minSamplesLeaf int) *DecisionTreeRegressor {
	if maxDepth <= 0 {
		maxDepth = 3
	}
	if minSamplesLeaf <= 0 {
		minSamplesLeaf = 1
	}
	return &DecisionTreeRegressor{MaxDepth: maxDepth, MinSamplesLeaf: minSamplesLeaf}
}

func (dt *DecisionTreeRegressor) Fit(x mat.Matrix, y []float64) error {
	rows, cols := x.Dims()
	if rows == 0 || len(y) == 0 {
		return errors.New("features or targets empty")
	}
	if rows != len(y) {
		return errors.New("features and targets size mismatch")
	}
	if dt.MaxDepth <= 0 {
		dt.MaxDepth = 3
	}
	if dt.MinSamplesLeaf <= 0 {
		dt.MinSamplesLeaf = 1
	}

	features := make([][]float64, rows)
	for i := range features {
		features[i] = append([]float64(nil), rowOf(x, i)...)
	}
	dt.NumFeatures = cols
	dt.Nodes = dt.buildNode(features, append([]float64(nil), y...), 0)
	return nil
}

func (dt *DecisionTreeRegressor) Predict(x mat.Matrix) ([]float64, error) {
	if len(dt.Nodes) == 0 {
		return nil, ErrNotFitted
	}
	rows, cols := x.Dims()
	if cols != dt.NumFeatures {
		return nil, fmt.Errorf("%w: model has %d, got %d", ErrFeatureMismatch, dt.NumFeatures, cols)
	}
	predictions := make([]float64, rows)
	for i := range predictions {
		value, err := dt.predictRow(rowOf(x, i))
		if err != nil {
			return nil, err
		}
		predictions[i] = value
	}
	return predictions, nil
}

func (dt *DecisionTreeRegressor) predictRow(features []float64) (float64, error) {
	idx := 0
	for {
		node := dt.Nodes[idx]
		if node.IsLeaf {
			return node.Value, nil
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= len(features) {
			return 0, errors.New("feature index out of range")
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
		if idx < 0 || idx >= len(dt.Nodes) {
			return 0, errors.New("invalid tree state")
		}
	}
}

func (dt *DecisionTreeRegressor) Save(path string) error {
	if len(dt.Nodes) == 0 {
		return ErrNotFitted
	}
	payload, err := json.Marshal(dt)
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

func (dt *DecisionTreeRegressor) Load(path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var loaded DecisionTreeRegressor
	if err := json.Unmarshal(payload, &loaded); err != nil {
		return err
	}
	if len(loaded.Nodes) == 0 {
		return fmt.Errorf("%s: tree has no nodes", path)
	}
	*dt = loaded
	return nil
}

func leaf(value float64) []TreeNode {
	return []TreeNode{{
		FeatureIdx: -1,
		LeftChild:  -1,
		RightChild: -1,
		Value:      value,
		IsLeaf:     true,
	}}
}

func (dt *DecisionTreeRegressor) buildNode(features [][]float64, targets []float64, depth int) []TreeNode {
	value := stat.Mean(targets, nil)
	if depth >= dt.MaxDepth || len(targets) < 2*dt.MinSamplesLeaf || isConstant(targets) {
		return leaf(value)
	}

	bestFeature, threshold, ok := dt.findBestSplit(features, targets)
	if !ok {
		return leaf(value)
	}

	leftFeatures, leftTargets, rightFeatures, rightTargets := splitData(features, targets, bestFeature, threshold)
	leftNodes := dt.buildNode(leftFeatures, leftTargets, depth+1)
	rightNodes := dt.buildNode(rightFeatures, rightTargets, depth+1)

	root := TreeNode{
		FeatureIdx: bestFeature,
		Threshold:  threshold,
		LeftChild:  1,
		RightChild: 1 + len(leftNodes),
		Value:      value,
	}

	nodes := make([]TreeNode, 0, 1+len(leftNodes)+len(rightNodes))
	nodes = append(nodes, root)
	nodes = append(nodes, offset(leftNodes, 1)...)
	nodes = append(nodes, offset(rightNodes, 1+len(leftNodes))...)
	return nodes
}

// offset shifts child indices of a subtree placed at position base.
func offset(nodes []TreeNode, base int) []TreeNode {
	for i := range nodes {
		if !nodes[i].IsLeaf {
			nodes[i].LeftChild += base
			nodes[i].RightChild += base
		}
	}
	return nodes
}

func (dt *DecisionTreeRegressor) findBestSplit(features [][]float64, targets []float64) (int, float64, bool) {
	featureCount := len(features[0])
	bestFeature := -1
	bestThreshold := 0.0
	bestImpurity := math.MaxFloat64

	for featureIdx := 0; featureIdx < featureCount; featureIdx++ {
		values := make([]float64, len(features))
		for i := range features {
			values[i] = features[i][featureIdx]
		}
		threshold := median(values)
		leftTargets, rightTargets := splitTargets(features, targets, featureIdx, threshold)
		if len(leftTargets) < dt.MinSamplesLeaf || len(rightTargets) < dt.MinSamplesLeaf {
			continue
		}
		impurity := weightedVariance(leftTargets, rightTargets)
		if impurity < bestImpurity {
			bestImpurity = impurity
			bestFeature = featureIdx
			bestThreshold = threshold
		}
	}
	if bestFeature == -1 {
		return -1, 0, false
	}
	return bestFeature, bestThreshold, true
}

func splitData(features [][]float64, targets []float64, featureIdx int, threshold float64) ([][]float64, []float64, [][]float64, []float64) {
	leftFeatures := make([][]float64, 0)
	leftTargets := make([]float64, 0)
	rightFeatures := make([][]float64, 0)
	rightTargets := make([]float64, 0)
	for i, feature := range features {
		if feature[featureIdx] <= threshold {
			leftFeatures = append(leftFeatures, feature)
			leftTargets = append(leftTargets, targets[i])
		} else {
			rightFeatures = append(rightFeatures, feature)
			rightTargets = append(rightTargets, targets[i])
		}
	}
	return leftFeatures, leftTargets, rightFeatures, rightTargets
}

func splitTargets(features [][]float64, targets []float64, featureIdx int, threshold float64) ([]float64, []float64) {
	leftTargets := make([]float64, 0)
	rightTargets := make([]float64, 0)
	for i, feature := range features {
		if feature[featureIdx] <= threshold {
			leftTargets = append(leftTargets, targets[i])
		} else {
			rightTargets = append(rightTargets, targets[i])
		}
	}
	return leftTargets, rightTargets
}

func weightedVariance(left, right []float64) float64 {
	leftWeight := float64(len(left))
	rightWeight := float64(len(right))
	total := leftWeight + rightWeight
	return (leftWeight/total)*sumSquaredDeviation(left)/leftWeight + (rightWeight/total)*sumSquaredDeviation(right)/rightWeight
}

func sumSquaredDeviation(values []float64) float64 {
	mean := stat.Mean(values, nil)
	var sum float64
	for _, v := range values {
		sum += (v - mean) * (v - mean)
	}
	return sum
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func isConstant(values []float64) bool {
	if len(values) == 0 {
		return true
	}
	first := values[0]
	for _, v := range values[1:] {
		if v != first {
			return false
		}
	}
	return true
}
