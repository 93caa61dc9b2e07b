package ml

import (
	"errors"
	"fmt"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"
)

var ErrUnsupportedModel = errors.New("unsupported model type")

const (
	TypeLinearRegression = "linear_regression"
	TypeDecisionTree     = "decision_tree"
	TypeMean             = "mean"
)

func newModel(modelType string) (PersistentRegressor, error) {
	switch modelType {
	case TypeLinearRegression:
		return NewLinearRegression(), nil
	case TypeDecisionTree:
		return &DecisionTreeRegressor{}, nil
	case TypeMean:
		return NewMeanRegressor(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedModel, modelType)
	}
}

func LoadModel(modelType, path string) (Regressor, error) {
	model, err := newModel(modelType)
	if err != nil {
		return nil, err
	}
	if err := model.Load(path); err != nil {
		return nil, fmt.Errorf("load %s model from %s: %w", modelType, path, err)
	}
	return model, nil
}

type cacheKey struct {
	modelType string
	path      string
}

// absPath makes cache keys independent of the working directory the path was
// written against.
func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}

// Loader loads model files and keeps recently decoded models in an LRU cache.
type Loader struct {
	cache *lru.Cache[cacheKey, Regressor]
}

func NewLoader(size int) (*Loader, error) {
	if size <= 0 {
		size = 64
	}
	cache, err := lru.New[cacheKey, Regressor](size)
	if err != nil {
		return nil, err
	}
	return &Loader{cache: cache}, nil
}

func (l *Loader) Load(modelType, path string) (Regressor, error) {
	key := cacheKey{modelType: modelType, path: absPath(path)}
	if model, ok := l.cache.Get(key); ok {
		return model, nil
	}
	model, err := LoadModel(modelType, path)
	if err != nil {
		return nil, err
	}
	l.cache.Add(key, model)
	return model, nil
}

// Invalidate drops every cached model read from path.
func (l *Loader) Invalidate(path string) {
	path = absPath(path)
	for _, key := range l.cache.Keys() {
		if key.path == path {
			l.cache.Remove(key)
		}
	}
}

func (l *Loader) Len() int {
	return l.cache.Len()
}
