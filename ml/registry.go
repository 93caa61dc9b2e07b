package ml

import (
	"errors"
	"fmt"
)

var ErrDuplicateModel = errors.New("duplicate model name")

// Registry maps unique model names to regressors and remembers registration order.
type Registry struct {
	names  []string
	models map[string]Regressor
}

func NewRegistry() *Registry {
	return &Registry{models: make(map[string]Regressor)}
}

func (r *Registry) Register(name string, model Regressor) error {
	if name == "" {
		return errors.New("model name is required")
	}
	if model == nil {
		return fmt.Errorf("model %s is nil", name)
	}
	if r.models == nil {
		r.models = make(map[string]Regressor)
	}
	if _, ok := r.models[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateModel, name)
	}
	r.names = append(r.names, name)
	r.models[name] = model
	return nil
}

// MustRegister is Register for fixed model sets; it panics on error.
func (r *Registry) MustRegister(name string, model Regressor) *Registry {
	if err := r.Register(name, model); err != nil {
		panic(err)
	}
	return r
}

func (r *Registry) Get(name string) (Regressor, bool) {
	if r == nil {
		return nil, false
	}
	model, ok := r.models[name]
	return model, ok
}

// Names returns model names in registration order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.names...)
}

func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.names)
}

// Each calls fn for every model in registration order and stops at the first error.
func (r *Registry) Each(fn func(name string, model Regressor) error) error {
	if r == nil {
		return nil
	}
	for _, name := range r.names {
		if err := fn(name, r.models[name]); err != nil {
			return err
		}
	}
	return nil
}
