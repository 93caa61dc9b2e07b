package eval

// Result holds the metrics of one model on the held-out set.
type Result struct {
	Name             string  `json:"name" yaml:"name"`
	MeanSquaredError float64 `json:"mean_squared_error" yaml:"mean_squared_error"`
	R2Score          float64 `json:"r2_score" yaml:"r2_score"`
}

// Results keeps per-model metrics in model registration order.
type Results struct {
	items []Result
	index map[string]int
}

func newResults(size int) *Results {
	return &Results{
		items: make([]Result, 0, size),
		index: make(map[string]int, size),
	}
}

func (r *Results) add(result Result) {
	r.index[result.Name] = len(r.items)
	r.items = append(r.items, result)
}

func (r *Results) Get(name string) (Result, bool) {
	i, ok := r.index[name]
	if !ok {
		return Result{}, false
	}
	return r.items[i], true
}

// All returns a copy of the results in order.
func (r *Results) All() []Result {
	return append([]Result(nil), r.items...)
}

func (r *Results) Names() []string {
	names := make([]string, len(r.items))
	for i, item := range r.items {
		names[i] = item.Name
	}
	return names
}

func (r *Results) Len() int {
	return len(r.items)
}
