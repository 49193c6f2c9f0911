package harness

import (
	"reflect"

	"github.com/roach88/oneof/internal/sample"
)

// StepResult records what one step produced.
type StepResult struct {
	Step   int    `json:"step"`
	Op     string `json:"op"`
	Type   string `json:"type,omitempty"`
	Output string `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every expectation matched.
	Pass bool `json:"pass"`

	// Trace contains one entry per step, in order.
	Trace []StepResult `json:"trace"`

	// Errors contains failed expectations. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []StepResult{},
		Errors: []string{},
	}
}

// AddError adds a failed expectation and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Catalog maps scenario union names to union types.
type Catalog map[string]reflect.Type

// DefaultCatalog returns the sample unions.
func DefaultCatalog() Catalog {
	return Catalog{
		"scalars":  reflect.TypeFor[sample.Scalars](),
		"classes":  reflect.TypeFor[sample.Classes](),
		"optional": reflect.TypeFor[sample.Optional](),
		"numbers":  reflect.TypeFor[sample.Numbers](),
		"blob":     reflect.TypeFor[sample.Blob](),
		"shape":    reflect.TypeFor[sample.Shape](),
	}
}
