package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/oneof/internal/tree"
)

// TraceSnapshot captures the step trace of a scenario execution.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Union        string       `json:"union"`
	Mode         string       `json:"mode"`
	Trace        []StepResult `json:"trace"`
}

// toTree converts the snapshot to a tree for canonical serialization.
func (s *TraceSnapshot) toTree() tree.Node {
	trace := make(tree.Array, len(s.Trace))
	for i, sr := range s.Trace {
		step := tree.Object{
			tree.M("step", tree.Int(sr.Step)),
			tree.M("op", tree.String(sr.Op)),
		}
		if sr.Type != "" {
			step.Set("type", tree.String(sr.Type))
		}
		if sr.Output != "" {
			step.Set("output", tree.String(sr.Output))
		}
		if sr.Error != "" {
			step.Set("error", tree.String(sr.Error))
		}
		trace[i] = step
	}
	return tree.Object{
		tree.M("scenario_name", tree.String(s.ScenarioName)),
		tree.M("union", tree.String(s.Union)),
		tree.M("mode", tree.String(s.Mode)),
		tree.M("trace", trace),
	}
}

// Snapshot returns the canonical JSON snapshot of a scenario result.
func Snapshot(scenario *Scenario, result *Result) ([]byte, error) {
	mode := scenario.Mode
	if mode == "" {
		mode = "envelope"
	}
	snapshot := TraceSnapshot{
		ScenarioName: scenario.Name,
		Union:        scenario.Union,
		Mode:         mode,
		Trace:        result.Trace,
	}
	return tree.MarshalCanonical(snapshot.toTree())
}

// RunWithGolden executes a scenario and compares its trace against a golden
// file in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can also assert on Pass and Errors.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	data, err := Snapshot(scenario, result)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)

	return result, nil
}
