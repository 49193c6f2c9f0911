package harness

import (
	"fmt"
	"io"
	"log/slog"
	"reflect"

	"github.com/roach88/oneof/internal/codec"
	"github.com/roach88/oneof/internal/docbridge"
	"github.com/roach88/oneof/internal/sample"
	"github.com/roach88/oneof/internal/tree"
	"github.com/roach88/oneof/internal/typereg"
	"github.com/roach88/oneof/internal/union"
)

// Harness runs the steps of one scenario against a fresh codec, registry
// and conversion resolver.
type Harness struct {
	codec     *codec.Codec
	bridge    *docbridge.Bridge
	resolver  *union.Resolver
	unionType reflect.Type
	logger    *slog.Logger
}

// Run executes a scenario against the sample catalog and registry.
func Run(scenario *Scenario) (*Result, error) {
	return RunWithCatalog(scenario, DefaultCatalog(), nil)
}

// RunWithCatalog executes a scenario, looking its union up in catalog and
// its type identifiers up in reg. A nil reg means sample.NewRegistry().
// The union's alternatives are added to reg when missing.
//
// Errors returned here are setup failures (unknown union or mode, or
// alternatives that cannot be registered); failed expectations are
// reported in Result.Errors.
func RunWithCatalog(scenario *Scenario, catalog Catalog, reg *typereg.Registry) (*Result, error) {
	unionType, ok := catalog[scenario.Union]
	if !ok {
		return nil, fmt.Errorf("unknown union %q", scenario.Union)
	}
	mode, err := codec.ParseMode(scenario.Mode)
	if err != nil {
		return nil, err
	}

	if reg == nil {
		reg = sample.NewRegistry()
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	resolver := union.NewResolver().WithLogger(logger)
	c := codec.New(
		codec.WithMode(mode),
		codec.WithRegistry(reg),
		codec.WithResolver(resolver),
		codec.WithLogger(logger),
	)
	if err := c.RegisterUnion(unionType); err != nil {
		return nil, err
	}
	h := &Harness{
		codec:     c,
		bridge:    docbridge.New(c),
		resolver:  resolver,
		unionType: unionType,
		logger:    logger,
	}

	result := NewResult()
	for i, st := range scenario.Steps {
		var sr StepResult
		switch st.Op {
		case OpRoundTrip:
			sr = h.roundTrip(i, st, result)
		case OpBSON:
			sr = h.bsonRoundTrip(i, st, result)
		case OpDecode:
			sr = h.decode(i, st, result)
		}
		result.Trace = append(result.Trace, sr)
	}
	return result, nil
}

// wrap builds the union from a step's type identifier and YAML value.
func (h *Harness) wrap(st Step) (union.Union, error) {
	t, err := h.codec.Registry().Resolve(st.Type)
	if err != nil {
		return nil, err
	}
	n, err := tree.FromGo(st.Value)
	if err != nil {
		return nil, fmt.Errorf("value: %w", err)
	}
	v, err := h.codec.Engine().Decode(n, t)
	if err != nil {
		return nil, fmt.Errorf("value: %w", err)
	}
	handle, err := h.resolver.Resolve(h.unionType, t)
	if err != nil {
		return nil, err
	}
	return handle.Into(v.Interface())
}

func (h *Harness) roundTrip(i int, st Step, result *Result) StepResult {
	sr := StepResult{Step: i, Op: st.Op}
	u, err := h.wrap(st)
	if err != nil {
		result.AddError(fmt.Sprintf("steps[%d]: wrap %s: %v", i, st.Type, err))
		return sr
	}

	data, err := h.codec.Serialize(u)
	if err != nil {
		sr.Error = string(codec.CodeOf(err))
		checkError(i, st.Expect, err, result)
		return sr
	}
	sr.Output = string(data)

	if h.codec.Mode() == codec.ModeEnvelope {
		back, err := h.codec.Deserialize(data, h.unionType)
		if err != nil {
			sr.Error = string(codec.CodeOf(err))
			checkError(i, st.Expect, err, result)
			return sr
		}
		sr.Type = h.typeOf(back)
		again, err := h.codec.Serialize(back)
		if err != nil || string(again) != string(data) {
			result.AddError(fmt.Sprintf("steps[%d]: round-trip changed %s into %s", i, data, again))
		}
	}

	checkError(i, st.Expect, nil, result)
	checkOutput(i, st.Expect, data, result)
	checkType(i, st.Expect, sr.Type, result)
	return sr
}

func (h *Harness) bsonRoundTrip(i int, st Step, result *Result) StepResult {
	sr := StepResult{Step: i, Op: st.Op}
	u, err := h.wrap(st)
	if err != nil {
		result.AddError(fmt.Sprintf("steps[%d]: wrap %s: %v", i, st.Type, err))
		return sr
	}

	raw, err := h.bridge.Marshal(u)
	if err != nil {
		sr.Error = string(codec.CodeOf(err))
		checkError(i, st.Expect, err, result)
		return sr
	}
	data, err := docbridge.BSONToJSON(raw)
	if err != nil {
		result.AddError(fmt.Sprintf("steps[%d]: reading BSON: %v", i, err))
		return sr
	}
	sr.Output = string(data)

	back, err := h.bridge.Unmarshal(raw, h.unionType)
	if err != nil {
		sr.Error = string(codec.CodeOf(err))
		checkError(i, st.Expect, err, result)
		return sr
	}
	sr.Type = h.typeOf(back)

	// The BSON path must agree with the text path.
	text, err := h.codec.Serialize(u)
	if err != nil || !equalJSON(text, data) {
		result.AddError(fmt.Sprintf("steps[%d]: BSON envelope %s differs from JSON envelope %s", i, data, text))
	}

	checkError(i, st.Expect, nil, result)
	checkOutput(i, st.Expect, data, result)
	checkType(i, st.Expect, sr.Type, result)
	return sr
}

func (h *Harness) decode(i int, st Step, result *Result) StepResult {
	sr := StepResult{Step: i, Op: st.Op}
	u, err := h.codec.Deserialize([]byte(st.Input), h.unionType)
	if err != nil {
		sr.Error = string(codec.CodeOf(err))
		checkError(i, st.Expect, err, result)
		return sr
	}
	sr.Type = h.typeOf(u)
	data, err := h.codec.Serialize(u)
	if err != nil {
		result.AddError(fmt.Sprintf("steps[%d]: re-serialize: %v", i, err))
		return sr
	}
	sr.Output = string(data)

	checkError(i, st.Expect, nil, result)
	checkOutput(i, st.Expect, data, result)
	checkType(i, st.Expect, sr.Type, result)
	return sr
}

// typeOf returns the type identifier of u's current alternative.
func (h *Harness) typeOf(u union.Union) string {
	_, alt, err := union.Current(u)
	if err != nil {
		return ""
	}
	name, err := h.codec.Registry().NameOf(alt)
	if err != nil {
		return alt.String()
	}
	return name
}
