package harness

import (
	"fmt"

	"github.com/roach88/oneof/internal/codec"
	"github.com/roach88/oneof/internal/tree"
)

// checkError compares err's codec code with the expected one. A step with
// no expected error must not fail.
func checkError(i int, expect *Expect, err error, result *Result) {
	want := ""
	if expect != nil {
		want = expect.Error
	}
	switch {
	case want == "" && err != nil:
		result.AddError(fmt.Sprintf("steps[%d]: unexpected error: %v", i, err))
	case want != "" && err == nil:
		result.AddError(fmt.Sprintf("steps[%d]: expected error %s, got success", i, want))
	case want != "" && string(codec.CodeOf(err)) != want:
		result.AddError(fmt.Sprintf("steps[%d]: expected error %s, got %s (%v)", i, want, codec.CodeOf(err), err))
	}
}

// checkOutput compares serialized output structurally, ignoring member
// order and whitespace.
func checkOutput(i int, expect *Expect, got []byte, result *Result) {
	if expect == nil || expect.Output == "" {
		return
	}
	if !equalJSON([]byte(expect.Output), got) {
		result.AddError(fmt.Sprintf("steps[%d]: output mismatch:\n  expected: %s\n  got:      %s", i, expect.Output, got))
	}
}

func checkType(i int, expect *Expect, got string, result *Result) {
	if expect == nil || expect.Type == "" {
		return
	}
	if expect.Type != got {
		result.AddError(fmt.Sprintf("steps[%d]: expected alternative %q, got %q", i, expect.Type, got))
	}
}

func equalJSON(a, b []byte) bool {
	na, err := tree.ParseJSON(a)
	if err != nil {
		return false
	}
	nb, err := tree.ParseJSON(b)
	if err != nil {
		return false
	}
	return tree.Equal(na, nb)
}
