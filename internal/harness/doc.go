// Package harness provides conformance scenarios for the envelope codec.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: classes_roundtrip
//	description: "ClassB is not misresolved as ClassA"
//	union: classes            # name in the harness catalog
//	mode: envelope            # envelope (default) | transparent
//	steps:
//	  - op: roundtrip
//	    type: sample.ClassB
//	    value: { name: Savvas }
//	    expect:
//	      type: github.com/roach88/oneof/internal/sample.ClassB
//	  - op: bson
//	    type: string
//	    value: hello
//	  - op: decode
//	    input: '{"type":""}'
//	    expect:
//	      error: MISSING_TYPE
//
// # Operations
//
//   - roundtrip: wrap value as type, serialize, and in envelope mode
//     deserialize and re-serialize; the two texts must be identical
//   - bson: the same through BSON documents; the BSON envelope must equal
//     the JSON one
//   - decode: deserialize input
//
// # Expectations
//
//   - output: expected JSON, compared structurally
//   - error: expected codec error code
//   - type: expected identifier of the decoded alternative
//
// Every scenario runs against a fresh registry, resolver and codec, so the
// trace is deterministic and can be compared against golden snapshots
// with RunWithGolden.
package harness
