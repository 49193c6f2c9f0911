// Package tree provides the structured value tree shared by the text and
// binary encodings.
//
// A Node is one of Null, String, Int, Float, Bool, Array or Object. The
// interface is sealed: only this package can add node kinds. Object keeps
// its members in insertion order so that emitted documents have a stable,
// caller-controlled field order (the envelope always writes "value" before
// "type").
//
// Two text forms are supported:
//   - Marshal: plain JSON in member order, used on the wire
//   - MarshalCanonical: RFC 8785 canonical JSON, used for hashing and golden
//     snapshots
//
// tree imports nothing internal.
package tree
