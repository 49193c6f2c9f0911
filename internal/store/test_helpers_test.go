package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/oneof/internal/codec"
	"github.com/roach88/oneof/internal/docbridge"
	"github.com/roach88/oneof/internal/sample"
	"github.com/roach88/oneof/internal/union"
)

// testBridge creates a bridge over the sample registry.
func testBridge(opts ...codec.Option) *docbridge.Bridge {
	opts = append([]codec.Option{
		codec.WithRegistry(sample.NewRegistry()),
		codec.WithResolver(union.NewResolver()),
	}, opts...)
	return docbridge.New(codec.New(opts...))
}

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, testBridge(), opts...)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// mustWrap wraps v in union U or fails the test.
func mustWrap[U union.Union](t *testing.T, v any) U {
	t.Helper()
	u, err := union.Wrap[U](v)
	if err != nil {
		t.Fatalf("Wrap(%v) failed: %v", v, err)
	}
	return u
}
