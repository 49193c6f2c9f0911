package tree

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashDeterminism(t *testing.T) {
	n := Object{M("value", String("x")), M("type", String("string"))}

	h1, err := Hash(DomainEnvelope, n)
	require.NoError(t, err)
	h2, err := Hash(DomainEnvelope, n)
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)
	assert.Equal(t, strings.ToLower(h1), h1)
}

func TestHashIgnoresMemberOrder(t *testing.T) {
	a := Object{M("value", String("x")), M("type", String("string"))}
	b := Object{M("type", String("string")), M("value", String("x"))}

	ha, err := Hash(DomainEnvelope, a)
	require.NoError(t, err)
	hb, err := Hash(DomainEnvelope, b)
	require.NoError(t, err)
	assert.Equal(t, ha, hb)
}

func TestHashChangesWithContent(t *testing.T) {
	a, err := Hash(DomainEnvelope, Object{M("value", String("x")), M("type", String("string"))})
	require.NoError(t, err)
	b, err := Hash(DomainEnvelope, Object{M("value", String("y")), M("type", String("string"))})
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDomainSeparation(t *testing.T) {
	n := String("same")
	a, err := Hash(DomainEnvelope, n)
	require.NoError(t, err)
	b, err := Hash("other/v1", n)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestHashWithDomainNullSeparator(t *testing.T) {
	// "ab" + 0x00 + "c" must differ from "a" + 0x00 + "bc".
	assert.NotEqual(t, hashWithDomain("ab", []byte("c")), hashWithDomain("a", []byte("bc")))
}

func TestHashErrorHandling(t *testing.T) {
	_, err := Hash(DomainEnvelope, Float(nanValue()))
	require.Error(t, err)
}
