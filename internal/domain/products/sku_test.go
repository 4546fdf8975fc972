package products

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSKUMinter(t *testing.T) {
	m, err := NewSKUMinter("test-salt")
	require.NoError(t, err)

	first, err := m.SKU(1)
	require.NoError(t, err)
	second, err := m.SKU(2)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(first, "IC-"))
	assert.GreaterOrEqual(t, len(first), len("IC-")+6)
	assert.NotEqual(t, first, second)

	// deterministic for the same id and salt
	again, err := m.SKU(1)
	require.NoError(t, err)
	assert.Equal(t, first, again)
}

func TestSKUMinterSaltChangesCodes(t *testing.T) {
	a, err := NewSKUMinter("salt-a")
	require.NoError(t, err)
	b, err := NewSKUMinter("salt-b")
	require.NoError(t, err)

	codeA, err := a.SKU(42)
	require.NoError(t, err)
	codeB, err := b.SKU(42)
	require.NoError(t, err)

	assert.NotEqual(t, codeA, codeB)
}
