package random

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id, err := ID(16)
		require.NoError(t, err)
		assert.Len(t, id, 16)
		for _, c := range id {
			assert.True(t, (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9'), "unexpected character %q", c)
		}
		assert.False(t, seen[id], "duplicate id %q", id)
		seen[id] = true
	}
}

func TestIDZeroLength(t *testing.T) {
	id, err := ID(0)
	require.NoError(t, err)
	assert.Equal(t, "", id)
}
