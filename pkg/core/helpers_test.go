package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRandUint32(t *testing.T) {
	seen := map[uint32]bool{}
	for i := 0; i < 100; i++ {
		u := RandUint32()
		require.NotZero(t, u)
		seen[u] = true
	}
	// 100 draws from 2^32 space
	require.Greater(t, len(seen), 95)
}
