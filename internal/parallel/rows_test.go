package parallel_test

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/katalvlaran/recurrence/internal/parallel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForRows_CoversEveryRowOnce(t *testing.T) {
	for _, workers := range []int{0, 1, 2, 7} {
		for _, n := range []int{0, 1, 5, 100, 1031} {
			seen := make([]int32, n)
			err := parallel.ForRows(n, workers, func(lo, hi int) error {
				for i := lo; i < hi; i++ {
					atomic.AddInt32(&seen[i], 1)
				}
				return nil
			})
			require.NoError(t, err)
			for i, c := range seen {
				assert.Equalf(t, int32(1), c, "row %d visited %d times (n=%d workers=%d)", i, c, n, workers)
			}
		}
	}
}

func TestForRows_PropagatesError(t *testing.T) {
	boom := errors.New("boom")
	err := parallel.ForRows(64, 4, func(lo, hi int) error {
		if lo <= 10 && 10 < hi {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
}
