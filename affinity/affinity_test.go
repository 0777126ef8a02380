package affinity

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCPUForUsesAllowedSet(t *testing.T) {
	allowed := []int{4, 5, 6, 7}
	cases := []struct {
		worker int
		want   int
	}{
		{0, 4},
		{1, 5},
		{3, 7},
		{4, 4},
		{9, 5},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CPUFor(tc.worker, allowed), "worker %d", tc.worker)
	}
}

func TestCPUForFallsBackToNumCPU(t *testing.T) {
	n := runtime.NumCPU()
	assert.Equal(t, 0, CPUFor(0, nil))
	assert.Equal(t, (n+1)%n, CPUFor(n+1, nil))
}

func TestSetAffinityRejectsNegative(t *testing.T) {
	assert.Error(t, SetAffinity(-1))
}
