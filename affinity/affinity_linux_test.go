//go:build linux

package affinity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPinWorkerStaysInsideCpuset(t *testing.T) {
	allowed, err := currentCPUs()
	require.NoError(t, err)
	require.NotEmpty(t, allowed)

	last := len(allowed) - 1
	done := make(chan struct{})
	go func() {
		defer close(done)
		if !assert.NoError(t, PinWorker(last)) {
			return
		}
		cpus, err := currentCPUs()
		assert.NoError(t, err)
		assert.Equal(t, []int{allowed[last]}, cpus)
	}()
	<-done
}

func TestSetAffinityAcceptsHighAllowedID(t *testing.T) {
	allowed, err := currentCPUs()
	require.NoError(t, err)
	require.NotEmpty(t, allowed)

	done := make(chan struct{})
	go func() {
		defer close(done)
		assert.NoError(t, PinWorker(0))
		assert.NoError(t, SetAffinity(allowed[len(allowed)-1]))
	}()
	<-done
}

func TestSetAffinityOutsideCpusetFails(t *testing.T) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = PinWorker(0)
		assert.Error(t, SetAffinity(1023+1))
	}()
	<-done
}
