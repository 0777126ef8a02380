// File: affinity/affinity.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral API for CPU affinity. Platform-specific implementations are
// located in separate files (affinity_linux.go, affinity_windows.go, etc.)
// guarded by build tags.
//
// Stress workers pin themselves so that contention on a pool's free-list head
// really crosses cores instead of being serialized on one.

package affinity

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrNotSupported is returned where thread affinity cannot be set.
var ErrNotSupported = errors.New("affinity: not supported on this platform")

// SetAffinity pins the current OS thread to a given logical CPU. Callers
// should hold runtime.LockOSThread for the pin to follow the goroutine.
// IDs outside the process cpuset are rejected by the OS.
func SetAffinity(cpuID int) error {
	if cpuID < 0 {
		return fmt.Errorf("affinity: negative cpu %d", cpuID)
	}
	return setAffinityPlatform(cpuID)
}

// CPUFor maps a worker index onto the allowed CPU IDs round-robin. With no
// allowed set known it falls back to worker % NumCPU.
func CPUFor(worker int, allowed []int) int {
	if worker < 0 {
		worker = -worker
	}
	if len(allowed) == 0 {
		return worker % runtime.NumCPU()
	}
	return allowed[worker%len(allowed)]
}

// PinWorker locks the calling goroutine to its OS thread and pins that thread
// to one of the CPUs the process may run on, chosen by CPUFor. The goroutine
// stays locked until it exits, so the runtime discards the pinned thread
// instead of reusing it for other goroutines.
func PinWorker(worker int) error {
	runtime.LockOSThread()
	allowed, _ := currentCPUs()
	return SetAffinity(CPUFor(worker, allowed))
}
