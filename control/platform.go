// control/platform.go
// Author: momentics <momentics@gmail.com>
//
// Platform debug probes: CPU topology facts that matter for lock-free
// contention analysis.

package control

import (
	"runtime"
	"unsafe"

	"golang.org/x/sys/cpu"
)

// RegisterPlatformProbes sets platform debug metrics.
func RegisterPlatformProbes(dp *DebugProbes) {
	dp.RegisterProbe("platform.cpus", func() any {
		return runtime.NumCPU()
	})
	dp.RegisterProbe("platform.gomaxprocs", func() any {
		return runtime.GOMAXPROCS(0)
	})
	dp.RegisterProbe("platform.cache_line_pad", func() any {
		return int(unsafe.Sizeof(cpu.CacheLinePad{}))
	})
}
