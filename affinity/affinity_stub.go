//go:build !linux && !windows
// +build !linux,!windows

// File: affinity/affinity_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub implementation for unsupported platforms.

package affinity

func setAffinityPlatform(cpuID int) error { return ErrNotSupported }

func currentCPUs() ([]int, error) { return nil, ErrNotSupported }
