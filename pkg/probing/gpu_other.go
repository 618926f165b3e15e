//go:build !linux || !cgo

package probing

import "SystemMonitor/pkg/metrics"

// GPUs is only implemented on Linux.
func GPUs() []metrics.GPUInfo { return nil }
