//go:build !linux

package probing

import "SystemMonitor/pkg/metrics"

// ClockSync is only implemented on Linux.
func ClockSync() metrics.ClockSync {
	return metrics.ClockSync{}
}
