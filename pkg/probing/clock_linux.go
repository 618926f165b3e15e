//go:build linux

package probing

import (
	"SystemMonitor/pkg/metrics"

	"golang.org/x/sys/unix"
)

// ClockSync reads the kernel's NTP discipline state through adjtimex.
func ClockSync() metrics.ClockSync {
	tx := &unix.Timex{}
	state, err := unix.Adjtimex(tx)
	if err != nil {
		return metrics.ClockSync{}
	}

	return metrics.ClockSync{
		Supported:       true,
		Synced:          state != unix.TIME_ERROR,
		OffsetSeconds:   float64(tx.Offset) / 1_000_000.0,
		MaxErrorSeconds: float64(tx.Maxerror) / 1_000_000.0,
	}
}
