package probing

import (
	"context"
	"os"
	"os/exec"
	"testing"
	"time"

	"SystemMonitor/pkg/metrics"
)

func TestHostReadings(t *testing.T) {
	ctx := context.Background()
	h := NewHost()

	vm, err := h.VirtualMemory(ctx)
	if err != nil {
		t.Skipf("virtual memory unavailable: %v", err)
	}
	if vm.Total == 0 {
		t.Error("expected non-zero total memory")
	}
	if vm.UsedPercent < 0 || vm.UsedPercent > 100 {
		t.Errorf("memory percent out of range: %f", vm.UsedPercent)
	}

	pct, err := h.CPUPercent(ctx, DefaultCPUInterval)
	if err != nil {
		t.Skipf("cpu percent unavailable: %v", err)
	}
	if pct < 0 || pct > 100 {
		t.Errorf("cpu percent out of range: %f", pct)
	}

	n, err := h.CPUCounts(ctx, true)
	if err != nil {
		t.Skipf("cpu counts unavailable: %v", err)
	}
	if n <= 0 {
		t.Errorf("expected positive logical core count, got %d", n)
	}
}

func TestHostPartitionsSkipUnreadable(t *testing.T) {
	disks, err := NewHost().Partitions(context.Background())
	if err != nil {
		t.Skipf("partitions unavailable: %v", err)
	}
	for _, d := range disks {
		if d.Mountpoint == "" {
			t.Errorf("partition %q has empty mountpoint", d.Device)
		}
		if d.UsedPercent < 0 || d.UsedPercent > 100 {
			t.Errorf("partition %s percent out of range: %f", d.Mountpoint, d.UsedPercent)
		}
	}
}

func ownCPU(t *testing.T, h *Host) float64 {
	t.Helper()
	procs, err := h.Processes(context.Background())
	if err != nil {
		t.Skipf("process list unavailable: %v", err)
	}
	self := int32(os.Getpid())
	for _, p := range procs {
		if p.PID == self {
			return p.CPUPercent
		}
	}
	t.Skipf("own process %d not listed", self)
	return 0
}

func burnCPU(d time.Duration) {
	deadline := time.Now().Add(d)
	x := 0
	for time.Now().Before(deadline) {
		x++
	}
	_ = x
}

func TestHostProcessCPUIsRecent(t *testing.T) {
	if testing.Short() {
		t.Skip("burns CPU for a second")
	}
	h := NewHost()

	if got := ownCPU(t, h); got != 0 {
		t.Errorf("first reading = %.1f%%, want 0 for an unseen process", got)
	}

	burnCPU(time.Second)
	if got := ownCPU(t, h); got < 20 {
		t.Errorf("busy reading = %.1f%%, want the burst to show", got)
	}

	time.Sleep(time.Second)
	if got := ownCPU(t, h); got >= 20 {
		t.Errorf("idle reading = %.1f%%, earlier burst still counted", got)
	}
}

func TestHostForgetsExitedProcesses(t *testing.T) {
	path, err := exec.LookPath("sleep")
	if err != nil {
		t.Skip("sleep not available")
	}
	cmd := exec.Command(path, "30")
	if err := cmd.Start(); err != nil {
		t.Skipf("cannot start child: %v", err)
	}
	pid := int32(cmd.Process.Pid)

	h := NewHost()
	if _, err := h.Processes(context.Background()); err != nil {
		cmd.Process.Kill()
		cmd.Wait()
		t.Skipf("process list unavailable: %v", err)
	}
	if _, ok := h.procs[pid]; !ok {
		t.Errorf("child %d not tracked after listing", pid)
	}

	cmd.Process.Kill()
	cmd.Wait()

	procs, err := h.Processes(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := h.procs[pid]; ok {
		t.Errorf("exited child %d still tracked", pid)
	}
	if hasPID(procs, pid) {
		t.Errorf("exited child %d still listed", pid)
	}
}

func hasPID(procs []metrics.ProcessSummary, pid int32) bool {
	for _, p := range procs {
		if p.PID == pid {
			return true
		}
	}
	return false
}

func TestClockSync(t *testing.T) {
	cs := ClockSync()
	if !cs.Supported && cs.Synced {
		t.Error("unsupported clock reported as synced")
	}
}

func BenchmarkVirtualMemory(b *testing.B) {
	ctx := context.Background()
	h := NewHost()
	for i := 0; i < b.N; i++ {
		_, _ = h.VirtualMemory(ctx)
	}
}

func BenchmarkNetCounters(b *testing.B) {
	ctx := context.Background()
	h := NewHost()
	for i := 0; i < b.N; i++ {
		_, _ = h.NetCounters(ctx)
	}
}
