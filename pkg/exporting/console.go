package exporting

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"SystemMonitor/pkg/metrics"
	"SystemMonitor/pkg/utils"

	"github.com/olekukonko/tablewriter"
)

const (
	consoleRule        = "=================================================="
	consoleNameWidth   = 20
	consoleDefaultTopN = 5
)

// ConsoleSink prints a human-readable report for every snapshot.
type ConsoleSink struct {
	out  io.Writer
	topN int
	mu   sync.Mutex
}

// NewConsoleSink writes to out, or stdout when out is nil. topN caps the
// process table; zero or less means the default of five.
func NewConsoleSink(out io.Writer, topN int) *ConsoleSink {
	if out == nil {
		out = os.Stdout
	}
	if topN <= 0 {
		topN = consoleDefaultTopN
	}
	return &ConsoleSink{out: out, topN: topN}
}

func (c *ConsoleSink) Consume(s metrics.Snapshot) error {
	var b strings.Builder

	fmt.Fprintf(&b, "\n%s\n", consoleRule)
	fmt.Fprintf(&b, "System report - %s\n", s.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "%s\n", consoleRule)

	fmt.Fprintf(&b, "\nCPU: %.1f%%\n", s.CPUPercent)
	if len(s.CPUPerCore) > 0 {
		cores := make([]string, len(s.CPUPerCore))
		for i, v := range s.CPUPerCore {
			cores[i] = fmt.Sprintf("%.1f%%", v)
		}
		fmt.Fprintf(&b, "   Per core: %s\n", strings.Join(cores, ", "))
	}

	fmt.Fprintf(&b, "\nMemory: %.1f%%\n", s.MemoryPercent)
	fmt.Fprintf(&b, "   Used/Total: %.2fGB / %.2fGB\n", s.MemoryUsedGB, s.MemoryTotalGB)

	fmt.Fprintf(&b, "\nDisk:\n")
	mounts := make([]string, 0, len(s.DiskUsage))
	for m := range s.DiskUsage {
		mounts = append(mounts, m)
	}
	sort.Strings(mounts)
	for _, m := range mounts {
		fmt.Fprintf(&b, "   %s: %.1f%%\n", m, s.DiskUsage[m])
	}

	fmt.Fprintf(&b, "\nNetwork:\n")
	fmt.Fprintf(&b, "   Sent: %.2fMB\n", s.NetworkSentMB)
	fmt.Fprintf(&b, "   Received: %.2fMB\n", s.NetworkRecvMB)
	fmt.Fprintf(&b, "   Connections: %d\n", s.NetworkConnections)

	if len(s.TopProcesses) > 0 {
		fmt.Fprintf(&b, "\nTop processes:\n")
		c.renderProcesses(&b, s.TopProcesses)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := io.WriteString(c.out, b.String()); err != nil {
		return fmt.Errorf("console write: %w", err)
	}
	return nil
}

func (c *ConsoleSink) renderProcesses(w io.Writer, procs []metrics.ProcessSummary) {
	if len(procs) > c.topN {
		procs = procs[:c.topN]
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"PID", "Name", "CPU%", "MEM%"})
	table.SetAutoFormatHeaders(false)
	table.SetBorder(false)
	table.SetColumnSeparator("")
	table.SetCenterSeparator("")
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, p := range procs {
		table.Append([]string{
			strconv.Itoa(int(p.PID)),
			utils.Truncate(p.Name, consoleNameWidth),
			fmt.Sprintf("%.1f", p.CPUPercent),
			fmt.Sprintf("%.1f", p.MemoryPercent),
		})
	}
	table.Render()
}

func (c *ConsoleSink) Close() error { return nil }
