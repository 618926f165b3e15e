package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"SystemMonitor/pkg/collecting"
	"SystemMonitor/pkg/config"
	"SystemMonitor/pkg/metrics"
	"SystemMonitor/pkg/utils"
)

// infoMaxDisks caps the partitions listed by info.
const infoMaxDisks = 3

const infoRule = "============================================================"

// NewInfoCmd creates the info subcommand.
func NewInfoCmd(cfg *config.Config) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Print a static description of the host",
		Long: `Print platform, CPU, memory, disk, boot time, clock sync and GPU
information for this host.

Example:
  sysmon info
  sysmon info --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cmd, cfg); err != nil {
				return err
			}

			ctx := cmd.Context()
			manager := collecting.NewManager(ctx, newProbe(), collecting.WithCPUInterval(cfg.CPUInterval))
			defer manager.Close()

			info := manager.SystemInfo(ctx)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), info)
			}
			writeSystemInfo(cmd.OutOrStdout(), info)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")

	return cmd
}

func writeJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func writeSystemInfo(w io.Writer, info metrics.SystemInfo) {
	fmt.Fprintln(w, infoRule)
	fmt.Fprintln(w, "System information")
	fmt.Fprintln(w, infoRule)

	p := info.Platform
	platform := strings.TrimSpace(p.Platform + " " + p.PlatformVersion)
	if platform == "" {
		platform = p.OS
	}
	writeKeyValues(w, [][]string{
		{"Hostname", p.Hostname},
		{"Platform", platform},
		{"Kernel", p.KernelVersion},
		{"Architecture", p.Architecture},
		{"CPU", info.CPU.Model},
		{"Cores", fmt.Sprintf("%d physical, %d logical", info.CPU.PhysicalCores, info.CPU.LogicalCores)},
		{"Memory", fmt.Sprintf("%s total, %s available (%.1f%% used)",
			utils.FormatBytes(info.Memory.Total), utils.FormatBytes(info.Memory.Available), info.Memory.UsedPercent)},
		{"Swap", fmt.Sprintf("%s total, %s used", utils.FormatBytes(info.Memory.SwapTotal), utils.FormatBytes(info.Memory.SwapUsed))},
	})

	if len(info.Disks) > 0 {
		fmt.Fprintln(w, "\nDisks:")
		disks := info.Disks
		if len(disks) > infoMaxDisks {
			disks = disks[:infoMaxDisks]
		}
		table := newTable(w, []string{"Mount", "Type", "Used", "Total", "Use%"})
		for _, d := range disks {
			table.Append([]string{
				d.Mountpoint,
				d.Fstype,
				fmt.Sprintf("%.1f GB", float64(d.Used)/utils.BytesPerGB),
				fmt.Sprintf("%.1f GB", float64(d.Total)/utils.BytesPerGB),
				fmt.Sprintf("%.1f%%", d.UsedPercent),
			})
		}
		table.Render()
	}

	fmt.Fprintln(w)
	if !info.BootTime.IsZero() {
		fmt.Fprintf(w, "Boot time: %s\n", info.BootTime.Format("2006-01-02 15:04:05"))
	}
	writeClock(w, info.Clock)

	if len(info.GPUs) > 0 {
		fmt.Fprintln(w, "\nGPUs:")
		table := newTable(w, []string{"#", "Name", "Memory", "Util%", "Temp", "Driver"})
		for _, g := range info.GPUs {
			table.Append([]string{
				strconv.Itoa(g.Index),
				g.Name,
				fmt.Sprintf("%s / %s", utils.FormatBytes(g.MemoryUsed), utils.FormatBytes(g.MemoryTotal)),
				fmt.Sprintf("%.0f", g.UtilizationGPU),
				fmt.Sprintf("%.0fC", g.TemperatureC),
				g.DriverVersion,
			})
		}
		table.Render()
	}
	fmt.Fprintln(w, infoRule)
}

func writeClock(w io.Writer, c metrics.ClockSync) {
	if !c.Supported {
		fmt.Fprintln(w, "Clock sync: unavailable")
		return
	}
	state := "unsynchronized"
	if c.Synced {
		state = "synchronized"
	}
	fmt.Fprintf(w, "Clock sync: %s (offset %.6fs, max error %.6fs)\n", state, c.OffsetSeconds, c.MaxErrorSeconds)
}

func writeKeyValues(w io.Writer, rows [][]string) {
	table := newTable(w, nil)
	for _, row := range rows {
		if row[1] == "" {
			continue
		}
		table.Append([]string{row[0] + ":", row[1]})
	}
	table.Render()
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	if len(header) > 0 {
		table.SetHeader(header)
	}
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.SetColumnSeparator("")
	table.SetCenterSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	return table
}
