package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Cody994/21905-SerialController/internal/discovery"
	"github.com/Cody994/21905-SerialController/internal/matrix"
	"github.com/Cody994/21905-SerialController/internal/transport"
	"github.com/Cody994/21905-SerialController/internal/tui"
	"github.com/Cody994/21905-SerialController/internal/ui"
)

func newStatusCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show power, beep, routing, connections and EDIDs",
		Long: `Read every setting the matrix reports: power, beep, the source and
display of each output, and the signal and EDID profile of each input.

This sends 18 queries, one after another. The first one that fails stops
the read.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return o.withMatrix(func(m *matrix.Matrix) error {
				s, err := m.Snapshot(cmd.Context())
				if err != nil {
					return err
				}
				if o.jsonOutput() {
					return writeJSON(cmd.OutOrStdout(), s)
				}
				fmt.Fprintln(cmd.OutOrStdout(), ui.RenderSnapshot(s, o.file))
				return nil
			})
		},
	}
}

func newDeviceTypeCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "device-type",
		Short: "Show the device type byte the matrix reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return o.withMatrix(func(m *matrix.Matrix) error {
				t, err := m.QueryDeviceType(cmd.Context())
				if err != nil {
					return err
				}
				if o.jsonOutput() {
					return writeJSON(cmd.OutOrStdout(), map[string]int{"device_type": int(t)})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Device type: 0x%02X\n", t)
				return nil
			})
		},
	}
}

func newPortsCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "ports",
		Short: "List the serial ports on this machine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			ports, err := transport.ListPorts()
			if err != nil {
				return err
			}

			if o.jsonOutput() {
				return writeJSON(cmd.OutOrStdout(), map[string]any{"ports": ports, "configured": o.port})
			}

			out := cmd.OutOrStdout()
			if len(ports) == 0 {
				fmt.Fprintln(out, "No serial ports found.")
				return nil
			}
			for _, p := range ports {
				marker := " "
				if p == o.port {
					marker = "*"
				}
				fmt.Fprintf(out, "%s %s\n", marker, p)
			}
			if o.port != "" {
				fmt.Fprintln(out, "\n* configured port")
			}
			return nil
		},
	}
}

func newWatchCmd(o *options) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Live dashboard with keyboard routing",
		Long: `Open a full screen dashboard that refreshes the matrix state and lets you
route from the keyboard. Press ? inside the dashboard for the keys.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return o.withMatrix(func(m *matrix.Matrix) error {
				return tui.RunDashboard(m, o.file, interval)
			})
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", tui.DefaultRefreshInterval, "Time between automatic refreshes (0 disables)")
	return cmd
}

func newBridgesCmd(o *options) *cobra.Command {
	var (
		timeout time.Duration
		pick    bool
	)

	cmd := &cobra.Command{
		Use:   "bridges",
		Short: "Find blackbird bridges on the local network",
		Long: `Browse mDNS for machines running 'blackbird serve --advertise'.
With --pick, choose one interactively and print its address.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			out := cmd.OutOrStdout()

			if pick {
				b, err := tui.PickBridge(timeout)
				if err != nil {
					return err
				}
				if b == nil {
					return nil
				}
				if o.jsonOutput() {
					return writeJSON(out, b)
				}
				fmt.Fprintln(out, b.BaseURL())
				return nil
			}

			scanner := discovery.NewScanner()
			scanner.Timeout = timeout
			bridges, err := scanner.ScanForBridges(cmd.Context())
			if err != nil {
				return err
			}

			if o.jsonOutput() {
				return writeJSON(out, bridges)
			}
			if len(bridges) == 0 {
				fmt.Fprintln(out, "No bridges found.")
				return nil
			}
			for _, b := range bridges {
				fmt.Fprintf(out, "%-24s %-28s serial=%s version=%s\n",
					b.Instance, b.BaseURL(), b.GetMetadata("serial"), b.GetMetadata("version"))
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", discovery.DefaultScanTimeout, "How long to listen for answers")
	cmd.Flags().BoolVar(&pick, "pick", false, "Choose a bridge interactively")
	return cmd
}
