package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Cody994/21905-SerialController/internal/discovery"
	"github.com/Cody994/21905-SerialController/internal/matrix"
	"github.com/Cody994/21905-SerialController/internal/remote"
	"github.com/Cody994/21905-SerialController/internal/ui"
)

// remoteOptions selects the bridge for 'blackbird remote'
type remoteOptions struct {
	url     string
	timeout time.Duration
}

// client returns a client for --url, or for the only bridge found on the
// network when --url is empty
func (r *remoteOptions) client(ctx context.Context) (*remote.Client, error) {
	if r.url != "" {
		c := remote.NewClient(r.url)
		c.SetTimeout(r.timeout)
		return c, nil
	}

	scanner := discovery.NewScanner()
	bridges, err := scanner.ScanForBridges(ctx)
	if err != nil {
		return nil, err
	}
	switch len(bridges) {
	case 0:
		return nil, errors.New("no bridges found; pass --url or start 'blackbird serve --advertise'")
	case 1:
		c := remote.ForBridge(bridges[0])
		c.SetTimeout(r.timeout)
		return c, nil
	default:
		names := make([]string, len(bridges))
		for i, b := range bridges {
			names[i] = b.Instance + " (" + b.BaseURL() + ")"
		}
		return nil, fmt.Errorf("found %d bridges, pick one with --url: %s", len(bridges), strings.Join(names, ", "))
	}
}

// remoteTroubleshoot uses the bridge's hint when it sent one
func remoteTroubleshoot(err error) (string, []string) {
	if hint := remote.TroubleshootingHint(err); hint != "" {
		return ui.HintTips(hint)
	}
	return troubleshoot(err)
}

func newRemoteCmd(o *options) *cobra.Command {
	r := &remoteOptions{}

	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Control a matrix through a bridge on another machine",
		Long: `Send commands to a machine running 'blackbird serve'. Without --url the
bridge is found over mDNS, which works when exactly one is advertised.`,
		Example: `  blackbird remote --url 192.168.1.20:8421 status
  blackbird remote route 2 1 3`,
	}
	cmd.PersistentFlags().StringVar(&r.url, "url", "", "Bridge address (host:port or http://host:port)")
	cmd.PersistentFlags().DurationVar(&r.timeout, "request-timeout", remote.DefaultTimeout, "Time to wait for each bridge request")

	// runRemote prints a result box in detailed mode, or the JSON result
	runRemote := func(cmd *cobra.Command, title string, params []ui.Field, op func(c *remote.Client) ([]ui.Field, any, error)) error {
		cmd.SilenceUsage = true
		c, err := r.client(cmd.Context())
		if err != nil {
			return err
		}

		if o.jsonOutput() {
			_, result, err := op(c)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), result)
		}

		err = ui.NewRunner(ui.RunnerConfig{
			Title:        title,
			Command:      commandLine(cmd),
			Params:       append([]ui.Field{ui.F("Bridge", c.BaseURL)}, params...),
			Output:       cmd.OutOrStdout(),
			Troubleshoot: remoteTroubleshoot,
		}).Run(func() ([]ui.Field, error) {
			details, _, err := op(c)
			return details, err
		})
		if err != nil {
			return &shownError{err}
		}
		return nil
	}

	health := &cobra.Command{
		Use:   "health",
		Short: "Check that the bridge is up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemote(cmd, "Bridge Health", nil, func(c *remote.Client) ([]ui.Field, any, error) {
				h, err := c.Health(cmd.Context())
				if err != nil {
					return nil, nil, err
				}
				return []ui.Field{ui.F("Version", h.Version), ui.F("Platform", h.Platform)}, h, nil
			})
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show the full matrix state through the bridge",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			c, err := r.client(cmd.Context())
			if err != nil {
				return err
			}
			s, err := c.Status(cmd.Context())
			if err != nil {
				return err
			}
			if o.jsonOutput() {
				return writeJSON(cmd.OutOrStdout(), s)
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.RenderSnapshot(s, o.file))
			return nil
		},
	}

	var all bool
	route := &cobra.Command{
		Use:   "route <input> [output...]",
		Short: "Route an input through the bridge",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ports, err := parsePorts("port", args)
			if err != nil {
				return err
			}
			input, outputs := ports[0], ports[1:]
			if all == (len(outputs) > 0) {
				return errors.New("give outputs or --all")
			}
			if all {
				outputs = matrix.Ports()
			}
			return runRemote(cmd, "Route Input",
				[]ui.Field{ui.F("Input", o.file.InputLabel(input)), ui.F("Outputs", strings.Join(o.outputNames(outputs), ", "))},
				func(c *remote.Client) ([]ui.Field, any, error) {
					if err := c.Route(cmd.Context(), input, outputs...); err != nil {
						return nil, nil, err
					}
					routes := make([]matrix.Route, len(outputs))
					for i, out := range outputs {
						routes[i] = matrix.Route{Output: out, Input: input}
					}
					return nil, routes, nil
				})
		},
	}
	route.Flags().BoolVar(&all, "all", false, "Route to outputs 1-4")

	switchCmd := func(use, title string, set func(c *remote.Client, ctx context.Context, on bool) error) *cobra.Command {
		return &cobra.Command{
			Use:   use + " on|off",
			Short: "Switch " + use + " through the bridge",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				on, err := parseSwitch(args[0])
				if err != nil {
					return err
				}
				return runRemote(cmd, title+" "+ui.OnOff(on), nil, func(c *remote.Client) ([]ui.Field, any, error) {
					if err := set(c, cmd.Context(), on); err != nil {
						return nil, nil, err
					}
					return nil, map[string]bool{use: on}, nil
				})
			},
		}
	}

	cmd.AddCommand(
		health,
		status,
		route,
		switchCmd("power", "Power", (*remote.Client).Power),
		switchCmd("beep", "Beep", (*remote.Client).Beep),
	)
	return cmd
}
