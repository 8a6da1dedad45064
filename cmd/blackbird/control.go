package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Cody994/21905-SerialController/internal/matrix"
	"github.com/Cody994/21905-SerialController/internal/protocol"
	"github.com/Cody994/21905-SerialController/internal/ui"
)

func (o *options) inputNames(ports []int) string {
	names := make([]string, len(ports))
	for i, p := range ports {
		if p == protocol.AllInputs {
			names[i] = "All inputs"
			continue
		}
		names[i] = o.file.InputLabel(p)
	}
	return strings.Join(names, ", ")
}

func (o *options) outputNames(ports []int) []string {
	names := make([]string, len(ports))
	for i, p := range ports {
		names[i] = o.file.OutputLabel(p)
	}
	return names
}

func newRouteCmd(o *options) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "route <input> [output...]",
		Short: "Show an input on one or more outputs",
		Long: `Route an input (1-4) to one or more outputs (1-4).

One command is sent per output, in the order given. If one fails, the
outputs before it have already switched and the ones after it are left
alone; the result shows which.`,
		Example: `  # Input 2 to output 1
  blackbird route 2 1

  # Input 3 to outputs 1, 2 and 4
  blackbird route 3 1 2 4

  # Input 1 to every output
  blackbird route 1 --all`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ports, err := parsePorts("port", args)
			if err != nil {
				return err
			}
			input, outputs := ports[0], ports[1:]
			switch {
			case all && len(outputs) > 0:
				return errors.New("give outputs or --all, not both")
			case all:
				outputs = matrix.Ports()
			case len(outputs) == 0:
				return errors.New("give at least one output, or --all")
			}

			return o.run(cmd, ui.RunnerConfig{
				Title:  "Route Input",
				Params: []ui.Field{ui.F("Input", o.file.InputLabel(input)), ui.F("Outputs", strings.Join(o.outputNames(outputs), ", "))},
				Steps:  o.outputNames(outputs),
			}, func(m *matrix.Matrix) ([]ui.Field, any, error) {
				if err := m.RouteInput(cmd.Context(), input, outputs...); err != nil {
					return nil, nil, err
				}
				routes := make([]matrix.Route, len(outputs))
				for i, out := range outputs {
					routes[i] = matrix.Route{Output: out, Input: input}
				}
				return []ui.Field{ui.F("Source", o.file.InputLabel(input))}, routes, nil
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Route to outputs 1-4")
	return cmd
}

func newRoutingCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "routing [output]",
		Short: "Show which input each output is showing",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return o.withMatrix(func(m *matrix.Matrix) error {
				var routes []matrix.Route
				if len(args) == 1 {
					ports, err := parsePorts("output", args)
					if err != nil {
						return err
					}
					in, err := m.QueryRouting(cmd.Context(), ports[0])
					if err != nil {
						return err
					}
					routes = []matrix.Route{{Output: ports[0], Input: in}}
				} else {
					var err error
					if routes, err = m.QueryRoutingAll(cmd.Context()); err != nil {
						return err
					}
				}

				if o.jsonOutput() {
					return writeJSON(cmd.OutOrStdout(), routes)
				}
				fmt.Fprintln(cmd.OutOrStdout(), ui.RenderRoutes(routes, o.file))
				return nil
			})
		},
	}
}

func newEDIDCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edid",
		Short: "Assign, copy or read input EDIDs",
		Long: `Manage the EDID each input presents to its source.

An input can use one of 15 built-in profiles ('blackbird edid profiles'),
or a copy of the EDID read from the display on an output.`,
	}

	set := &cobra.Command{
		Use:     "set <profile> <input>",
		Short:   "Assign a built-in EDID profile (1-15) to an input",
		Example: "  # 4K30 with HD audio on input 2\n  blackbird edid set 12 2",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			nums, err := parsePorts("argument", args)
			if err != nil {
				return err
			}
			profile, input := protocol.EDIDProfile(nums[0]), nums[1]
			return o.run(cmd, ui.RunnerConfig{
				Title:  "Set EDID",
				Params: []ui.Field{ui.F("Profile", fmt.Sprintf("%d (%s)", int(profile), profile)), ui.F("Input", o.file.InputLabel(input))},
			}, func(m *matrix.Matrix) ([]ui.Field, any, error) {
				if err := m.SetEDIDProfile(cmd.Context(), profile, input); err != nil {
					return nil, nil, err
				}
				return []ui.Field{ui.F("Profile", profile.String())}, edidResult{Input: input, Profile: int(profile), Name: profile.String()}, nil
			})
		},
	}

	copyCmd := &cobra.Command{
		Use:   "copy <output> <input...>",
		Short: "Copy the EDID of the display on an output to inputs",
		Long: `Copy the EDID of the display connected to an output onto one or more
inputs. Input 0 means all inputs in a single command.`,
		Example: `  # Inputs 1 and 3 take the EDID of the display on output 2
  blackbird edid copy 2 1 3

  # Every input takes the EDID from output 1
  blackbird edid copy 1 0`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			nums, err := parsePorts("port", args)
			if err != nil {
				return err
			}
			source, targets := nums[0], nums[1:]
			steps := make([]string, len(targets))
			for i, t := range targets {
				steps[i] = o.inputNames([]int{t})
			}
			return o.run(cmd, ui.RunnerConfig{
				Title:  "Copy EDID",
				Params: []ui.Field{ui.F("From", o.file.OutputLabel(source)), ui.F("To", o.inputNames(targets))},
				Steps:  steps,
			}, func(m *matrix.Matrix) ([]ui.Field, any, error) {
				if err := m.CopyEDID(cmd.Context(), source, targets...); err != nil {
					return nil, nil, err
				}
				return []ui.Field{ui.F("Source", o.file.OutputLabel(source))},
					map[string]any{"output": source, "inputs": targets}, nil
			})
		},
	}

	get := &cobra.Command{
		Use:   "get [input]",
		Short: "Show the EDID profile assigned to an input (default: all inputs)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			inputs := matrix.Ports()
			if len(args) == 1 {
				var err error
				if inputs, err = parsePorts("input", args); err != nil {
					return err
				}
			}
			return o.withMatrix(func(m *matrix.Matrix) error {
				results := make([]edidResult, 0, len(inputs))
				for _, in := range inputs {
					p, err := m.QueryEDIDProfile(cmd.Context(), in)
					if err != nil {
						return err
					}
					results = append(results, edidResult{Input: in, Profile: int(p), Name: p.String()})
				}

				if o.jsonOutput() {
					return writeJSON(cmd.OutOrStdout(), results)
				}
				for _, r := range results {
					fmt.Fprintf(cmd.OutOrStdout(), "%-24s %2d  %s\n", o.file.InputLabel(r.Input), r.Profile, r.Name)
				}
				return nil
			})
		},
	}

	profiles := &cobra.Command{
		Use:   "profiles",
		Short: "List the built-in EDID profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.jsonOutput() {
				list := make([]edidResult, 0, protocol.MaxEDIDProfile)
				for _, p := range protocol.EDIDProfiles() {
					list = append(list, edidResult{Profile: int(p), Name: p.String()})
				}
				return writeJSON(cmd.OutOrStdout(), list)
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.RenderEDIDProfiles())
			return nil
		},
	}

	cmd.AddCommand(set, copyCmd, get, profiles)
	return cmd
}

type edidResult struct {
	Input   int    `json:"input,omitempty"`
	Profile int    `json:"profile"`
	Name    string `json:"name"`
}

// newSwitchCmd builds power and beep, which share on|off|status
func newSwitchCmd(o *options, use, short, title string,
	set func(m *matrix.Matrix, cmd *cobra.Command, on bool) error,
	query func(m *matrix.Matrix, cmd *cobra.Command) (bool, error),
) *cobra.Command {
	return &cobra.Command{
		Use:       use + " on|off|status",
		Short:     short,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"on", "off", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.EqualFold(args[0], "status") {
				cmd.SilenceUsage = true
				return o.withMatrix(func(m *matrix.Matrix) error {
					on, err := query(m, cmd)
					if err != nil {
						return err
					}
					if o.jsonOutput() {
						return writeJSON(cmd.OutOrStdout(), map[string]bool{use: on})
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", title, ui.OnOff(on))
					return nil
				})
			}

			on, err := parseSwitch(args[0])
			if err != nil {
				return err
			}
			return o.run(cmd, ui.RunnerConfig{
				Title:  title + " " + ui.OnOff(on),
				Params: []ui.Field{ui.F(title, ui.OnOff(on))},
			}, func(m *matrix.Matrix) ([]ui.Field, any, error) {
				if err := set(m, cmd, on); err != nil {
					return nil, nil, err
				}
				return []ui.Field{ui.F(title, ui.OnOff(on))}, map[string]bool{use: on}, nil
			})
		},
	}
}

func newPowerCmd(o *options) *cobra.Command {
	return newSwitchCmd(o, "power", "Turn the matrix on, put it in standby, or show which", "Power",
		func(m *matrix.Matrix, cmd *cobra.Command, on bool) error { return m.Power(cmd.Context(), on) },
		func(m *matrix.Matrix, cmd *cobra.Command) (bool, error) { return m.QueryPower(cmd.Context()) },
	)
}

func newBeepCmd(o *options) *cobra.Command {
	return newSwitchCmd(o, "beep", "Turn the front panel beep on or off, or show which", "Beep",
		func(m *matrix.Matrix, cmd *cobra.Command, on bool) error { return m.Beep(cmd.Context(), on) },
		func(m *matrix.Matrix, cmd *cobra.Command) (bool, error) { return m.QueryBeep(cmd.Context()) },
	)
}

func newRebootCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "reboot",
		Short: "Restart the matrix",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, ui.RunnerConfig{Title: "Reboot"}, func(m *matrix.Matrix) ([]ui.Field, any, error) {
				if err := m.Reboot(cmd.Context()); err != nil {
					return nil, nil, err
				}
				return nil, map[string]bool{"rebooted": true}, nil
			})
		},
	}
}

func newFactoryResetCmd(o *options) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "factory-reset",
		Short: "Restore the matrix to factory settings",
		Long: `Restore the matrix to factory settings. Routing and EDID assignments are
lost. You are asked to confirm unless --yes is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				if o.jsonOutput() {
					return errors.New("factory-reset with --format json needs --yes")
				}
				if !ui.FactoryResetConfirmation(cmd.InOrStdin(), cmd.OutOrStdout()) {
					return &shownError{errors.New("factory reset cancelled")}
				}
			}
			return o.run(cmd, ui.RunnerConfig{Title: "Factory Reset"}, func(m *matrix.Matrix) ([]ui.Field, any, error) {
				if err := m.FactoryReset(cmd.Context()); err != nil {
					return nil, nil, err
				}
				return nil, map[string]bool{"factory_reset": true}, nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}
