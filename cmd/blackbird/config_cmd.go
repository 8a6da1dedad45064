package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Cody994/21905-SerialController/internal/config"
)

// configFilePath is --config when given, otherwise the default location
func (o *options) configFilePath() (string, error) {
	if o.configPath != "" {
		return o.configPath, nil
	}
	return config.GetConfigPath()
}

func newConfigCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or edit the configuration file",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the config file location and the settings in effect",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := o.configFilePath()
			if err != nil {
				return err
			}
			if o.jsonOutput() {
				return writeJSON(cmd.OutOrStdout(), map[string]any{"path": path, "config": o.file})
			}

			data, err := yaml.Marshal(o.file)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# %s", path)
			if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
				fmt.Fprint(out, " (not created yet, showing defaults)")
			}
			fmt.Fprintf(out, "\n%s", data)
			return nil
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := o.configFilePath()
			if err != nil {
				return err
			}
			if force {
				if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("failed to remove existing config: %w", err)
				}
			}
			if _, err := config.CreateDefaultConfig(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	label := &cobra.Command{
		Use:   "label input|output <port> [name]",
		Short: "Name a port for display (no name removes it)",
		Example: `  blackbird config label input 1 "Apple TV"
  blackbird config label output 2 Projector
  blackbird config label output 2`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ports, err := parsePorts("port", args[1:2])
			if err != nil {
				return err
			}
			name := ""
			if len(args) == 3 {
				name = strings.TrimSpace(args[2])
			}

			switch strings.ToLower(args[0]) {
			case "input":
				err = o.file.SetInputLabel(ports[0], name)
			case "output":
				err = o.file.SetOutputLabel(ports[0], name)
			default:
				return fmt.Errorf("expected input or output, got %q", args[0])
			}
			if err != nil {
				return err
			}

			path, err := o.configFilePath()
			if err != nil {
				return err
			}
			if err := o.file.SaveTo(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", path)
			return nil
		},
	}

	cmd.AddCommand(show, initCmd, label)
	return cmd
}
