// Blackbird controls a Monoprice Blackbird 4x4 HDMI matrix (model 21905)
// over its RS-232 port.
//
// It routes inputs to outputs, manages EDID profiles, power and the front
// panel beep, shows the live matrix state, and can run a small HTTP and
// WebSocket bridge so other machines on the network can do the same.
//
// Usage:
//
//	blackbird [command] [flags]
//
// See 'blackbird --help' for available commands.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Cody994/21905-SerialController/internal/logging"
	"github.com/Cody994/21905-SerialController/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).ExecuteContext(ctx)
	stop()
	logging.Sync()

	if err != nil {
		// Failures already shown in a result box only need the exit code
		var shown *shownError
		if !errors.As(err, &shown) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Each call has its own flag state.
func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	o := &options{}

	root := &cobra.Command{
		Use:   "blackbird",
		Short: "Monoprice Blackbird 4x4 HDMI matrix controller",
		Long: `Control a Monoprice Blackbird 4x4 HDMI matrix (model 21905) over RS-232.

Route inputs to outputs, assign or copy EDIDs, switch power and the front
panel beep, and read back everything the matrix reports. 'blackbird serve'
shares the matrix on the network over HTTP and WebSocket.

Serial settings come from the config file (see 'blackbird config show'),
and the global flags override them.`,
		Version:       version.Version,
		SilenceErrors: true,
		Example: `  # Show input 2 on outputs 1 and 3
  blackbird route 2 1 3 --port /dev/ttyUSB0

  # Show input 4 everywhere
  blackbird route 4 --all

  # Full matrix state as JSON
  blackbird status --format json

  # Try the commands without hardware
  blackbird status --simulate`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.setup(cmd)
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	// Disable automatic completion command generation
	root.CompletionOptions.DisableDefaultCmd = true

	o.bindFlags(root)

	root.AddCommand(
		newRouteCmd(o),
		newRoutingCmd(o),
		newEDIDCmd(o),
		newPowerCmd(o),
		newBeepCmd(o),
		newRebootCmd(o),
		newFactoryResetCmd(o),
		newStatusCmd(o),
		newDeviceTypeCmd(o),
		newPortsCmd(o),
		newWatchCmd(o),
		newBridgesCmd(o),
		newServeCmd(o),
		newRemoteCmd(o),
		newConfigCmd(o),
		newVersionCmd(o),
	)

	return root
}

func newVersionCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.jsonOutput() {
				return writeJSON(cmd.OutOrStdout(), version.Info())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "blackbird %s\n", version.Full())
			return nil
		},
	}
}
