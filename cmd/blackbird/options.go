package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Cody994/21905-SerialController/internal/config"
	"github.com/Cody994/21905-SerialController/internal/emulator"
	"github.com/Cody994/21905-SerialController/internal/logging"
	"github.com/Cody994/21905-SerialController/internal/matrix"
	"github.com/Cody994/21905-SerialController/internal/transport"
	"github.com/Cody994/21905-SerialController/internal/ui"
)

// Output formats
const (
	formatDetailed = "detailed"
	formatJSON     = "json"
)

// options holds the global flags and the loaded config file
type options struct {
	configPath     string
	port           string
	baud           int
	timeout        time.Duration
	verifyChecksum bool
	logLevel       string
	format         string
	simulate       bool

	file *config.File
}

func (o *options) bindFlags(root *cobra.Command) {
	f := root.PersistentFlags()
	f.StringVar(&o.configPath, "config", "", "Config file (default: "+config.ConfigPathEnvVar+" or the user config dir)")
	f.StringVarP(&o.port, "port", "p", "", "Serial port (e.g. /dev/ttyUSB0, COM3)")
	f.IntVar(&o.baud, "baud", config.DefaultBaudRate, "Baud rate")
	f.DurationVar(&o.timeout, "timeout", config.DefaultReadTimeout, "Time to wait for each reply")
	f.BoolVar(&o.verifyChecksum, "verify-checksum", false, "Reject replies whose checksum byte is wrong")
	f.StringVar(&o.logLevel, "log-level", "", "Log level (debug, info, warn, error); silent when unset")
	f.StringVar(&o.format, "format", formatDetailed, "Output format (detailed, json)")
	f.BoolVar(&o.simulate, "simulate", false, "Talk to a built-in emulated matrix instead of a serial port")
}

// setup initializes logging, loads the config file and applies flag
// overrides on top of it
func (o *options) setup(cmd *cobra.Command) error {
	if err := logging.Initialize(o.logLevel); err != nil {
		return err
	}

	switch o.format {
	case formatDetailed, formatJSON:
	default:
		return fmt.Errorf("unknown --format %q (use detailed or json)", o.format)
	}

	var err error
	if o.configPath != "" {
		o.file, err = config.LoadFrom(o.configPath)
	} else {
		o.file, err = config.Load()
	}
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if !flags.Changed("port") && o.file.Serial.Port != "" {
		o.port = o.file.Serial.Port
	}
	if !flags.Changed("baud") {
		o.baud = o.file.Serial.BaudRate
	}
	if !flags.Changed("timeout") {
		o.timeout = o.file.Serial.ReadTimeout
	}
	if !flags.Changed("verify-checksum") {
		o.verifyChecksum = o.file.Protocol.VerifyChecksum
	}

	logging.Debug("Settings resolved",
		zap.String("port", o.port),
		zap.Int("baud", o.baud),
		zap.Duration("timeout", o.timeout),
		zap.Bool("verify_checksum", o.verifyChecksum),
		zap.Bool("simulate", o.simulate),
	)
	return nil
}

func (o *options) jsonOutput() bool {
	return o.format == formatJSON
}

// portName describes where commands go, for headers
func (o *options) portName() string {
	if o.simulate {
		return "simulated matrix"
	}
	return o.port
}

// openMatrix opens the transport and returns a Matrix plus its closer
func (o *options) openMatrix() (*matrix.Matrix, func(), error) {
	opts := []matrix.Option{
		matrix.WithChecksumVerification(o.verifyChecksum),
		matrix.WithLogger(logging.GetLogger()),
	}

	if o.simulate {
		return matrix.New(emulator.New(), opts...), func() {}, nil
	}

	port, err := transport.Open(transport.Config{
		Port:        o.port,
		BaudRate:    o.baud,
		ReadTimeout: o.timeout,
	})
	if err != nil {
		return nil, nil, err
	}
	closer := func() {
		if err := port.Close(); err != nil {
			logging.Warn("Failed to close serial port", zap.Error(err))
		}
	}
	return matrix.New(port, opts...), closer, nil
}

// withMatrix opens the matrix for the duration of fn
func (o *options) withMatrix(fn func(m *matrix.Matrix) error) error {
	m, closeFn, err := o.openMatrix()
	if err != nil {
		return err
	}
	defer closeFn()
	return fn(m)
}

// shownError is an error whose details were already printed
type shownError struct {
	err error
}

func (e *shownError) Error() string { return e.err.Error() }
func (e *shownError) Unwrap() error { return e.err }

// troubleshoot turns an error into a failure box title and tips
func troubleshoot(err error) (string, []string) {
	return ui.HintTips(matrix.TroubleshootingHint(err))
}

// run executes op in the selected output format. Detailed output goes
// through a ui.Runner; JSON output prints jsonResult on success.
func (o *options) run(cmd *cobra.Command, rc ui.RunnerConfig, op func(m *matrix.Matrix) ([]ui.Field, any, error)) error {
	cmd.SilenceUsage = true

	if o.jsonOutput() {
		return o.withMatrix(func(m *matrix.Matrix) error {
			_, result, err := op(m)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), result)
		})
	}

	rc.Output = cmd.OutOrStdout()
	rc.Command = commandLine(cmd)
	rc.Troubleshoot = troubleshoot
	rc.Params = append([]ui.Field{ui.F("Port", o.portName())}, rc.Params...)

	m, closeFn, err := o.openMatrix()
	if err != nil {
		ui.NewPrinter(cmd.OutOrStdout()).PrintFailure("Could not open the serial port", err, portTips())
		return &shownError{err}
	}
	defer closeFn()

	err = ui.NewRunner(rc).Run(func() ([]ui.Field, error) {
		details, _, err := op(m)
		return details, err
	})
	if err != nil {
		return &shownError{err}
	}
	return nil
}

func portTips() []string {
	return []string{
		"List ports with 'blackbird ports'",
		"Set serial.port in the config file or pass --port",
		"Use --simulate to try commands without hardware",
	}
}

// commandLine reconstructs the invoked command for headers
func commandLine(cmd *cobra.Command) string {
	parts := []string{cmd.CommandPath()}
	parts = append(parts, cmd.Flags().Args()...)
	return strings.Join(parts, " ")
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parsePorts converts port arguments to numbers. Range checks happen in the
// matrix package so the messages match everywhere.
func parsePorts(kind string, args []string) ([]int, error) {
	ports := make([]int, 0, len(args))
	for _, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("%s %q is not a number", kind, a)
		}
		ports = append(ports, n)
	}
	return ports, nil
}

// parseSwitch accepts on/off for power and beep
func parseSwitch(arg string) (bool, error) {
	switch strings.ToLower(arg) {
	case "on", "true", "1":
		return true, nil
	case "off", "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", arg)
}
