package matrix

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/Cody994/21905-SerialController/internal/logging"
	"github.com/Cody994/21905-SerialController/internal/protocol"
)

// Transport is the byte channel to the matrix.
//
// ReadFull must return exactly n bytes or an error; it is expected to give
// up after the transport's own read timeout.
type Transport interface {
	Write(p []byte) (int, error)
	ReadFull(n int) ([]byte, error)
}

// Route is one output's current source
type Route struct {
	Output int `json:"output"`
	Input  int `json:"input"`
}

// Matrix issues commands to a single matrix over a Transport.
// It keeps no state between calls beyond the transport and its settings.
type Matrix struct {
	transport Transport
	config    Config
	parser    protocol.Parser
	log       *zap.Logger
}

// New creates a Matrix that talks over t.
//
// Example:
//
//	m := matrix.New(port,
//	    matrix.WithChecksumVerification(true),
//	    matrix.WithLogger(logger),
//	)
func New(t Transport, opts ...Option) *Matrix {
	if t == nil {
		panic("transport cannot be nil")
	}

	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.GetLogger()
	}

	return &Matrix{
		transport: t,
		config:    cfg,
		parser:    protocol.Parser{VerifyChecksum: cfg.VerifyChecksum},
		log:       cfg.Logger,
	}
}

// Ports lists every input or output number in order
func Ports() []int {
	ports := make([]int, 0, protocol.MaxPort)
	for p := protocol.MinPort; p <= protocol.MaxPort; p++ {
		ports = append(ports, p)
	}
	return ports
}

func checkInput(n int) error {
	return protocol.CheckRange("input", n, protocol.MinPort, protocol.MaxPort)
}

func checkOutput(n int) error {
	return protocol.CheckRange("output", n, protocol.MinPort, protocol.MaxPort)
}

// Control commands

// RouteInput sends input to each of outputs, one frame per output, in the
// order given.
func (m *Matrix) RouteInput(ctx context.Context, input int, outputs ...int) error {
	if err := checkInput(input); err != nil {
		return err
	}
	if len(outputs) == 0 {
		return fmt.Errorf("route needs at least one output: %w", ErrInvalidOperand)
	}
	for _, out := range outputs {
		if err := checkOutput(out); err != nil {
			return err
		}
	}
	return m.fanOut(ctx, protocol.RouteInput, input, outputs)
}

// RouteInputAll sends input to outputs 1-4
func (m *Matrix) RouteInputAll(ctx context.Context, input int) error {
	return m.RouteInput(ctx, input, Ports()...)
}

// SetEDIDProfile assigns a built-in EDID preset (1-15) to input
func (m *Matrix) SetEDIDProfile(ctx context.Context, profile protocol.EDIDProfile, input int) error {
	if err := protocol.CheckRange("EDID profile", int(profile), protocol.MinEDIDProfile, protocol.MaxEDIDProfile); err != nil {
		return err
	}
	if err := checkInput(input); err != nil {
		return err
	}
	return m.command(ctx, protocol.SetEDIDProfile, int(profile), input)
}

// CopyEDID copies the EDID of the display on sourceOutput to each target
// input. A target of 0 (protocol.AllInputs) means every input.
func (m *Matrix) CopyEDID(ctx context.Context, sourceOutput int, targets ...int) error {
	if err := checkOutput(sourceOutput); err != nil {
		return err
	}
	if len(targets) == 0 {
		return fmt.Errorf("EDID copy needs at least one target: %w", ErrInvalidOperand)
	}
	for _, in := range targets {
		if err := protocol.CheckRange("EDID copy target", in, protocol.AllInputs, protocol.MaxPort); err != nil {
			return err
		}
	}
	return m.fanOut(ctx, protocol.CopyEDID, sourceOutput, targets)
}

// Beep turns the front panel beep on or off
func (m *Matrix) Beep(ctx context.Context, on bool) error {
	if on {
		return m.command(ctx, protocol.BeepOn)
	}
	return m.command(ctx, protocol.BeepOff)
}

// Power takes the matrix out of standby (true) or puts it into standby (false)
func (m *Matrix) Power(ctx context.Context, on bool) error {
	if on {
		return m.command(ctx, protocol.PowerOn)
	}
	return m.command(ctx, protocol.PowerOff)
}

// Reboot restarts the matrix
func (m *Matrix) Reboot(ctx context.Context) error {
	return m.command(ctx, protocol.Reboot)
}

// FactoryReset restores factory settings
func (m *Matrix) FactoryReset(ctx context.Context) error {
	return m.command(ctx, protocol.FactoryReset)
}

// Queries

// QueryRouting returns the input currently shown on output
func (m *Matrix) QueryRouting(ctx context.Context, output int) (int, error) {
	if err := checkOutput(output); err != nil {
		return 0, err
	}
	resp, err := m.query(ctx, protocol.QueryOutputRouting, output)
	if err != nil {
		return 0, err
	}
	input, err := m.parser.Int(protocol.QueryOutputRouting, resp)
	if err != nil {
		return 0, err
	}
	if err := checkReported(protocol.QueryOutputRouting, "input", input, protocol.MinPort, protocol.MaxPort, resp); err != nil {
		return 0, err
	}
	return input, nil
}

// QueryRoutingAll returns the source of every output, in output order 1-4
func (m *Matrix) QueryRoutingAll(ctx context.Context) ([]Route, error) {
	routes := make([]Route, 0, protocol.MaxPort)
	for _, out := range Ports() {
		in, err := m.QueryRouting(ctx, out)
		if err != nil {
			return nil, fmt.Errorf("output %d: %w", out, err)
		}
		routes = append(routes, Route{Output: out, Input: in})
	}
	return routes, nil
}

// QueryEDIDProfile returns the EDID preset assigned to input
func (m *Matrix) QueryEDIDProfile(ctx context.Context, input int) (protocol.EDIDProfile, error) {
	if err := checkInput(input); err != nil {
		return 0, err
	}
	resp, err := m.query(ctx, protocol.QueryEDIDProfile, input)
	if err != nil {
		return 0, err
	}
	profile, err := m.parser.Int(protocol.QueryEDIDProfile, resp)
	if err != nil {
		return 0, err
	}
	if err := checkReported(protocol.QueryEDIDProfile, "EDID profile", profile, protocol.MinEDIDProfile, protocol.MaxEDIDProfile, resp); err != nil {
		return 0, err
	}
	return protocol.EDIDProfile(profile), nil
}

// QueryBeep reports whether the front panel beep is on
func (m *Matrix) QueryBeep(ctx context.Context) (bool, error) {
	return m.queryStatus(ctx, protocol.QueryBeep)
}

// QueryPower reports whether the matrix is on (not in standby)
func (m *Matrix) QueryPower(ctx context.Context) (bool, error) {
	return m.queryStatus(ctx, protocol.QueryPower)
}

// QueryHotPlugDetect reports whether a display is connected to output
func (m *Matrix) QueryHotPlugDetect(ctx context.Context, output int) (bool, error) {
	if err := checkOutput(output); err != nil {
		return false, err
	}
	return m.queryStatus(ctx, protocol.QueryHotPlugDetect, output)
}

// QueryInputStatus reports whether a source is connected to input
func (m *Matrix) QueryInputStatus(ctx context.Context, input int) (bool, error) {
	if err := checkInput(input); err != nil {
		return false, err
	}
	return m.queryStatus(ctx, protocol.QueryInputStatus, input)
}

// QueryDeviceType returns the raw device type byte
func (m *Matrix) QueryDeviceType(ctx context.Context) (byte, error) {
	resp, err := m.query(ctx, protocol.QueryDeviceType)
	if err != nil {
		return 0, err
	}
	return m.parser.Raw(protocol.QueryDeviceType, resp)
}

func (m *Matrix) queryStatus(ctx context.Context, category protocol.Category, operands ...int) (bool, error) {
	resp, err := m.query(ctx, category, operands...)
	if err != nil {
		return false, err
	}
	return m.parser.Status(category, resp)
}

// checkReported rejects a decoded value the matrix should never report
func checkReported(category protocol.Category, name string, value, min, max int, resp []byte) error {
	if value < min || value > max {
		return &protocol.ResponseError{
			Category: category,
			Reason:   fmt.Sprintf("%s %d out of range %d-%d", name, value, min, max),
			Length:   len(resp),
			Raw:      resp,
		}
	}
	return nil
}

// Frame exchange

// command sends a frame whose reply carries no payload
func (m *Matrix) command(ctx context.Context, category protocol.Category, operands ...int) error {
	_, err := m.query(ctx, category, operands...)
	return err
}

// query builds one frame and runs one write/read cycle
func (m *Matrix) query(ctx context.Context, category protocol.Category, operands ...int) ([]byte, error) {
	frame, err := protocol.Build(category, operands...)
	if err != nil {
		return nil, err
	}
	return m.exchange(ctx, category, frame)
}

// fanOut sends one frame per target in order, stopping at the first failure
func (m *Matrix) fanOut(ctx context.Context, category protocol.Category, lead int, targets []int) error {
	frames, err := protocol.BuildFanOut(category, lead, targets)
	if err != nil {
		return err
	}

	for i, frame := range frames {
		if _, err := m.exchange(ctx, category, frame); err != nil {
			m.log.Warn("Multi-port command stopped",
				zap.String("command", category.String()),
				zap.Int("failed_port", targets[i]),
				zap.Int("completed", i),
				zap.Int("total", len(frames)),
				zap.Error(err),
			)
			return &FanOutError{
				Category:  category,
				Index:     i,
				Target:    targets[i],
				Completed: i,
				Total:     len(frames),
				Err:       err,
			}
		}
	}
	return nil
}

// exchange writes frame and reads exactly one reply
func (m *Matrix) exchange(ctx context.Context, category protocol.Category, frame protocol.Frame) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s not sent: %w", category, err)
	}

	m.log.Debug("Serial frame", logging.FrameFields("tx", category.String(), frame)...)

	n, err := m.transport.Write(frame)
	if err == nil && n != len(frame) {
		err = io.ErrShortWrite
	}
	if err != nil {
		return nil, &TransportError{Op: "write", Category: category, Err: err}
	}

	resp, err := m.transport.ReadFull(protocol.ResponseLength)
	if err != nil {
		return nil, &TransportError{Op: "read", Category: category, Err: err}
	}

	m.log.Debug("Serial frame", logging.FrameFields("rx", category.String(), resp)...)

	return resp, nil
}
